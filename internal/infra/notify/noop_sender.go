package notify

import (
	"context"
	"sync"

	"ssfi-membership-portal/internal/domain/ports/adapter"
)

var _ adapter.CodeSender = (*NoopSender)(nil)

// NoopSender records sends in memory; used in dev mode and tests.
type NoopSender struct {
	mu   sync.Mutex
	Sent []SentCode
}

type SentCode struct {
	Destination string
	Code        string
}

func NewNoopSender() *NoopSender { return &NoopSender{} }

func (s *NoopSender) Name() string { return "noop" }

func (s *NoopSender) SendCode(ctx context.Context, destination, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, SentCode{Destination: destination, Code: code})
	return nil
}
