package adapter

import (
	"context"
	"time"

	"ssfi-membership-portal/internal/domain/model"
)

// WebhookDecoder authenticates and normalizes raw gateway deliveries.
// Both recognized wire shapes collapse into model.PaymentConfirmation at this
// boundary so the reconciliation rule downstream is written once.
type WebhookDecoder interface {
	// VerifySignature recomputes the body HMAC and compares it in constant
	// time; a mismatch returns domain.ErrInvalidSignature.
	VerifySignature(rawBody []byte, signatureHeader string) error

	// Decode parses the delivery. Unrecognized event types return
	// (nil, nil): acknowledged upstream, ignored here.
	Decode(rawBody []byte, receivedAt time.Time) (*model.PaymentConfirmation, error)
}

// PaymentLocker serializes processing per gateway payment id. The ledger's
// unique constraint remains the correctness backstop; the lock only keeps
// racing deliveries from attempting the subject work twice.
type PaymentLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}
