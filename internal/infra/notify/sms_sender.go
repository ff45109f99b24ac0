// File: internal/infra/notify/sms_sender.go
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ssfi-membership-portal/internal/domain/ports/adapter"
)

var _ adapter.CodeSender = (*SMSSender)(nil)

// SMSSender delivers one-time codes over an HTTP SMS gateway.
type SMSSender struct {
	baseURL  string
	apiKey   string
	senderID string
	client   *http.Client
}

func NewSMSSender(baseURL, apiKey, senderID string) (*SMSSender, error) {
	if baseURL == "" || apiKey == "" {
		return nil, errors.New("sms gateway base_url and api_key required")
	}
	return &SMSSender{
		baseURL:  baseURL,
		apiKey:   apiKey,
		senderID: senderID,
		client:   &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (s *SMSSender) Name() string { return "sms" }

func (s *SMSSender) SendCode(ctx context.Context, destination, code string) error {
	payload := map[string]any{
		"to":      destination,
		"sender":  s.senderID,
		"message": fmt.Sprintf("Your SSFI verification code is %s. It expires in 10 minutes.", code),
	}
	b, _ := json.Marshal(payload)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/messages", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var out struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	if resp.StatusCode >= 300 || out.Status == "failed" {
		return fmt.Errorf("sms gateway rejected message: http %d status=%s", resp.StatusCode, out.Status)
	}
	return nil
}
