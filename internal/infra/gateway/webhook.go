// File: internal/infra/gateway/webhook.go
package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"ssfi-membership-portal/internal/domain"
	"ssfi-membership-portal/internal/domain/model"
	"ssfi-membership-portal/internal/domain/ports/adapter"
)

var _ adapter.WebhookDecoder = (*WebhookDecoder)(nil)

// WebhookDecoder authenticates and normalizes the payment gateway's webhook
// deliveries. The gateway signs the raw body with HMAC-SHA256 over a shared
// secret and sends the hex digest in a header.
type WebhookDecoder struct {
	secret []byte
}

func NewWebhookDecoder(secret string) *WebhookDecoder {
	return &WebhookDecoder{secret: []byte(secret)}
}

func (d *WebhookDecoder) VerifySignature(rawBody []byte, signatureHeader string) error {
	mac := hmac.New(sha256.New, d.secret)
	mac.Write(rawBody)
	expected := mac.Sum(nil)

	got, err := hex.DecodeString(signatureHeader)
	if err != nil {
		return domain.ErrInvalidSignature
	}
	// hmac.Equal, not ==: the comparison must not leak how many leading
	// bytes matched.
	if !hmac.Equal(expected, got) {
		return domain.ErrInvalidSignature
	}
	return nil
}

// Sign computes the signature for a body. Exported for tests and for the
// seed tooling that replays recorded deliveries.
func (d *WebhookDecoder) Sign(rawBody []byte) string {
	mac := hmac.New(sha256.New, d.secret)
	mac.Write(rawBody)
	return hex.EncodeToString(mac.Sum(nil))
}

// Wire shapes. payment.captured nests the payment entity directly;
// payment_link.paid wraps the same entity next to the link entity. Both
// carry the business routing in notes.
type webhookEnvelope struct {
	Event   string `json:"event"`
	ID      string `json:"id"`
	Payload struct {
		Payment struct {
			Entity paymentEntity `json:"entity"`
		} `json:"payment"`
		PaymentLink struct {
			Entity struct {
				ID    string       `json:"id"`
				Notes paymentNotes `json:"notes"`
			} `json:"entity"`
		} `json:"payment_link"`
	} `json:"payload"`
}

type paymentEntity struct {
	ID       string       `json:"id"`
	OrderID  string       `json:"order_id"`
	Amount   int64        `json:"amount"`
	Currency string       `json:"currency"`
	Notes    paymentNotes `json:"notes"`
}

type paymentNotes struct {
	Purpose      string `json:"purpose"`
	RegistrantID string `json:"registrant_id"`
	EventID      string `json:"event_id"`
}

const (
	eventPaymentCaptured = "payment.captured"
	eventPaymentLinkPaid = "payment_link.paid"
)

// Decode normalizes a recognized delivery into model.PaymentConfirmation.
// Unrecognized event types return (nil, nil): the HTTP layer acknowledges
// them so the gateway stops retrying.
func (d *WebhookDecoder) Decode(rawBody []byte, receivedAt time.Time) (*model.PaymentConfirmation, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(rawBody, &env); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}

	switch env.Event {
	case eventPaymentCaptured, eventPaymentLinkPaid:
	default:
		return nil, nil
	}

	p := env.Payload.Payment.Entity
	notes := p.Notes
	if env.Event == eventPaymentLinkPaid && notes.Purpose == "" {
		// Link-paid deliveries put notes on the link entity.
		notes = env.Payload.PaymentLink.Entity.Notes
	}

	purpose, err := parsePurpose(notes.Purpose)
	if err != nil {
		return nil, err
	}
	if p.ID == "" || notes.RegistrantID == "" {
		return nil, fmt.Errorf("decode webhook: %w", domain.ErrInvalidArgument)
	}
	if purpose == model.PurposeEventRegistration && notes.EventID == "" {
		return nil, fmt.Errorf("decode webhook: %w", domain.ErrInvalidArgument)
	}

	return &model.PaymentConfirmation{
		GatewayEventID:   env.ID,
		GatewayPaymentID: p.ID,
		GatewayOrderID:   p.OrderID,
		EventType:        env.Event,
		Amount:           p.Amount,
		Currency:         p.Currency,
		Purpose:          purpose,
		Subject: model.SubjectRef{
			RegistrantID: notes.RegistrantID,
			EventID:      notes.EventID,
		},
		ReceivedAt: receivedAt,
	}, nil
}

func parsePurpose(s string) (model.PaymentPurpose, error) {
	switch model.PaymentPurpose(s) {
	case model.PurposeEventRegistration:
		return model.PurposeEventRegistration, nil
	case model.PurposeMembershipRenewal:
		return model.PurposeMembershipRenewal, nil
	default:
		return "", domain.ErrUnknownPurpose
	}
}
