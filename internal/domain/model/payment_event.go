package model

import "time"

// PaymentPurpose classifies what a confirmed payment settles.
type PaymentPurpose string

const (
	PurposeEventRegistration PaymentPurpose = "event_registration"
	PurposeMembershipRenewal PaymentPurpose = "membership_renewal"
)

// SubjectRef identifies the downstream business record a payment settles.
// For event registrations both fields are set; for membership renewals only
// RegistrantID is.
type SubjectRef struct {
	RegistrantID string `json:"registrant_id"`
	EventID      string `json:"event_id,omitempty"`
}

// PaymentConfirmation is the single normalized shape every recognized gateway
// event collapses into before reconciliation runs. The two wire shapes the
// gateway sends (payment.captured, payment_link.paid) differ only in payload
// layout, not in effect.
type PaymentConfirmation struct {
	GatewayEventID   string
	GatewayPaymentID string
	GatewayOrderID   string
	EventType        string
	Amount           int64 // minor units (paise)
	Currency         string
	Purpose          PaymentPurpose
	Subject          SubjectRef
	ReceivedAt       time.Time
}

// LedgerOutcome records what applying a confirmation did, so replays can
// answer with the original result.
type LedgerOutcome string

const (
	OutcomeApplied LedgerOutcome = "applied"
	OutcomeIgnored LedgerOutcome = "ignored"
)

// LedgerEntry is the idempotency record for a gateway payment. The
// gateway payment id carries a unique constraint; a duplicate insert is the
// signal that the delivery is a replay.
type LedgerEntry struct {
	ID               string // ULID, orders entries by arrival
	GatewayPaymentID string
	GatewayEventID   string
	EventType        string
	Purpose          PaymentPurpose
	Amount           int64
	Currency         string
	Subject          SubjectRef
	Outcome          LedgerOutcome
	ReceivedAt       time.Time
}
