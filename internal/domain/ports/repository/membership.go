package repository

import (
	"context"
	"time"

	"ssfi-membership-portal/internal/domain/model"
)

// MembershipRepository tracks paid membership windows.
type MembershipRepository interface {
	FindByRegistrant(ctx context.Context, tx Tx, registrantID string) (*model.MembershipRecord, error)

	// SetExpiry upserts the membership row, setting the expiry and the
	// gateway payment id that paid for it.
	SetExpiry(ctx context.Context, tx Tx, registrantID string, expiresAt time.Time, gatewayPaymentID string) error
}

// EventRegistrationRepository tracks skaters' competition entries.
type EventRegistrationRepository interface {
	Save(ctx context.Context, tx Tx, r *model.EventRegistration) error
	FindBySkaterAndEvent(ctx context.Context, tx Tx, skaterID, eventID string) (*model.EventRegistration, error)

	// AttachPayment marks the registration paid and records the gateway
	// identifiers.
	AttachPayment(ctx context.Context, tx Tx, skaterID, eventID, gatewayPaymentID, gatewayOrderID string, paidAt time.Time) error
}
