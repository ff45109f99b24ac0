package model

import "time"

// MembershipRecord tracks the paid membership window for an approved
// registrant. Renewal sets ExpiresAt to one year after the payment
// confirmation time.
type MembershipRecord struct {
	RegistrantID  string
	PublicCode    string
	ExpiresAt     *time.Time
	LastPaymentID *string // gateway payment id of the latest renewal
	UpdatedAt     time.Time
}

// RegistrationStatus is the payment status of an event registration.
type RegistrationStatus string

const (
	RegistrationUnpaid RegistrationStatus = "unpaid"
	RegistrationPaid   RegistrationStatus = "paid"
)

// EventRegistration is a skater's entry into a competition event. Payment
// identifiers are attached when the gateway confirms the fee.
type EventRegistration struct {
	ID               string
	SkaterID         string
	EventID          string
	Status           RegistrationStatus
	GatewayPaymentID *string
	GatewayOrderID   *string
	PaidAt           *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
