package model

import "time"

// CodePurpose distinguishes why a one-time code was issued.
type CodePurpose string

const (
	PurposeRegistration  CodePurpose = "registration"
	PurposePasswordReset CodePurpose = "password_reset"
)

// OneTimeCode is a single-use numeric challenge bound to a registrant.
// At most one active (unconsumed, unexpired, unsuperseded) code exists per
// registrant and purpose; issuing a new one supersedes its predecessors.
type OneTimeCode struct {
	ID           string
	RegistrantID string
	Code         string
	Purpose      CodePurpose
	ExpiresAt    time.Time
	ConsumedAt   *time.Time
	SupersededAt *time.Time
	CreatedAt    time.Time
}

// ActiveAt reports whether the code can still succeed verification at now.
func (c *OneTimeCode) ActiveAt(now time.Time) bool {
	return c != nil && c.ConsumedAt == nil && c.SupersededAt == nil && now.Before(c.ExpiresAt)
}
