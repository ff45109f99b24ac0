package repository

import (
	"context"
	"time"

	"ssfi-membership-portal/internal/domain/model"
)

// OneTimeCodeRepository stores OTP challenges. Expiry is evaluated lazily at
// verification time by wall-clock comparison; no sweeper job exists.
type OneTimeCodeRepository interface {
	Save(ctx context.Context, tx Tx, c *model.OneTimeCode) error

	// FindActive returns the newest unconsumed, unsuperseded code for the
	// registrant and purpose, or domain.ErrNotFound.
	FindActive(ctx context.Context, tx Tx, registrantID string, purpose model.CodePurpose) (*model.OneTimeCode, error)

	// Consume marks the code consumed. Returns (false, nil) when the code
	// was already consumed or superseded, so concurrent verifications for
	// the same registrant cannot both succeed.
	Consume(ctx context.Context, tx Tx, id string, at time.Time) (bool, error)

	// SupersedeActive invalidates all unconsumed codes for the registrant
	// and purpose; called before a new code is saved so only the newest one
	// is ever valid.
	SupersedeActive(ctx context.Context, tx Tx, registrantID string, purpose model.CodePurpose, at time.Time) error
}
