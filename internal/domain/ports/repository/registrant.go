package repository

import (
	"context"
	"time"

	"ssfi-membership-portal/internal/domain/model"
)

// RegistrantRepository persists registrants and applies their state
// transitions as conditional updates: a transition names the state it expects
// to leave, and the update reports whether it matched. Concurrent transitions
// on the same registrant therefore cannot both succeed.
type RegistrantRepository interface {
	Save(ctx context.Context, tx Tx, r *model.Registrant) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Registrant, error)
	FindByPublicCode(ctx context.Context, tx Tx, code string) (*model.Registrant, error)

	// MarkVerified flips unverified -> verified. Returns (false, nil) when
	// the registrant was not in the unverified state.
	MarkVerified(ctx context.Context, tx Tx, id string, at time.Time) (bool, error)

	// Decide flips pending -> decision for a verified registrant. Returns
	// (false, nil) when the row did not match (already decided or not yet
	// verified).
	Decide(ctx context.Context, tx Tx, id string, decision model.ApprovalState, reason *string, at time.Time) (bool, error)

	// Deactivate soft-deactivates; registrants are never deleted.
	Deactivate(ctx context.Context, tx Tx, id string, at time.Time) error

	// ListPending returns verified, undecided registrants within the given
	// jurisdiction (empty fields match everything, as in Jurisdiction.Contains).
	ListPending(ctx context.Context, tx Tx, within model.Jurisdiction, limit int) ([]*model.Registrant, error)
}
