package repository

import (
	"context"

	"ssfi-membership-portal/internal/domain/model"
)

// SequenceCounterRepository owns the per-scope monotonic counters behind
// public-code issuance.
//
// AllocateNext must perform the increment-and-read as a single atomic
// operation against the store; a read-then-write without mutual exclusion
// is a correctness bug here, not a tuning concern. The counter for a scope
// is created lazily; the first allocation returns 1. An unreachable store
// surfaces as domain.ErrStoreUnavailable so the caller fails the request
// cleanly instead of inventing an identifier.
type SequenceCounterRepository interface {
	AllocateNext(ctx context.Context, tx Tx, scope model.HierarchyScope) (uint32, error)
}
