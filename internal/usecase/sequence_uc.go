// File: internal/usecase/sequence_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"ssfi-membership-portal/internal/domain"
	"ssfi-membership-portal/internal/domain/model"
	"ssfi-membership-portal/internal/domain/ports/repository"
	"ssfi-membership-portal/internal/infra/metrics"
)

// Compile-time check
var _ SequenceAllocator = (*sequenceAllocator)(nil)

// SequenceAllocator hands out monotonic sequence numbers per hierarchy scope.
// Allocations for one scope are totally ordered; different scopes interleave
// freely. A value, once returned, is never returned again for that scope.
type SequenceAllocator interface {
	Allocate(ctx context.Context, scope model.HierarchyScope) (uint32, error)
}

type sequenceAllocator struct {
	counters repository.SequenceCounterRepository
	log      *zerolog.Logger
}

func NewSequenceAllocator(counters repository.SequenceCounterRepository, logger *zerolog.Logger) *sequenceAllocator {
	return &sequenceAllocator{counters: counters, log: logger}
}

// Allocate delegates to the store's atomic increment-and-read. There is
// deliberately no in-process cache here: caching a counter value across
// requests would reintroduce the duplicate-issue race the store operation
// exists to prevent.
func (a *sequenceAllocator) Allocate(ctx context.Context, scope model.HierarchyScope) (uint32, error) {
	if !scope.Valid() {
		return 0, domain.ErrInvalidScope
	}
	seq, err := a.counters.AllocateNext(ctx, repository.NoTX, scope)
	if err != nil {
		a.log.Error().Err(err).Str("scope", scope.Key()).Msg("sequence allocation failed")
		return 0, err
	}
	metrics.IncSequenceAllocation(scopeDepth(scope))
	return seq, nil
}

func scopeDepth(scope model.HierarchyScope) string {
	switch {
	case scope.ClubCode != "":
		return "club"
	case scope.DistrictCode != "":
		return "district"
	default:
		return "state"
	}
}
