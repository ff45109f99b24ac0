package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"ssfi-membership-portal/internal/domain"
	"ssfi-membership-portal/internal/domain/model"
	"ssfi-membership-portal/internal/domain/ports/repository"
)

var _ repository.SequenceCounterRepository = (*counterRepo)(nil)

type counterRepo struct{ pool *pgxpool.Pool }

func NewCounterRepo(pool *pgxpool.Pool) *counterRepo {
	return &counterRepo{pool: pool}
}

// AllocateNext bumps the scope's counter and reads the new value in a single
// statement. The upsert creates the row lazily at 1; the conflict arm
// increments under the row lock Postgres takes for the update, so two
// concurrent allocations for one scope serialize at the store and can never
// observe the same value. This is the replacement for the
// count()-then-create pattern, which loses that guarantee.
func (r *counterRepo) AllocateNext(ctx context.Context, tx repository.Tx, scope model.HierarchyScope) (uint32, error) {
	const q = `
INSERT INTO sequence_counters (scope_key, next_value)
VALUES ($1, 1)
ON CONFLICT (scope_key) DO UPDATE SET next_value = sequence_counters.next_value + 1
RETURNING next_value;`

	row, err := pickRow(ctx, r.pool, tx, q, scope.Key())
	if err != nil {
		return 0, err
	}
	var seq uint32
	if err := row.Scan(&seq); err != nil {
		// The counter store being unreachable is retryable for the caller;
		// a fallback identifier is never invented here.
		return 0, domain.ErrStoreUnavailable
	}
	return seq, nil
}
