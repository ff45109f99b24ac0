package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ssfi-membership-portal/internal/domain"
	"ssfi-membership-portal/internal/domain/model"
	"ssfi-membership-portal/internal/domain/ports/repository"
)

var _ repository.OneTimeCodeRepository = (*otpRepo)(nil)

type otpRepo struct{ pool *pgxpool.Pool }

func NewOTPRepo(pool *pgxpool.Pool) *otpRepo {
	return &otpRepo{pool: pool}
}

func (r *otpRepo) Save(ctx context.Context, tx repository.Tx, c *model.OneTimeCode) error {
	const q = `
INSERT INTO one_time_codes (id, registrant_id, code, purpose, expires_at, consumed_at, superseded_at, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`
	_, err := execSQL(ctx, r.pool, tx, q,
		c.ID, c.RegistrantID, c.Code, c.Purpose, c.ExpiresAt, c.ConsumedAt, c.SupersededAt, c.CreatedAt)
	if err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *otpRepo) FindActive(ctx context.Context, tx repository.Tx, registrantID string, purpose model.CodePurpose) (*model.OneTimeCode, error) {
	q := `
SELECT id, registrant_id, code, purpose, expires_at, consumed_at, superseded_at, created_at
FROM one_time_codes
WHERE registrant_id=$1 AND purpose=$2 AND consumed_at IS NULL AND superseded_at IS NULL
ORDER BY created_at DESC
LIMIT 1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"

	row, err := pickRow(ctx, r.pool, tx, q, registrantID, purpose)
	if err != nil {
		return nil, err
	}
	c := &model.OneTimeCode{}
	err = row.Scan(&c.ID, &c.RegistrantID, &c.Code, &c.Purpose, &c.ExpiresAt, &c.ConsumedAt, &c.SupersededAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}

// Consume is conditional so two concurrent verifications of the same code
// cannot both succeed: exactly one update matches the unconsumed row.
func (r *otpRepo) Consume(ctx context.Context, tx repository.Tx, id string, at time.Time) (bool, error) {
	const q = `
UPDATE one_time_codes SET consumed_at=$2
WHERE id=$1 AND consumed_at IS NULL AND superseded_at IS NULL;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, at)
	if err != nil {
		return false, storeErr(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *otpRepo) SupersedeActive(ctx context.Context, tx repository.Tx, registrantID string, purpose model.CodePurpose, at time.Time) error {
	const q = `
UPDATE one_time_codes SET superseded_at=$3
WHERE registrant_id=$1 AND purpose=$2 AND consumed_at IS NULL AND superseded_at IS NULL;`
	_, err := execSQL(ctx, r.pool, tx, q, registrantID, purpose, at)
	if err != nil {
		return storeErr(err)
	}
	return nil
}
