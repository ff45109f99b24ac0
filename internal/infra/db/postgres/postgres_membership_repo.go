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

var _ repository.MembershipRepository = (*membershipRepo)(nil)

type membershipRepo struct{ pool *pgxpool.Pool }

func NewMembershipRepo(pool *pgxpool.Pool) *membershipRepo {
	return &membershipRepo{pool: pool}
}

func (r *membershipRepo) FindByRegistrant(ctx context.Context, tx repository.Tx, registrantID string) (*model.MembershipRecord, error) {
	const q = `
SELECT m.registrant_id, r.public_code, m.expires_at, m.last_payment_id, m.updated_at
FROM memberships m JOIN registrants r ON r.id = m.registrant_id
WHERE m.registrant_id=$1;`

	row, err := pickRow(ctx, r.pool, tx, q, registrantID)
	if err != nil {
		return nil, err
	}
	m := &model.MembershipRecord{}
	err = row.Scan(&m.RegistrantID, &m.PublicCode, &m.ExpiresAt, &m.LastPaymentID, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return m, nil
}

func (r *membershipRepo) SetExpiry(ctx context.Context, tx repository.Tx, registrantID string, expiresAt time.Time, gatewayPaymentID string) error {
	const q = `
INSERT INTO memberships (registrant_id, expires_at, last_payment_id, updated_at)
VALUES ($1,$2,$3,NOW())
ON CONFLICT (registrant_id) DO UPDATE SET expires_at=$2, last_payment_id=$3, updated_at=NOW();`
	_, err := execSQL(ctx, r.pool, tx, q, registrantID, expiresAt, gatewayPaymentID)
	if err != nil {
		return storeErr(err)
	}
	return nil
}
