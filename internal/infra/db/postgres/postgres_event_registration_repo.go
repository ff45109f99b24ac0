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

var _ repository.EventRegistrationRepository = (*eventRegistrationRepo)(nil)

type eventRegistrationRepo struct{ pool *pgxpool.Pool }

func NewEventRegistrationRepo(pool *pgxpool.Pool) *eventRegistrationRepo {
	return &eventRegistrationRepo{pool: pool}
}

func (r *eventRegistrationRepo) Save(ctx context.Context, tx repository.Tx, reg *model.EventRegistration) error {
	const q = `
INSERT INTO event_registrations (id, skater_id, event_id, status, gateway_payment_id, gateway_order_id, paid_at, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
  status=$4, gateway_payment_id=$5, gateway_order_id=$6, paid_at=$7, updated_at=$9;`
	_, err := execSQL(ctx, r.pool, tx, q,
		reg.ID, reg.SkaterID, reg.EventID, reg.Status,
		reg.GatewayPaymentID, reg.GatewayOrderID, reg.PaidAt, reg.CreatedAt, reg.UpdatedAt)
	if err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *eventRegistrationRepo) FindBySkaterAndEvent(ctx context.Context, tx repository.Tx, skaterID, eventID string) (*model.EventRegistration, error) {
	const q = `
SELECT id, skater_id, event_id, status, gateway_payment_id, gateway_order_id, paid_at, created_at, updated_at
FROM event_registrations WHERE skater_id=$1 AND event_id=$2;`

	row, err := pickRow(ctx, r.pool, tx, q, skaterID, eventID)
	if err != nil {
		return nil, err
	}
	reg := &model.EventRegistration{}
	err = row.Scan(&reg.ID, &reg.SkaterID, &reg.EventID, &reg.Status,
		&reg.GatewayPaymentID, &reg.GatewayOrderID, &reg.PaidAt, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return reg, nil
}

func (r *eventRegistrationRepo) AttachPayment(ctx context.Context, tx repository.Tx, skaterID, eventID, gatewayPaymentID, gatewayOrderID string, paidAt time.Time) error {
	const q = `
UPDATE event_registrations
SET status='paid', gateway_payment_id=$3, gateway_order_id=$4, paid_at=$5, updated_at=NOW()
WHERE skater_id=$1 AND event_id=$2;`
	tag, err := execSQL(ctx, r.pool, tx, q, skaterID, eventID, gatewayPaymentID, gatewayOrderID, paidAt)
	if err != nil {
		return storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
