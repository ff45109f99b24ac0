package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ssfi-membership-portal/internal/domain"
	"ssfi-membership-portal/internal/domain/model"
	"ssfi-membership-portal/internal/domain/ports/repository"
)

var _ repository.PaymentLedgerRepository = (*ledgerRepo)(nil)

type ledgerRepo struct{ pool *pgxpool.Pool }

func NewLedgerRepo(pool *pgxpool.Pool) *ledgerRepo {
	return &ledgerRepo{pool: pool}
}

// Insert relies on the unique index over gateway_payment_id. A duplicate
// surfaces as domain.ErrAlreadyExists, which is how a replayed delivery is
// detected even when two copies race each other into this statement.
func (r *ledgerRepo) Insert(ctx context.Context, tx repository.Tx, e *model.LedgerEntry) error {
	const q = `
INSERT INTO payment_ledger (
  id, gateway_payment_id, gateway_event_id, event_type, purpose, amount, currency,
  subject_registrant_id, subject_event_id, outcome, received_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11);`

	_, err := execSQL(ctx, r.pool, tx, q,
		e.ID, e.GatewayPaymentID, e.GatewayEventID, e.EventType, e.Purpose,
		e.Amount, e.Currency, e.Subject.RegistrantID, e.Subject.EventID,
		e.Outcome, e.ReceivedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return storeErr(err)
	}
	return nil
}

func (r *ledgerRepo) FindByGatewayPaymentID(ctx context.Context, tx repository.Tx, gatewayPaymentID string) (*model.LedgerEntry, error) {
	const q = `
SELECT id, gateway_payment_id, gateway_event_id, event_type, purpose, amount, currency,
  subject_registrant_id, subject_event_id, outcome, received_at
FROM payment_ledger WHERE gateway_payment_id=$1;`

	row, err := pickRow(ctx, r.pool, tx, q, gatewayPaymentID)
	if err != nil {
		return nil, err
	}
	e := &model.LedgerEntry{}
	err = row.Scan(&e.ID, &e.GatewayPaymentID, &e.GatewayEventID, &e.EventType, &e.Purpose,
		&e.Amount, &e.Currency, &e.Subject.RegistrantID, &e.Subject.EventID,
		&e.Outcome, &e.ReceivedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return e, nil
}
