package repository

import (
	"context"

	"ssfi-membership-portal/internal/domain/model"
)

// PaymentLedgerRepository is the idempotency store for gateway deliveries.
// Insert relies on a unique constraint over gateway_payment_id: a duplicate
// insert returns domain.ErrAlreadyExists rather than a second row, which is
// how replayed deliveries are detected even under concurrent processing.
type PaymentLedgerRepository interface {
	Insert(ctx context.Context, tx Tx, e *model.LedgerEntry) error
	FindByGatewayPaymentID(ctx context.Context, tx Tx, gatewayPaymentID string) (*model.LedgerEntry, error)
}
