package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

// NoTX is passed where a repository call should run outside any transaction.
var NoTX Tx

// TransactionManager executes a function within a database transaction,
// passing the underlying transaction handle via tx.
//
// Use-case interfaces stay clean of storage types; repositories accept a
// `tx Tx` argument and detect a live transaction implementation-side (e.g.
// to add SELECT ... FOR UPDATE). Repositories MUST gracefully accept nil tx
// (non-transactional path).
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
