package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle threaded through repository calls.
// Repositories must gracefully accept nil (non-transactional path); the
// concrete type is infra-defined (pgx.Tx for Postgres).
type Tx interface{}

// TransactionManager executes a function within a database transaction,
// passing the handle via tx. Keeps use-case interfaces free of storage types.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
