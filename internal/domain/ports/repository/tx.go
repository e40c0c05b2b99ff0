package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager executes a function inside a storage transaction,
// passing the backend's tx handle through the small `Tx` indirection so
// use-case interfaces stay free of driver types. Repositories must accept a
// nil handle and fall back to their non-transactional path.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
