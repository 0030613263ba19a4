package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// UnitOfWork makes the price quote and tour lines of one booking land
// together or not at all.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

// TxWrapper decorates the handle a transaction body sees. Tests use it to
// inject write failures.
type TxWrapper func(DBTX) DBTX

type SQLiteUnitOfWork struct {
	db    *sqlx.DB
	wraps []TxWrapper
}

func NewSQLiteUnitOfWork(db *sqlx.DB, wraps ...TxWrapper) *SQLiteUnitOfWork {
	return &SQLiteUnitOfWork{db: db, wraps: wraps}
}

// WithinTx commits when fn returns nil. Errors and panics roll back; a panic
// is re-raised after the rollback.
func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		rbErr := tx.Rollback()
		if p := recover(); p != nil {
			panic(p)
		}
		if rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
	}()

	var handle DBTX = tx
	for _, wrap := range u.wraps {
		handle = wrap(handle)
	}
	if err = fn(ctx, handle); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}
