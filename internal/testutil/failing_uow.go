package testutil

import (
	"context"
	"database/sql"
	"sync/atomic"

	"github.com/jmoiron/sqlx"
	"github.com/linapoint/resortagents/internal/db"
)

// FailOnNthExecUoW is a real SQLite unit of work whose FailOn-th write
// returns Err. Writes are numbered from 1; reads are never counted.
type FailOnNthExecUoW struct {
	DB     *sqlx.DB
	FailOn int32
	Err    error
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	inject := func(tx db.DBTX) db.DBTX {
		return &writeTripwire{DBTX: tx, at: u.FailOn, err: u.Err}
	}
	return db.NewSQLiteUnitOfWork(u.DB, inject).WithinTx(ctx, fn)
}

type writeTripwire struct {
	db.DBTX
	writes atomic.Int32
	at     int32
	err    error
}

func (w *writeTripwire) tripped() bool { return w.writes.Add(1) == w.at }

func (w *writeTripwire) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if w.tripped() {
		return nil, w.err
	}
	return w.DBTX.ExecContext(ctx, query, args...)
}

func (w *writeTripwire) NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error) {
	if w.tripped() {
		return nil, w.err
	}
	return w.DBTX.NamedExecContext(ctx, query, arg)
}
