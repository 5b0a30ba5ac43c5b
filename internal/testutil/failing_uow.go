package testutil

import (
	"context"
	"database/sql"
	"strings"
	"sync/atomic"

	"github.com/alexanderramin/tasklane/internal/db"
)

// FailOnNthExecUoW is the real unit of work with one injected statement
// failure: the FailOn-th ExecContext (1-based) returns Err, so tests can
// break a whole-map write half way and check the rollback. With Match set,
// only statements containing Match are counted. Reads are never counted.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Err    error
	Match  string

	execs atomic.Int32
}

// Execs reports how many counted statements ran, including the failed one.
func (u *FailOnNthExecUoW) Execs() int { return int(u.execs.Load()) }

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return db.NewSQLiteUnitOfWork(u.DB).WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &faultyTx{DBTX: tx, uow: u})
	})
}

type faultyTx struct {
	db.DBTX
	uow *FailOnNthExecUoW
}

func (f *faultyTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	u := f.uow
	if u.Match == "" || strings.Contains(query, u.Match) {
		if u.execs.Add(1) == u.FailOn {
			return nil, u.Err
		}
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
