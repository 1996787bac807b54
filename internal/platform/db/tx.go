package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Queryable is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
// Repositories run against whichever one the context carries.
type Queryable interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type txKey struct{}

// ConnFromContext returns the transaction attached to ctx by WithTx, or
// nil when the caller is not inside a transaction.
func ConnFromContext(ctx context.Context) Queryable {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	if tx == nil {
		return nil
	}
	return tx
}

// Runner executes functions inside a single database transaction.
type Runner struct {
	pool *pgxpool.Pool
}

func NewRunner(pool *pgxpool.Pool) *Runner {
	return &Runner{pool: pool}
}

// WithTx begins a transaction, attaches it to the context passed to fn,
// and commits when fn returns nil. Any error from fn or from commit
// rolls the whole transaction back, so repositories that ran inside fn
// leave no partial writes behind.
func (r *Runner) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// Rollback is a no-op after a successful commit.
	defer tx.Rollback(ctx)

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
