package postgresql

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type contextKey string

const txContextKey contextKey = "tx"

// WithTransaction executes fn inside a database transaction
func WithTransaction(ctx context.Context, db *database.DB, fn func(tx pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", database.ErrTxAborted, err)
	}
	// Rollback and commit must not be skipped because the caller's ctx was cancelled.
	finishCtx := context.WithoutCancel(ctx)
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(finishCtx); rbErr != nil {
				slog.Error("rollback error during panic recovery", "error", rbErr)
			}
			panic(p)
		}
	}()

	// Execute function
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(finishCtx); rbErr != nil {
			return fmt.Errorf("%w: rollback error: %v (original error: %w)", database.ErrTxAborted, rbErr, err)
		}
		return err
	}

	if err := tx.Commit(finishCtx); err != nil {
		return fmt.Errorf("%w: commit transaction: %v", database.ErrTxAborted, err)
	}

	return nil
}

// WithTx returns a context carrying tx so repositories pick it up through GetQuerier.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txContextKey, tx)
}

// GetQuerier returns either transaction or pool
// Used in repositories to support both transactional and non-transactional operations
func GetQuerier(ctx context.Context, db *database.DB) database.Querier {
	if tx, ok := ctx.Value(txContextKey).(pgx.Tx); ok {
		return tx
	}
	return db.Pool
}

type transactor struct {
	db *database.DB
}

func NewTransactor(db *database.DB) database.Transactor {
	return &transactor{db: db}
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return WithTransaction(ctx, t.db, func(tx pgx.Tx) error {
		return fn(WithTx(ctx, tx))
	})
}

// WithinSavepoint nests fn in a SAVEPOINT of the transaction already held by ctx.
// pgx implements Begin on a Tx as SAVEPOINT / RELEASE / ROLLBACK TO.
func (t *transactor) WithinSavepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	outer, ok := ctx.Value(txContextKey).(pgx.Tx)
	if !ok {
		return fmt.Errorf("%w: savepoint requested outside a transaction", database.ErrTxAborted)
	}

	sp, err := outer.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: create savepoint: %v", database.ErrTxAborted, err)
	}
	finishCtx := context.WithoutCancel(ctx)

	if err := fn(WithTx(ctx, sp)); err != nil {
		if rbErr := sp.Rollback(finishCtx); rbErr != nil {
			return fmt.Errorf("%w: rollback to savepoint: %v (original error: %w)", database.ErrTxAborted, rbErr, err)
		}
		return err
	}

	if err := sp.Commit(finishCtx); err != nil {
		return fmt.Errorf("%w: release savepoint: %v", database.ErrTxAborted, err)
	}
	return nil
}
