package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx. Repos are
// built over it so services can run the same queries inside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ErrDuplicate surfaces a unique-constraint violation. Concurrent creates
// race on the database constraint; the loser gets this error.
var ErrDuplicate = errors.New("duplicate row")

// ErrInsufficientStock is returned when an exit or transfer would drive a
// container's stock below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}
