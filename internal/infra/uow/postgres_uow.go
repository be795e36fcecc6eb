package uow

import (
	"context"
	"errors"
	"log/slog"

	"study-room-booking/internal/infra"
	"study-room-booking/internal/infra/repository"
	"study-room-booking/internal/pkg/errs"
	"study-room-booking/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	errTransactionBegin  = errs.New("failed to begin transaction")
	errTransactionCommit = errs.New("failed to commit transaction")
)

type PostgresUoW struct {
	pool *pgxpool.Pool
}

func NewPostgresUoW(pool *pgxpool.Pool) shared.UnitOfWork {
	return &PostgresUoW{pool: pool}
}

// ReadCommitted prevents dirty reads; admission is serialised by advisory locks
// taken through Tx.Lock, so no serialization retries are needed.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return infra.ClassifyPgError("begin transaction", errs.Mark(err, errTransactionBegin))
	}
	defer rollback(ctx, pgxTx, "write")

	tx := &pgTx{dbtx: pgxTx}
	if err = fn(ctx, tx); err != nil {
		return err
	}
	if err = pgxTx.Commit(ctx); err != nil {
		return infra.ClassifyPgError("commit transaction", errs.Mark(err, errTransactionCommit))
	}
	return nil
}

// Read-only transaction for consistent multi-row snapshots
func (u *PostgresUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, r shared.ReservationReader) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return infra.ClassifyPgError("begin read-only transaction", errs.Mark(err, errTransactionBegin))
	}
	defer rollback(ctx, pgxTx, "read-only")

	if err := fn(ctx, repository.NewReservationRepository(pgxTx)); err != nil {
		return err
	}
	if err := pgxTx.Commit(ctx); err != nil {
		return infra.ClassifyPgError("commit read-only transaction", err)
	}
	return nil
}

func rollback(ctx context.Context, tx pgx.Tx, kind string) {
	// the caller's context may already be done; rollback must still reach the server
	if rollbackErr := tx.Rollback(context.WithoutCancel(ctx)); rollbackErr != nil {
		if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			slog.Warn("failed to rollback transaction", "kind", kind, "error", rollbackErr.Error())
		}
	}
}

type pgTx struct {
	dbtx pgx.Tx

	// Lazy-initialized repository
	reservationRepo *repository.ReservationRepository
}

func (t *pgTx) repo() *repository.ReservationRepository {
	if t.reservationRepo == nil {
		t.reservationRepo = repository.NewReservationRepository(t.dbtx)
	}
	return t.reservationRepo
}

func (t *pgTx) Reservations() shared.ReservationRepository {
	return t.repo()
}

func (t *pgTx) Lock(ctx context.Context, keys ...string) error {
	return t.repo().Lock(ctx, keys...)
}
