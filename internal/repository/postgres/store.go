package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kirinyoku/showgate/internal/repository"
)

type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Store implements repository.Store on a pgx pool. A transactional
// Store (db != nil) is bound to one open transaction; row locks taken
// with FOR UPDATE inside it are held until commit.
type Store struct {
	pool *pgxpool.Pool
	db   DB
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) handle() DB {
	if s.db != nil {
		return s.db
	}
	return s.pool
}

func (s *Store) RunTx(
	ctx context.Context,
	fn func(ctx context.Context, tx repository.Store) error,
) error {
	if s.db != nil {
		return fn(ctx, s)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}

	defer tx.Rollback(ctx)

	if err := fn(ctx, &Store{pool: s.pool, db: tx}); err != nil {
		if IsRetryable(err) {
			return fmt.Errorf("tx: %v: %w", err, repository.ErrVersionConflict)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		// Deadlocks and serialization failures surface at commit too.
		// Report them as a version conflict so callers with a retry
		// loop treat both the same way.
		if IsRetryable(err) {
			return fmt.Errorf("commit: %v: %w", err, repository.ErrVersionConflict)
		}
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func (s *Store) QueueTokens() repository.QueueTokenRepository   { return &QueueTokenRepo{db: s.handle()} }
func (s *Store) Concerts() repository.ConcertRepository         { return &ConcertRepo{db: s.handle()} }
func (s *Store) Schedules() repository.ScheduleRepository       { return &ScheduleRepo{db: s.handle()} }
func (s *Store) Seats() repository.SeatRepository               { return &SeatRepo{db: s.handle()} }
func (s *Store) Reservations() repository.ReservationRepository { return &ReservationRepo{db: s.handle()} }
func (s *Store) Payments() repository.PaymentRepository         { return &PaymentRepo{db: s.handle()} }
func (s *Store) Wallets() repository.WalletRepository           { return &WalletRepo{db: s.handle()} }
