package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kirinyoku/showgate/internal/domain"
	"github.com/kirinyoku/showgate/internal/repository"
)

type WalletRepo struct {
	db DB
}

func (r *WalletRepo) Create(ctx context.Context, a *domain.Amount) error {
	const op = "postgres.WalletRepo.Create"

	a.Version = 1
	err := r.db.QueryRow(ctx,
		`INSERT INTO wallets(user_id, balance, version)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		a.UserID, a.Balance, a.Version,
	).Scan(&a.ID)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// Update applies a version-checked write. A concurrent writer that bumped the
// version first makes this a zero-row update, reported as ErrVersionConflict.
func (r *WalletRepo) Update(ctx context.Context, a *domain.Amount) error {
	const op = "postgres.WalletRepo.Update"

	tag, err := r.db.Exec(ctx,
		`UPDATE wallets
		 SET balance = $3, version = version + 1
		 WHERE user_id = $1 AND version = $2`,
		a.UserID, a.Version, a.Balance,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrVersionConflict)
	}

	a.Version++
	return nil
}

func (r *WalletRepo) findByUser(ctx context.Context, op, userID, lock string) (*domain.Amount, error) {
	var a domain.Amount
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, balance, version FROM wallets WHERE user_id = $1`+lock,
		userID,
	).Scan(&a.ID, &a.UserID, &a.Balance, &a.Version)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &a, nil
}

func (r *WalletRepo) FindByUser(ctx context.Context, userID string) (*domain.Amount, error) {
	return r.findByUser(ctx, "postgres.WalletRepo.FindByUser", userID, "")
}

func (r *WalletRepo) FindByUserForUpdate(ctx context.Context, userID string) (*domain.Amount, error) {
	return r.findByUser(ctx, "postgres.WalletRepo.FindByUserForUpdate", userID, " FOR UPDATE")
}

func (r *WalletRepo) AppendHistory(ctx context.Context, h *domain.AmountHistory) error {
	const op = "postgres.WalletRepo.AppendHistory"

	err := r.db.QueryRow(ctx,
		`INSERT INTO wallet_histories(user_id, amount, type, balance_after, created_at, description)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		h.UserID, h.Amount, h.Type, h.BalanceAfter, h.CreatedAt, h.Description,
	).Scan(&h.ID)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *WalletRepo) LastChargeByUser(ctx context.Context, userID string) (*domain.AmountHistory, error) {
	const op = "postgres.WalletRepo.LastChargeByUser"

	var h domain.AmountHistory
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, amount, type, balance_after, created_at, description
		 FROM wallet_histories
		 WHERE user_id = $1 AND type = 'CHARGE'
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`,
		userID,
	).Scan(&h.ID, &h.UserID, &h.Amount, &h.Type, &h.BalanceAfter, &h.CreatedAt, &h.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		return nil, wrapDBErr(op, err)
	}

	return &h, nil
}
