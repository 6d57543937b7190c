package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kirinyoku/showgate/internal/domain"
	"github.com/kirinyoku/showgate/internal/repository"
	"github.com/kirinyoku/showgate/internal/uow"
)

// LockMode selects how balance writes are serialized.
type LockMode string

const (
	// LockOptimistic retries version-checked writes on conflict.
	LockOptimistic LockMode = "optimistic"
	// LockPessimistic takes a row lock for the whole unit of work.
	LockPessimistic LockMode = "pessimistic"
)

type Config struct {
	LockMode LockMode
	// MaxRetries bounds optimistic attempts per call.
	MaxRetries int
	RetryDelay time.Duration
}

type Service struct {
	store repository.Store
	uow   *uow.UoW
	cfg   Config
	now   func() time.Time
}

func New(store repository.Store, cfg Config) *Service {
	if cfg.LockMode == "" {
		cfg.LockMode = LockOptimistic
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 20 * time.Millisecond
	}

	return &Service{
		store: store,
		uow:   uow.New(store),
		cfg:   cfg,
		now:   time.Now,
	}
}

// BalanceInfo is the wallet view returned to clients, enriched with the
// most recent top-up.
type BalanceInfo struct {
	UserID     string
	Balance    int64
	LastCharge *domain.AmountHistory
}

// Charge tops up the user's wallet. A user without a wallet row gets
// one created on first charge.
func (s *Service) Charge(ctx context.Context, userID string, amount int64, description string) (int64, error) {
	const op = "service.wallet.Charge"

	mutate := func(a *domain.Amount) error { return a.Charge(amount) }

	balance, err := s.apply(ctx, userID, amount, domain.HistoryCharge, description, true, mutate)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	return balance, nil
}

// Use debits the user's wallet outside of the payment flow.
func (s *Service) Use(ctx context.Context, userID string, amount int64, description string) (int64, error) {
	const op = "service.wallet.Use"

	mutate := func(a *domain.Amount) error { return a.Use(amount) }

	balance, err := s.apply(ctx, userID, amount, domain.HistoryUse, description, false, mutate)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	return balance, nil
}

// Balance reads the wallet without locking. A user who never charged
// reads as a zero balance.
func (s *Service) Balance(ctx context.Context, userID string) (*BalanceInfo, error) {
	const op = "service.wallet.Balance"

	a, err := s.store.Wallets().FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &BalanceInfo{UserID: userID}, nil
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	info := &BalanceInfo{UserID: userID, Balance: a.Balance}

	last, err := s.store.Wallets().LastChargeByUser(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	info.LastCharge = last

	return info, nil
}

// UseInTx debits the wallet inside the caller's unit of work. The row
// is locked for the remainder of that unit, so the debit commits or
// rolls back together with whatever the caller is doing.
func (s *Service) UseInTx(ctx context.Context, tx repository.Store, userID string, amount int64, description string) error {
	const op = "service.wallet.UseInTx"

	a, err := tx.Wallets().FindByUserForUpdate(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, domain.ErrInsufficientBalance)
		}
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := a.Use(amount); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := tx.Wallets().Update(ctx, a); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	h := &domain.AmountHistory{
		UserID:       userID,
		Amount:       amount,
		Type:         domain.HistoryUse,
		BalanceAfter: a.Balance,
		CreatedAt:    s.now(),
		Description:  description,
	}
	if err := tx.Wallets().AppendHistory(ctx, h); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// RefundInTx credits a refund inside the caller's unit of work. Unlike
// Charge it is not subject to the single top-up cap, only to the
// overall balance limit.
func (s *Service) RefundInTx(ctx context.Context, tx repository.Store, userID string, amount int64, description string) error {
	const op = "service.wallet.RefundInTx"

	if amount <= 0 {
		return fmt.Errorf("%s:%w", op, domain.ErrInvalidAmount)
	}

	a, err := tx.Wallets().FindByUserForUpdate(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			a = domain.NewAmount(userID, 0)
			if err := tx.Wallets().Create(ctx, a); err != nil {
				return fmt.Errorf("%s:%w", op, err)
			}
		} else {
			return fmt.Errorf("%s:%w", op, err)
		}
	}

	if a.Balance+amount > domain.MaxBalance {
		return fmt.Errorf("%s:%w", op, domain.ErrBalanceLimit)
	}
	a.Balance += amount

	if err := tx.Wallets().Update(ctx, a); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	h := &domain.AmountHistory{
		UserID:       userID,
		Amount:       amount,
		Type:         domain.HistoryRefund,
		BalanceAfter: a.Balance,
		CreatedAt:    s.now(),
		Description:  description,
	}
	if err := tx.Wallets().AppendHistory(ctx, h); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// apply runs one balance mutation under the configured lock mode and
// appends the matching ledger entry in the same unit of work.
func (s *Service) apply(
	ctx context.Context,
	userID string,
	amount int64,
	htype domain.HistoryType,
	description string,
	createIfMissing bool,
	mutate func(*domain.Amount) error,
) (int64, error) {
	if s.cfg.LockMode == LockPessimistic {
		return s.applyPessimistic(ctx, userID, amount, htype, description, createIfMissing, mutate)
	}
	return s.applyOptimistic(ctx, userID, amount, htype, description, createIfMissing, mutate)
}

func (s *Service) applyOptimistic(
	ctx context.Context,
	userID string,
	amount int64,
	htype domain.HistoryType,
	description string,
	createIfMissing bool,
	mutate func(*domain.Amount) error,
) (int64, error) {
	var lastErr error

	for attempt := 0; attempt < s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(s.cfg.RetryDelay):
			}
		}

		a, err := s.store.Wallets().FindByUser(ctx, userID)
		created := false
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return 0, err
			}
			if !createIfMissing {
				return 0, ErrWalletNotFound
			}
			a = domain.NewAmount(userID, 0)
			created = true
		}

		if err := mutate(a); err != nil {
			return 0, err
		}

		var balance int64
		err = s.uow.Do(ctx, func(
			ctx context.Context,
			tx repository.Store,
			after func(uow.AfterCommit),
		) error {
			// A first charge creates the row together with its first
			// ledger entry, so a failed unit leaves neither behind.
			if created {
				if err := tx.Wallets().Create(ctx, a); err != nil {
					return err
				}
			} else if err := tx.Wallets().Update(ctx, a); err != nil {
				return err
			}

			h := &domain.AmountHistory{
				UserID:       userID,
				Amount:       amount,
				Type:         htype,
				BalanceAfter: a.Balance,
				CreatedAt:    s.now(),
				Description:  description,
			}
			if err := tx.Wallets().AppendHistory(ctx, h); err != nil {
				return err
			}

			balance = a.Balance
			return nil
		})
		if err != nil {
			if errors.Is(err, repository.ErrVersionConflict) ||
				(created && errors.Is(err, repository.ErrConflict)) {
				// Another request got there first; reread and retry.
				lastErr = err
				continue
			}
			return 0, err
		}

		return balance, nil
	}

	return 0, fmt.Errorf("%w: %w", ErrContention, lastErr)
}

func (s *Service) applyPessimistic(
	ctx context.Context,
	userID string,
	amount int64,
	htype domain.HistoryType,
	description string,
	createIfMissing bool,
	mutate func(*domain.Amount) error,
) (int64, error) {
	var balance int64

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Store,
		after func(uow.AfterCommit),
	) error {
		a, err := tx.Wallets().FindByUserForUpdate(ctx, userID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			if !createIfMissing {
				return ErrWalletNotFound
			}
			a = domain.NewAmount(userID, 0)
			if err := tx.Wallets().Create(ctx, a); err != nil {
				return err
			}
		}

		if err := mutate(a); err != nil {
			return err
		}

		if err := tx.Wallets().Update(ctx, a); err != nil {
			return err
		}

		h := &domain.AmountHistory{
			UserID:       userID,
			Amount:       amount,
			Type:         htype,
			BalanceAfter: a.Balance,
			CreatedAt:    s.now(),
			Description:  description,
		}
		if err := tx.Wallets().AppendHistory(ctx, h); err != nil {
			return err
		}

		balance = a.Balance
		return nil
	})
	if err != nil {
		return 0, err
	}

	return balance, nil
}
