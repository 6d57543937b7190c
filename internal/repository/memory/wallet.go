package memory

import (
	"context"

	"github.com/kirinyoku/showgate/internal/domain"
	"github.com/kirinyoku/showgate/internal/repository"
)

type walletRepo struct {
	s *Store
}

func (r *walletRepo) Create(ctx context.Context, a *domain.Amount) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.wallets[a.UserID]; ok {
			return repository.ErrConflict
		}

		st.nextWallet++
		a.ID = st.nextWallet
		a.Version = 1

		cp := *a
		st.wallets[a.UserID] = &cp
		return nil
	})
}

// Update applies a version-checked write: a stale version means another
// writer got there first.
func (r *walletRepo) Update(ctx context.Context, a *domain.Amount) error {
	return r.s.write(func(st *state) error {
		cur, ok := st.wallets[a.UserID]
		if !ok {
			return repository.ErrNotFound
		}
		if cur.Version != a.Version {
			return repository.ErrVersionConflict
		}

		a.Version++
		cp := *a
		st.wallets[a.UserID] = &cp
		return nil
	})
}

func (r *walletRepo) FindByUser(ctx context.Context, userID string) (*domain.Amount, error) {
	var out *domain.Amount
	err := r.s.read(func(st *state) error {
		a, ok := st.wallets[userID]
		if !ok {
			return repository.ErrNotFound
		}

		cp := *a
		out = &cp
		return nil
	})
	return out, err
}

func (r *walletRepo) FindByUserForUpdate(ctx context.Context, userID string) (*domain.Amount, error) {
	return r.FindByUser(ctx, userID)
}

func (r *walletRepo) AppendHistory(ctx context.Context, h *domain.AmountHistory) error {
	return r.s.write(func(st *state) error {
		st.nextHistory++
		h.ID = st.nextHistory

		cp := *h
		st.histories = append(st.histories, &cp)
		return nil
	})
}

func (r *walletRepo) LastChargeByUser(ctx context.Context, userID string) (*domain.AmountHistory, error) {
	var out *domain.AmountHistory
	err := r.s.read(func(st *state) error {
		for i := len(st.histories) - 1; i >= 0; i-- {
			h := st.histories[i]
			if h.UserID == userID && h.Type == domain.HistoryCharge {
				cp := *h
				out = &cp
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}
