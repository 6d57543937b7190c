package memory

import (
	"context"
	"sort"
	"time"

	"github.com/kirinyoku/showgate/internal/domain"
	"github.com/kirinyoku/showgate/internal/repository"
)

type queueRepo struct {
	s *Store
}

func (r *queueRepo) Create(ctx context.Context, t *domain.QueueToken) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.tokenIDs[t.Token]; ok {
			return repository.ErrConflict
		}

		st.nextToken++
		t.ID = st.nextToken

		cp := *t
		st.tokens[t.ID] = &cp
		st.tokenIDs[t.Token] = t.ID
		return nil
	})
}

func (r *queueRepo) Update(ctx context.Context, t *domain.QueueToken) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.tokens[t.ID]; !ok {
			return repository.ErrNotFound
		}

		cp := *t
		st.tokens[t.ID] = &cp
		return nil
	})
}

func (r *queueRepo) FindByToken(ctx context.Context, token string) (*domain.QueueToken, error) {
	var out *domain.QueueToken
	err := r.s.read(func(st *state) error {
		id, ok := st.tokenIDs[token]
		if !ok {
			return repository.ErrNotFound
		}

		cp := *st.tokens[id]
		out = &cp
		return nil
	})
	return out, err
}

func (r *queueRepo) FindLiveByUser(ctx context.Context, userID string) (*domain.QueueToken, error) {
	var out *domain.QueueToken
	err := r.s.read(func(st *state) error {
		for _, t := range st.tokens {
			if t.UserID == userID && !t.IsExpired() {
				cp := *t
				out = &cp
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r *queueRepo) CountWaitingBefore(ctx context.Context, createdAt time.Time, id int64) (int, error) {
	var n int
	err := r.s.read(func(st *state) error {
		for _, t := range st.tokens {
			if !t.IsWaiting() || t.ID == id {
				continue
			}
			if t.CreatedAt.Before(createdAt) || (t.CreatedAt.Equal(createdAt) && t.ID < id) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *queueRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.s.read(func(st *state) error {
		for _, t := range st.tokens {
			if t.IsActive() {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *queueRepo) FindActiveExpiredBefore(ctx context.Context, cutoff time.Time) ([]*domain.QueueToken, error) {
	var out []*domain.QueueToken
	err := r.s.read(func(st *state) error {
		for _, t := range st.tokens {
			if t.IsActive() && t.ActivatedAt != nil && t.ActivatedAt.Before(cutoff) {
				cp := *t
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

func (r *queueRepo) FindOldestWaiting(ctx context.Context, limit int) ([]*domain.QueueToken, error) {
	var out []*domain.QueueToken
	err := r.s.read(func(st *state) error {
		for _, t := range st.tokens {
			if t.IsWaiting() {
				cp := *t
				out = append(out, &cp)
			}
		}

		sort.Slice(out, func(i, j int) bool {
			if out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].ID < out[j].ID
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})

		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
		return nil
	})
	return out, err
}
