package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kirinyoku/showgate/internal/domain"
	"github.com/kirinyoku/showgate/internal/repository"
	"github.com/kirinyoku/showgate/internal/uow"
)

type Config struct {
	// MaxActive caps how many tokens may be ACTIVE at once.
	MaxActive int
	// ActivationBatch caps how many tokens one sweep may activate.
	ActivationBatch int
	// WaitPerPosition is the estimated wait contributed by each token
	// ahead in the queue.
	WaitPerPosition time.Duration
}

type Service struct {
	store repository.Store
	uow   *uow.UoW
	cfg   Config
	now   func() time.Time
}

func New(store repository.Store, cfg Config) *Service {
	if cfg.MaxActive <= 0 {
		cfg.MaxActive = 100
	}
	if cfg.ActivationBatch <= 0 {
		cfg.ActivationBatch = 10
	}
	if cfg.WaitPerPosition <= 0 {
		cfg.WaitPerPosition = 30 * time.Second
	}

	return &Service{
		store: store,
		uow:   uow.New(store),
		cfg:   cfg,
		now:   time.Now,
	}
}

// TokenInfo is the queue status reported back to a client polling for
// admission.
type TokenInfo struct {
	Token         string
	Status        domain.TokenStatus
	Position      int
	EstimatedWait time.Duration
	RemainingTTL  time.Duration
}

// IssueToken hands out a waiting-room token for the user. Issuing is
// idempotent: a user who already holds a live token gets that token
// back instead of a new queue slot.
func (s *Service) IssueToken(ctx context.Context, userID string) (*TokenInfo, error) {
	const op = "service.queue.IssueToken"

	now := s.now()
	var info *TokenInfo

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Store,
		after func(uow.AfterCommit),
	) error {
		existing, err := tx.QueueTokens().FindLiveByUser(ctx, userID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, err)
		}

		if existing != nil {
			if existing.ShouldAutoExpire(now) {
				if err := s.expireToken(ctx, tx, existing, now); err != nil {
					return fmt.Errorf("%s:%w", op, err)
				}
			} else {
				info, err = s.tokenInfo(ctx, tx, existing, now)
				if err != nil {
					return fmt.Errorf("%s:%w", op, err)
				}
				return nil
			}
		}

		t := domain.NewQueueToken(uuid.NewString(), userID, now)
		if err := tx.QueueTokens().Create(ctx, t); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		info, err = s.tokenInfo(ctx, tx, t, now)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return info, nil
}

// Status reports the token's queue position or remaining active window.
// An active token past its window is expired here rather than waiting
// for the sweep. Expired tokens report ErrTokenExpired; the lazy expiry
// is committed before the error surfaces.
func (s *Service) Status(ctx context.Context, token string) (*TokenInfo, error) {
	const op = "service.queue.Status"

	now := s.now()
	var info *TokenInfo
	var expired bool

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Store,
		after func(uow.AfterCommit),
	) error {
		t, err := tx.QueueTokens().FindByToken(ctx, token)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrTokenNotFound)
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		if t.ShouldAutoExpire(now) {
			if err := s.expireToken(ctx, tx, t, now); err != nil {
				return fmt.Errorf("%s:%w", op, err)
			}
		}

		if t.IsExpired() {
			expired = true
			return nil
		}

		info, err = s.tokenInfo(ctx, tx, t, now)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, fmt.Errorf("%s:%w", op, ErrTokenExpired)
	}

	return info, nil
}

// ValidateActive checks that the token grants admission right now and
// returns the user it belongs to. Tokens past their active window are
// expired on the spot.
func (s *Service) ValidateActive(ctx context.Context, token string) (string, error) {
	const op = "service.queue.ValidateActive"

	now := s.now()
	var userID string

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Store,
		after func(uow.AfterCommit),
	) error {
		t, err := tx.QueueTokens().FindByToken(ctx, token)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrTokenNotFound)
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		if t.ShouldAutoExpire(now) {
			if err := s.expireToken(ctx, tx, t, now); err != nil {
				return fmt.Errorf("%s:%w", op, err)
			}
			return fmt.Errorf("%s:%w", op, ErrTokenExpired)
		}

		switch {
		case t.IsWaiting():
			return fmt.Errorf("%s:%w", op, ErrTokenNotActive)
		case t.IsExpired():
			return fmt.Errorf("%s:%w", op, ErrTokenExpired)
		}

		userID = t.UserID
		return nil
	})
	if err != nil {
		return "", err
	}

	return userID, nil
}

// ExpireToken retires an active token, freeing its admission slot. The
// payment flow calls this once a purchase completes. Retiring a token
// that is already expired fails with domain.ErrTokenAlreadyExpired.
func (s *Service) ExpireToken(ctx context.Context, token string) error {
	const op = "service.queue.ExpireToken"

	now := s.now()

	return s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Store,
		after func(uow.AfterCommit),
	) error {
		t, err := tx.QueueTokens().FindByToken(ctx, token)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrTokenNotFound)
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		if err := s.expireToken(ctx, tx, t, now); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		return nil
	})
}

// Sweep expires active tokens past their window, then promotes the
// oldest waiting tokens into the freed slots, at most ActivationBatch
// per run. Returns how many tokens were expired and activated.
func (s *Service) Sweep(ctx context.Context) (expired, activated int, err error) {
	const op = "service.queue.Sweep"

	now := s.now()

	err = s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Store,
		after func(uow.AfterCommit),
	) error {
		cutoff := now.Add(-domain.TokenActiveDuration)

		overdue, err := tx.QueueTokens().FindActiveExpiredBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		for _, t := range overdue {
			if err := s.expireToken(ctx, tx, t, now); err != nil {
				return fmt.Errorf("%s:%w", op, err)
			}
			expired++
		}

		active, err := tx.QueueTokens().CountActive(ctx)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		slots := s.cfg.MaxActive - active
		if slots > s.cfg.ActivationBatch {
			slots = s.cfg.ActivationBatch
		}
		if slots <= 0 {
			return nil
		}

		waiting, err := tx.QueueTokens().FindOldestWaiting(ctx, slots)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		for _, t := range waiting {
			if err := t.Activate(now); err != nil {
				return fmt.Errorf("%s:%w", op, err)
			}
			if err := tx.QueueTokens().Update(ctx, t); err != nil {
				return fmt.Errorf("%s:%w", op, err)
			}
			activated++
		}

		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	return expired, activated, nil
}

func (s *Service) expireToken(ctx context.Context, tx repository.Store, t *domain.QueueToken, now time.Time) error {
	if err := t.Expire(now); err != nil {
		return err
	}
	return tx.QueueTokens().Update(ctx, t)
}

func (s *Service) tokenInfo(ctx context.Context, tx repository.Store, t *domain.QueueToken, now time.Time) (*TokenInfo, error) {
	info := &TokenInfo{
		Token:  t.Token,
		Status: t.Status,
	}

	switch {
	case t.IsWaiting():
		ahead, err := tx.QueueTokens().CountWaitingBefore(ctx, t.CreatedAt, t.ID)
		if err != nil {
			return nil, err
		}
		info.Position = ahead + 1
		info.EstimatedWait = time.Duration(info.Position) * s.cfg.WaitPerPosition
	case t.IsActive():
		info.RemainingTTL = t.RemainingActiveTime(now)
	}

	return info, nil
}
