package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kirinyoku/showgate/internal/domain"
	"github.com/kirinyoku/showgate/internal/repository"
	redisrepo "github.com/kirinyoku/showgate/internal/repository/redis"
	"github.com/kirinyoku/showgate/internal/uow"
)

type Service struct {
	store  repository.Store
	cache  *redisrepo.Cache
	pubsub Publisher
	uow    *uow.UoW
	now    func() time.Time
}

type Publisher interface {
	PublishScheduleChanged(ctx context.Context, scheduleID int64) error
}

func New(store repository.Store, cache *redisrepo.Cache, pubsub Publisher) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		pubsub: pubsub,
		uow:    uow.New(store),
		now:    time.Now,
	}
}

// CreateConcert registers a concert and returns its ID.
func (s *Service) CreateConcert(ctx context.Context, title, venue, description string) (int64, error) {
	const op = "service.admin.CreateConcert"

	c := &domain.Concert{Title: title, Venue: venue, Description: description}

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Store,
		after func(uow.AfterCommit),
	) error {
		if err := tx.Concerts().Create(ctx, c); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		after(func(ctx context.Context) {
			if s.cache != nil {
				_ = s.cache.InvalidateConcert(ctx, c.ID)
			}
		})

		return nil
	})
	if err != nil {
		return 0, err
	}

	return c.ID, nil
}

// CreateSchedule opens a new performance for a concert and lays out its
// full seat grid in the same unit of work.
func (s *Service) CreateSchedule(ctx context.Context, concertID int64, performanceTime time.Time) (*domain.Schedule, error) {
	const op = "service.admin.CreateSchedule"

	if performanceTime.Before(s.now()) {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidSchedule)
	}

	var schedule *domain.Schedule

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Store,
		after func(uow.AfterCommit),
	) error {
		if _, err := tx.Concerts().FindByID(ctx, concertID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrConcertNotFound)
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		sc := &domain.Schedule{
			ConcertID:       concertID,
			PerformanceDate: performanceTime.Truncate(24 * time.Hour),
			PerformanceTime: performanceTime,
			TotalSeats:      domain.MaxSeatNumber,
			AvailableSeats:  domain.MaxSeatNumber,
		}
		if err := tx.Schedules().Create(ctx, sc); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s:%w", op, ErrScheduleExists)
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		seats := domain.NewSeatGrid(sc.ID)
		if err := tx.Seats().CreateBatch(ctx, seats); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		schedule = sc

		after(func(ctx context.Context) {
			if s.cache != nil {
				_ = s.cache.InvalidateSchedule(ctx, concertID, sc.ID)
			}
			if s.pubsub != nil {
				_ = s.pubsub.PublishScheduleChanged(ctx, sc.ID)
			}
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return schedule, nil
}
