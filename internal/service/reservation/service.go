package reservation

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
	store   repository.Store
	cache   *redisrepo.Cache
	pubsub  Publisher
	limiter Limiter
	uow     *uow.UoW
	now     func() time.Time
}

// Publisher fans out schedule availability changes to interested
// listeners.
type Publisher interface {
	PublishScheduleChanged(ctx context.Context, scheduleID int64) error
}

// Limiter throttles reservation attempts per caller.
type Limiter interface {
	Allow(ctx context.Context, suffix string) (bool, int64, time.Duration, error)
}

func New(
	store repository.Store,
	cache *redisrepo.Cache,
	pubsub Publisher,
	limiter Limiter,
) *Service {
	return &Service{
		store:   store,
		cache:   cache,
		pubsub:  pubsub,
		limiter: limiter,
		uow:     uow.New(store),
		now:     time.Now,
	}
}

// ReserveSeat places a five-minute hold on one seat. The schedule row
// is locked first, then the seat, so concurrent attempts on the same
// seat serialize and exactly one succeeds.
func (s *Service) ReserveSeat(
	ctx context.Context,
	userID string,
	scheduleID int64,
	seatNumber int,
	rlKey string,
) (*domain.Reservation, error) {
	const op = "service.reservation.ReserveSeat"

	if err := domain.ValidateSeatNumber(seatNumber); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if s.limiter != nil && rlKey != "" {
		ok, _, _, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s:%w", op, ErrRateLimited)
		}
	}

	now := s.now()
	var reservation *domain.Reservation
	var concertID int64

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Store,
		after func(uow.AfterCommit),
	) error {
		schedule, err := tx.Schedules().FindByIDForUpdate(ctx, scheduleID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrScheduleNotFound)
			}
			return fmt.Errorf("%s:%w", op, err)
		}
		concertID = schedule.ConcertID

		if schedule.IsPast(now) {
			return fmt.Errorf("%s:%w", op, ErrScheduleClosed)
		}
		if schedule.IsSoldOut() {
			return fmt.Errorf("%s:%w", op, domain.ErrSoldOut)
		}

		taken, err := tx.Reservations().HasActiveByUserAndSchedule(ctx, userID, scheduleID)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
		if taken {
			return fmt.Errorf("%s:%w", op, ErrAlreadyReserved)
		}

		seat, err := tx.Seats().FindByScheduleAndNumberForUpdate(ctx, scheduleID, seatNumber)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrSeatNotFound)
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		if err := seat.TemporaryReserve(userID, now); err != nil {
			return fmt.Errorf("%s:%w", op, ErrSeatNotAvailable)
		}
		if err := tx.Seats().Update(ctx, seat); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		if err := schedule.TakeSeat(); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
		if err := tx.Schedules().Update(ctx, schedule); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		r := domain.NewReservation(userID, scheduleID, seat.ID, now)
		if err := tx.Reservations().Create(ctx, r); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
		reservation = r

		after(func(ctx context.Context) {
			if s.cache != nil {
				_ = s.cache.InvalidateSchedule(ctx, concertID, scheduleID)
			}
			if s.pubsub != nil {
				_ = s.pubsub.PublishScheduleChanged(ctx, scheduleID)
			}
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return reservation, nil
}

// Get returns the caller's reservation. Foreign reservations read as
// not found.
func (s *Service) Get(ctx context.Context, userID string, reservationID int64) (*domain.Reservation, error) {
	const op = "service.reservation.Get"

	r, err := s.store.Reservations().FindByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrReservationNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if r.UserID != userID {
		return nil, fmt.Errorf("%s:%w", op, ErrReservationNotFound)
	}

	return r, nil
}

// ReleaseExpired reaps temporary holds past their TTL: the reservation
// expires, the seat goes back on sale and the schedule counter is
// restored, all in one unit of work per reservation. Each candidate is
// re-read under lock, so a hold that was paid for in the meantime is
// left alone. Returns how many holds were released.
func (s *Service) ReleaseExpired(ctx context.Context) (int, error) {
	const op = "service.reservation.ReleaseExpired"

	now := s.now()
	cutoff := now.Add(-domain.HoldTTL)

	candidates, err := s.store.Reservations().ListExpiredTemporary(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	released := 0
	for _, c := range candidates {
		ok, err := s.releaseOne(ctx, c.ID, now)
		if err != nil {
			return released, fmt.Errorf("%s:%w", op, err)
		}
		if ok {
			released++
		}
	}

	return released, nil
}

func (s *Service) releaseOne(ctx context.Context, reservationID int64, now time.Time) (bool, error) {
	released := false

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Store,
		after func(uow.AfterCommit),
	) error {
		r, err := tx.Reservations().FindByIDForUpdate(ctx, reservationID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			return err
		}

		if !r.IsExpired(now) {
			return nil
		}

		schedule, err := tx.Schedules().FindByIDForUpdate(ctx, r.ScheduleID)
		if err != nil {
			return err
		}

		seat, err := tx.Seats().FindByIDForUpdate(ctx, r.SeatID)
		if err != nil {
			return err
		}

		if err := r.Expire(now); err != nil {
			return err
		}
		if err := tx.Reservations().Update(ctx, r); err != nil {
			return err
		}

		if seat.Status == domain.SeatTemporaryReserved && seat.IsHeldBy(r.UserID) {
			seat.Release()
			if err := tx.Seats().Update(ctx, seat); err != nil {
				return err
			}

			if err := schedule.ReturnSeat(); err != nil {
				return err
			}
			if err := tx.Schedules().Update(ctx, schedule); err != nil {
				return err
			}
		}

		released = true

		scheduleID := r.ScheduleID
		concertID := schedule.ConcertID
		after(func(ctx context.Context) {
			if s.cache != nil {
				_ = s.cache.InvalidateSchedule(ctx, concertID, scheduleID)
			}
			if s.pubsub != nil {
				_ = s.pubsub.PublishScheduleChanged(ctx, scheduleID)
			}
		})

		return nil
	})
	if err != nil {
		return false, err
	}

	return released, nil
}
