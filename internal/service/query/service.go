package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kirinyoku/showgate/internal/domain"
	redisx "github.com/kirinyoku/showgate/internal/redis"
	"github.com/kirinyoku/showgate/internal/repository"
	redisrepo "github.com/kirinyoku/showgate/internal/repository/redis"
)

type Config struct {
	ConcertListTTL time.Duration
	SchedulesTTL   time.Duration
	SeatsTTL       time.Duration
}

type Service struct {
	store repository.Store
	cache *redisrepo.Cache
	cfg   Config
	now   func() time.Time
}

func New(store repository.Store, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.ConcertListTTL <= 0 {
		cfg.ConcertListTTL = 60 * time.Second
	}
	if cfg.SchedulesTTL <= 0 {
		cfg.SchedulesTTL = 30 * time.Second
	}
	if cfg.SeatsTTL <= 0 {
		cfg.SeatsTTL = 5 * time.Second
	}

	return &Service{
		store: store,
		cache: cache,
		cfg:   cfg,
		now:   time.Now,
	}
}

// ListConcerts returns all concerts, served from cache when warm.
func (s *Service) ListConcerts(ctx context.Context) ([]domain.Concert, error) {
	const op = "service.query.ListConcerts"

	concerts, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisx.KeyConcertList(),
		s.cfg.ConcertListTTL,
		func(ctx context.Context) ([]domain.Concert, error) {
			list, err := s.store.Concerts().List(ctx)
			if err != nil {
				return nil, err
			}

			out := make([]domain.Concert, 0, len(list))
			for _, c := range list {
				out = append(out, *c)
			}
			return out, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return concerts, nil
}

// GetConcert reads one concert without caching; the list endpoint is
// the hot path.
func (s *Service) GetConcert(ctx context.Context, id int64) (*domain.Concert, error) {
	const op = "service.query.GetConcert"

	c, err := s.store.Concerts().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrConcertNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return c, nil
}

// ListAvailableSchedules returns the concert's upcoming schedules with
// seats still on sale.
func (s *Service) ListAvailableSchedules(ctx context.Context, concertID int64) ([]domain.Schedule, error) {
	const op = "service.query.ListAvailableSchedules"

	if _, err := s.GetConcert(ctx, concertID); err != nil {
		return nil, err
	}

	now := s.now()

	schedules, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisx.KeyConcertSchedules(concertID),
		s.cfg.SchedulesTTL,
		func(ctx context.Context) ([]domain.Schedule, error) {
			list, err := s.store.Schedules().ListUpcomingByConcert(ctx, concertID, now)
			if err != nil {
				return nil, err
			}

			out := make([]domain.Schedule, 0, len(list))
			for _, sc := range list {
				out = append(out, *sc)
			}
			return out, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	open := schedules[:0]
	for _, sc := range schedules {
		if sc.IsOpenForReservation(now) {
			open = append(open, sc)
		}
	}

	return open, nil
}

// ListAvailableDates returns the distinct performance dates a concert
// can still be booked for.
func (s *Service) ListAvailableDates(ctx context.Context, concertID int64) ([]time.Time, error) {
	const op = "service.query.ListAvailableDates"

	schedules, err := s.ListAvailableSchedules(ctx, concertID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	seen := make(map[time.Time]struct{}, len(schedules))
	dates := make([]time.Time, 0, len(schedules))
	for _, sc := range schedules {
		d := sc.PerformanceDate
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}

	return dates, nil
}

// ListSeats returns a schedule's seat map. The cached variant holds the
// full map for a short TTL; availability filtering happens after the
// cache read so both variants share one entry.
func (s *Service) ListSeats(ctx context.Context, scheduleID int64, onlyAvailable bool) ([]domain.Seat, error) {
	const op = "service.query.ListSeats"

	if _, err := s.store.Schedules().FindByID(ctx, scheduleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrScheduleNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	seats, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisx.KeyScheduleSeats(scheduleID),
		s.cfg.SeatsTTL,
		func(ctx context.Context) ([]domain.Seat, error) {
			list, err := s.store.Seats().ListBySchedule(ctx, scheduleID, false)
			if err != nil {
				return nil, err
			}

			out := make([]domain.Seat, 0, len(list))
			for _, seat := range list {
				out = append(out, *seat)
			}
			return out, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if !onlyAvailable {
		return seats, nil
	}

	available := seats[:0]
	for _, seat := range seats {
		if seat.IsAvailable() {
			available = append(available, seat)
		}
	}

	return available, nil
}
