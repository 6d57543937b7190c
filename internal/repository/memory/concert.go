package memory

import (
	"context"
	"sort"
	"time"

	"github.com/kirinyoku/showgate/internal/domain"
	"github.com/kirinyoku/showgate/internal/repository"
)

type concertRepo struct {
	s *Store
}

func (r *concertRepo) Create(ctx context.Context, c *domain.Concert) error {
	return r.s.write(func(st *state) error {
		st.nextConcert++
		c.ID = st.nextConcert

		cp := *c
		st.concerts[c.ID] = &cp
		return nil
	})
}

func (r *concertRepo) FindByID(ctx context.Context, id int64) (*domain.Concert, error) {
	var out *domain.Concert
	err := r.s.read(func(st *state) error {
		c, ok := st.concerts[id]
		if !ok {
			return repository.ErrNotFound
		}

		cp := *c
		out = &cp
		return nil
	})
	return out, err
}

func (r *concertRepo) List(ctx context.Context) ([]*domain.Concert, error) {
	var out []*domain.Concert
	err := r.s.read(func(st *state) error {
		for _, c := range st.concerts {
			cp := *c
			out = append(out, &cp)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

type scheduleRepo struct {
	s *Store
}

func (r *scheduleRepo) Create(ctx context.Context, sc *domain.Schedule) error {
	return r.s.write(func(st *state) error {
		st.nextSchedule++
		sc.ID = st.nextSchedule

		cp := *sc
		st.schedules[sc.ID] = &cp
		return nil
	})
}

func (r *scheduleRepo) Update(ctx context.Context, sc *domain.Schedule) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.schedules[sc.ID]; !ok {
			return repository.ErrNotFound
		}

		cp := *sc
		st.schedules[sc.ID] = &cp
		return nil
	})
}

func (r *scheduleRepo) FindByID(ctx context.Context, id int64) (*domain.Schedule, error) {
	var out *domain.Schedule
	err := r.s.read(func(st *state) error {
		sc, ok := st.schedules[id]
		if !ok {
			return repository.ErrNotFound
		}

		cp := *sc
		out = &cp
		return nil
	})
	return out, err
}

// FindByIDForUpdate is FindByID here: the unit of work already holds
// the store-wide lock, which subsumes the row lock.
func (r *scheduleRepo) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Schedule, error) {
	return r.FindByID(ctx, id)
}

func (r *scheduleRepo) ListUpcomingByConcert(ctx context.Context, concertID int64, now time.Time) ([]*domain.Schedule, error) {
	var out []*domain.Schedule
	err := r.s.read(func(st *state) error {
		for _, sc := range st.schedules {
			if sc.ConcertID == concertID && !sc.IsPast(now) {
				cp := *sc
				out = append(out, &cp)
			}
		}
		sort.Slice(out, func(i, j int) bool {
			return out[i].PerformanceTime.Before(out[j].PerformanceTime)
		})
		return nil
	})
	return out, err
}

type seatRepo struct {
	s *Store
}

func (r *seatRepo) CreateBatch(ctx context.Context, seats []*domain.Seat) error {
	return r.s.write(func(st *state) error {
		for _, seat := range seats {
			key := seatKey{scheduleID: seat.ScheduleID, seatNumber: seat.SeatNumber}
			if _, ok := st.seatIDs[key]; ok {
				return repository.ErrConflict
			}
		}

		for _, seat := range seats {
			st.nextSeat++
			seat.ID = st.nextSeat

			cp := *seat
			st.seats[seat.ID] = &cp
			st.seatIDs[seatKey{scheduleID: seat.ScheduleID, seatNumber: seat.SeatNumber}] = seat.ID
		}
		return nil
	})
}

func (r *seatRepo) Update(ctx context.Context, seat *domain.Seat) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.seats[seat.ID]; !ok {
			return repository.ErrNotFound
		}

		cp := *seat
		st.seats[seat.ID] = &cp
		return nil
	})
}

func (r *seatRepo) FindByID(ctx context.Context, id int64) (*domain.Seat, error) {
	var out *domain.Seat
	err := r.s.read(func(st *state) error {
		seat, ok := st.seats[id]
		if !ok {
			return repository.ErrNotFound
		}

		cp := *seat
		out = &cp
		return nil
	})
	return out, err
}

func (r *seatRepo) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Seat, error) {
	return r.FindByID(ctx, id)
}

func (r *seatRepo) FindByScheduleAndNumberForUpdate(ctx context.Context, scheduleID int64, seatNumber int) (*domain.Seat, error) {
	var out *domain.Seat
	err := r.s.read(func(st *state) error {
		id, ok := st.seatIDs[seatKey{scheduleID: scheduleID, seatNumber: seatNumber}]
		if !ok {
			return repository.ErrNotFound
		}

		cp := *st.seats[id]
		out = &cp
		return nil
	})
	return out, err
}

func (r *seatRepo) ListBySchedule(ctx context.Context, scheduleID int64, onlyAvailable bool) ([]*domain.Seat, error) {
	var out []*domain.Seat
	err := r.s.read(func(st *state) error {
		for _, seat := range st.seats {
			if seat.ScheduleID != scheduleID {
				continue
			}
			if onlyAvailable && !seat.IsAvailable() {
				continue
			}
			cp := *seat
			out = append(out, &cp)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
		return nil
	})
	return out, err
}
