package memory

import (
	"context"
	"sort"
	"time"

	"github.com/kirinyoku/showgate/internal/domain"
	"github.com/kirinyoku/showgate/internal/repository"
)

type reservationRepo struct {
	s *Store
}

func (r *reservationRepo) Create(ctx context.Context, res *domain.Reservation) error {
	return r.s.write(func(st *state) error {
		st.nextRes++
		res.ID = st.nextRes

		cp := *res
		st.reservations[res.ID] = &cp
		return nil
	})
}

func (r *reservationRepo) Update(ctx context.Context, res *domain.Reservation) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.reservations[res.ID]; !ok {
			return repository.ErrNotFound
		}

		cp := *res
		st.reservations[res.ID] = &cp
		return nil
	})
}

func (r *reservationRepo) FindByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	var out *domain.Reservation
	err := r.s.read(func(st *state) error {
		res, ok := st.reservations[id]
		if !ok {
			return repository.ErrNotFound
		}

		cp := *res
		out = &cp
		return nil
	})
	return out, err
}

func (r *reservationRepo) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Reservation, error) {
	return r.FindByID(ctx, id)
}

func (r *reservationRepo) HasActiveByUserAndSchedule(ctx context.Context, userID string, scheduleID int64) (bool, error) {
	var found bool
	err := r.s.read(func(st *state) error {
		for _, res := range st.reservations {
			if res.UserID == userID && res.ScheduleID == scheduleID && res.IsActive() {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *reservationRepo) ListExpiredTemporary(ctx context.Context, cutoff time.Time) ([]*domain.Reservation, error) {
	var out []*domain.Reservation
	err := r.s.read(func(st *state) error {
		for _, res := range st.reservations {
			if res.Status == domain.ReservationTemporary && res.ReservedAt.Before(cutoff) {
				cp := *res
				out = append(out, &cp)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

type paymentRepo struct {
	s *Store
}

func (r *paymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	return r.s.write(func(st *state) error {
		for _, other := range st.payments {
			if other.ReservationID == p.ReservationID && other.IsActive() {
				return repository.ErrConflict
			}
		}

		st.nextPayment++
		p.ID = st.nextPayment

		cp := *p
		st.payments[p.ID] = &cp
		return nil
	})
}

func (r *paymentRepo) Update(ctx context.Context, p *domain.Payment) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.payments[p.ID]; !ok {
			return repository.ErrNotFound
		}

		cp := *p
		st.payments[p.ID] = &cp
		return nil
	})
}

func (r *paymentRepo) FindByID(ctx context.Context, id int64) (*domain.Payment, error) {
	var out *domain.Payment
	err := r.s.read(func(st *state) error {
		p, ok := st.payments[id]
		if !ok {
			return repository.ErrNotFound
		}

		cp := *p
		out = &cp
		return nil
	})
	return out, err
}

func (r *paymentRepo) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Payment, error) {
	return r.FindByID(ctx, id)
}

func (r *paymentRepo) HasActiveByReservation(ctx context.Context, reservationID int64) (bool, error) {
	var found bool
	err := r.s.read(func(st *state) error {
		for _, p := range st.payments {
			if p.ReservationID == reservationID && p.IsActive() {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}
