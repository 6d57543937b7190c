package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kirinyoku/showgate/internal/domain"
	"github.com/kirinyoku/showgate/internal/repository"
	redisrepo "github.com/kirinyoku/showgate/internal/repository/redis"
	"github.com/kirinyoku/showgate/internal/service/queue"
	"github.com/kirinyoku/showgate/internal/service/wallet"
	"github.com/kirinyoku/showgate/internal/uow"
)

type Service struct {
	store  repository.Store
	wallet *wallet.Service
	queue  *queue.Service
	cache  *redisrepo.Cache
	pubsub Publisher
	uow    *uow.UoW
	now    func() time.Time
}

type Publisher interface {
	PublishScheduleChanged(ctx context.Context, scheduleID int64) error
}

func New(
	store repository.Store,
	walletSvc *wallet.Service,
	queueSvc *queue.Service,
	cache *redisrepo.Cache,
	pubsub Publisher,
) *Service {
	return &Service{
		store:  store,
		wallet: walletSvc,
		queue:  queueSvc,
		cache:  cache,
		pubsub: pubsub,
		uow:    uow.New(store),
		now:    time.Now,
	}
}

// Process pays for a held reservation out of the user's wallet and
// returns the full purchase receipt, so the response carries the
// concert, schedule and seat without a second round trip.
//
// It runs as three units of work. The first validates the hold and
// records a PENDING payment, which doubles as the duplicate guard. The
// second debits the wallet, completes the payment, confirms the
// reservation and finalizes the seat together, so a failed debit rolls
// the whole unit back and no reversal is ever needed. If the second
// unit fails, a third marks the payment FAILED, but only while it is
// still PENDING.
func (s *Service) Process(ctx context.Context, userID string, reservationID int64, queueToken string) (*Receipt, error) {
	const op = "service.payment.Process"

	now := s.now()

	p, amount, err := s.begin(ctx, op, userID, reservationID, now)
	if err != nil {
		return nil, err
	}

	rc, err := s.settle(ctx, op, p, amount, queueToken, now)
	if err != nil {
		s.compensate(ctx, p.ID, err.Error())
		return nil, err
	}

	return rc, nil
}

// begin validates the reservation under lock and records the PENDING
// payment.
func (s *Service) begin(ctx context.Context, op, userID string, reservationID int64, now time.Time) (*domain.Payment, int64, error) {
	var p *domain.Payment
	var amount int64

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Store,
		after func(uow.AfterCommit),
	) error {
		r, err := tx.Reservations().FindByIDForUpdate(ctx, reservationID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrReservationNotFound)
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		// A reservation owned by someone else reads as not found.
		// CONFIRMED and CANCELLED reservations both read as not payable.
		if r.UserID != userID {
			return fmt.Errorf("%s:%w", op, ErrReservationNotFound)
		}
		if r.Status != domain.ReservationTemporary {
			return fmt.Errorf("%s:%w", op, ErrReservationNotPayable)
		}
		if r.IsExpired(now) {
			return fmt.Errorf("%s:%w", op, ErrHoldExpired)
		}

		exists, err := tx.Payments().HasActiveByReservation(ctx, reservationID)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
		if exists {
			return fmt.Errorf("%s:%w", op, ErrDuplicatePayment)
		}

		seat, err := tx.Seats().FindByID(ctx, r.SeatID)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
		amount = seat.Price

		np, err := domain.NewPayment(userID, reservationID, amount, now)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		if err := tx.Payments().Create(ctx, np); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s:%w", op, ErrDuplicatePayment)
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		p = np
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return p, amount, nil
}

// settle is the single unit of work that moves money and finalizes the
// seat. The hold is re-checked under lock because the reaper may have
// expired it since the payment was recorded.
func (s *Service) settle(ctx context.Context, op string, p *domain.Payment, amount int64, queueToken string, now time.Time) (*Receipt, error) {
	var rc *Receipt

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Store,
		after func(uow.AfterCommit),
	) error {
		r, err := tx.Reservations().FindByIDForUpdate(ctx, p.ReservationID)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
		if r.Status != domain.ReservationTemporary {
			return fmt.Errorf("%s:%w", op, ErrReservationNotPayable)
		}
		if r.IsExpired(now) {
			return fmt.Errorf("%s:%w", op, ErrHoldExpired)
		}

		desc := fmt.Sprintf("payment #%d for reservation #%d", p.ID, p.ReservationID)
		if err := s.wallet.UseInTx(ctx, tx, p.UserID, amount, desc); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		if err := p.Complete(now); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
		if err := tx.Payments().Update(ctx, p); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		if err := r.Confirm(p.ID, now); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
		if err := tx.Reservations().Update(ctx, r); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		seat, err := tx.Seats().FindByIDForUpdate(ctx, r.SeatID)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
		if err := seat.ConfirmReservation(); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
		if err := tx.Seats().Update(ctx, seat); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		schedule, err := tx.Schedules().FindByID(ctx, r.ScheduleID)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
		concert, err := tx.Concerts().FindByID(ctx, schedule.ConcertID)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		rc = &Receipt{
			Payment:      p,
			Reservation:  r,
			Seat:         seat,
			Schedule:     schedule,
			ConcertTitle: concert.Title,
		}

		scheduleID := r.ScheduleID
		concertID := schedule.ConcertID
		after(func(ctx context.Context) {
			if s.cache != nil {
				_ = s.cache.InvalidateSchedule(ctx, concertID, scheduleID)
			}
			if s.pubsub != nil {
				_ = s.pubsub.PublishScheduleChanged(ctx, scheduleID)
			}
			if s.queue != nil && queueToken != "" {
				_ = s.queue.ExpireToken(ctx, queueToken)
			}
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return rc, nil
}

// compensate marks the payment FAILED after a settle failure. A payment
// that already left PENDING is never touched.
func (s *Service) compensate(ctx context.Context, paymentID int64, reason string) {
	_ = s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Store,
		after func(uow.AfterCommit),
	) error {
		p, err := tx.Payments().FindByIDForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}

		if p.Status != domain.PaymentPending {
			return nil
		}

		if err := p.Fail(reason, s.now()); err != nil {
			return err
		}

		return tx.Payments().Update(ctx, p)
	})
}

// Get returns the caller's payment together with its refund
// eligibility.
func (s *Service) Get(ctx context.Context, userID string, paymentID int64) (*domain.Payment, bool, error) {
	const op = "service.payment.Get"

	p, err := s.store.Payments().FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, fmt.Errorf("%s:%w", op, ErrPaymentNotFound)
		}
		return nil, false, fmt.Errorf("%s:%w", op, err)
	}

	if p.UserID != userID {
		return nil, false, fmt.Errorf("%s:%w", op, ErrPaymentNotFound)
	}

	return p, p.IsRefundable(s.now()), nil
}

// Receipt is the denormalized view of a completed purchase.
type Receipt struct {
	Payment      *domain.Payment
	Reservation  *domain.Reservation
	Seat         *domain.Seat
	Schedule     *domain.Schedule
	ConcertTitle string
}

// BuildReceipt assembles the purchase details for a payment.
func (s *Service) BuildReceipt(ctx context.Context, userID string, paymentID int64) (*Receipt, error) {
	const op = "service.payment.BuildReceipt"

	p, _, err := s.Get(ctx, userID, paymentID)
	if err != nil {
		return nil, err
	}

	r, err := s.store.Reservations().FindByID(ctx, p.ReservationID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	seat, err := s.store.Seats().FindByID(ctx, r.SeatID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	schedule, err := s.store.Schedules().FindByID(ctx, r.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	concert, err := s.store.Concerts().FindByID(ctx, schedule.ConcertID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &Receipt{
		Payment:      p,
		Reservation:  r,
		Seat:         seat,
		Schedule:     schedule,
		ConcertTitle: concert.Title,
	}, nil
}

// Cancel refunds a completed payment inside the refund window. The
// seat goes back on sale and the wallet is credited in the same unit of
// work.
func (s *Service) Cancel(ctx context.Context, userID string, paymentID int64) (*domain.Payment, error) {
	const op = "service.payment.Cancel"

	now := s.now()
	var out *domain.Payment
	var scheduleID int64

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Store,
		after func(uow.AfterCommit),
	) error {
		p, err := tx.Payments().FindByIDForUpdate(ctx, paymentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrPaymentNotFound)
			}
			return fmt.Errorf("%s:%w", op, err)
		}
		if p.UserID != userID {
			return fmt.Errorf("%s:%w", op, ErrPaymentNotFound)
		}
		if !p.IsRefundable(now) {
			return fmt.Errorf("%s:%w", op, ErrNotRefundable)
		}

		r, err := tx.Reservations().FindByIDForUpdate(ctx, p.ReservationID)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
		scheduleID = r.ScheduleID

		schedule, err := tx.Schedules().FindByIDForUpdate(ctx, r.ScheduleID)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		seat, err := tx.Seats().FindByIDForUpdate(ctx, r.SeatID)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		if err := p.Cancel("refund requested", now); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
		if err := tx.Payments().Update(ctx, p); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		if err := r.Cancel(now); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
		if err := tx.Reservations().Update(ctx, r); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		if seat.Status == domain.SeatReserved {
			seat.Release()
			if err := tx.Seats().Update(ctx, seat); err != nil {
				return fmt.Errorf("%s:%w", op, err)
			}
			if err := schedule.ReturnSeat(); err != nil {
				return fmt.Errorf("%s:%w", op, err)
			}
			if err := tx.Schedules().Update(ctx, schedule); err != nil {
				return fmt.Errorf("%s:%w", op, err)
			}
		}

		desc := fmt.Sprintf("refund for payment #%d", p.ID)
		if err := s.wallet.RefundInTx(ctx, tx, userID, p.Amount, desc); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		out = p

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
		return nil, err
	}

	return out, nil
}
