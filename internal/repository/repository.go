package repository

import (
	"context"
	"time"

	"github.com/kirinyoku/showgate/internal/domain"
)

// Store groups the entity repositories behind one transactional
// boundary. RunTx executes fn against a store bound to a single unit of
// work: every mutation inside fn persists together or not at all, and
// the *ForUpdate reads hold their row lock until the unit commits.
type Store interface {
	RunTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error

	QueueTokens() QueueTokenRepository
	Concerts() ConcertRepository
	Schedules() ScheduleRepository
	Seats() SeatRepository
	Reservations() ReservationRepository
	Payments() PaymentRepository
	Wallets() WalletRepository
}

type QueueTokenRepository interface {
	Create(ctx context.Context, t *domain.QueueToken) error
	Update(ctx context.Context, t *domain.QueueToken) error
	FindByToken(ctx context.Context, token string) (*domain.QueueToken, error)
	// FindLiveByUser returns the user's WAITING or ACTIVE token, if any.
	FindLiveByUser(ctx context.Context, userID string) (*domain.QueueToken, error)
	// CountWaitingBefore counts WAITING tokens issued strictly before
	// the given token; ties on CreatedAt break by row ID.
	CountWaitingBefore(ctx context.Context, createdAt time.Time, id int64) (int, error)
	CountActive(ctx context.Context) (int, error)
	// FindActiveExpiredBefore returns ACTIVE tokens activated before cutoff.
	FindActiveExpiredBefore(ctx context.Context, cutoff time.Time) ([]*domain.QueueToken, error)
	// FindOldestWaiting returns up to limit WAITING tokens in FIFO order.
	FindOldestWaiting(ctx context.Context, limit int) ([]*domain.QueueToken, error)
}

type ConcertRepository interface {
	Create(ctx context.Context, c *domain.Concert) error
	FindByID(ctx context.Context, id int64) (*domain.Concert, error)
	List(ctx context.Context) ([]*domain.Concert, error)
}

type ScheduleRepository interface {
	Create(ctx context.Context, s *domain.Schedule) error
	Update(ctx context.Context, s *domain.Schedule) error
	FindByID(ctx context.Context, id int64) (*domain.Schedule, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.Schedule, error)
	// ListUpcomingByConcert returns schedules whose performance time is
	// not before now, oldest first.
	ListUpcomingByConcert(ctx context.Context, concertID int64, now time.Time) ([]*domain.Schedule, error)
}

type SeatRepository interface {
	CreateBatch(ctx context.Context, seats []*domain.Seat) error
	Update(ctx context.Context, s *domain.Seat) error
	FindByID(ctx context.Context, id int64) (*domain.Seat, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.Seat, error)
	FindByScheduleAndNumberForUpdate(ctx context.Context, scheduleID int64, seatNumber int) (*domain.Seat, error)
	ListBySchedule(ctx context.Context, scheduleID int64, onlyAvailable bool) ([]*domain.Seat, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) error
	Update(ctx context.Context, r *domain.Reservation) error
	FindByID(ctx context.Context, id int64) (*domain.Reservation, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.Reservation, error)
	// HasActiveByUserAndSchedule reports whether the user already holds
	// a TEMPORARY_RESERVED or CONFIRMED reservation for the schedule.
	HasActiveByUserAndSchedule(ctx context.Context, userID string, scheduleID int64) (bool, error)
	// ListExpiredTemporary returns TEMPORARY_RESERVED reservations
	// reserved before cutoff.
	ListExpiredTemporary(ctx context.Context, cutoff time.Time) ([]*domain.Reservation, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	Update(ctx context.Context, p *domain.Payment) error
	FindByID(ctx context.Context, id int64) (*domain.Payment, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.Payment, error)
	// HasActiveByReservation reports whether a PENDING or COMPLETED
	// payment already exists for the reservation.
	HasActiveByReservation(ctx context.Context, reservationID int64) (bool, error)
}

type WalletRepository interface {
	Create(ctx context.Context, a *domain.Amount) error
	// Update persists the balance and bumps the version; it fails with
	// ErrVersionConflict when the row changed since it was read.
	Update(ctx context.Context, a *domain.Amount) error
	FindByUser(ctx context.Context, userID string) (*domain.Amount, error)
	FindByUserForUpdate(ctx context.Context, userID string) (*domain.Amount, error)
	AppendHistory(ctx context.Context, h *domain.AmountHistory) error
	// LastChargeByUser returns the most recent CHARGE entry.
	LastChargeByUser(ctx context.Context, userID string) (*domain.AmountHistory, error)
}
