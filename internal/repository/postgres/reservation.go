package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kirinyoku/showgate/internal/domain"
)

type ReservationRepo struct {
	db DB
}

const reservationColumns = `id, user_id, schedule_id, seat_id, status, reserved_at, confirmed_at, expired_at, cancelled_at, payment_id`

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var r domain.Reservation
	err := row.Scan(
		&r.ID, &r.UserID, &r.ScheduleID, &r.SeatID, &r.Status,
		&r.ReservedAt, &r.ConfirmedAt, &r.ExpiredAt, &r.CancelledAt, &r.PaymentID,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (rp *ReservationRepo) Create(ctx context.Context, r *domain.Reservation) error {
	const op = "postgres.ReservationRepo.Create"

	err := rp.db.QueryRow(ctx,
		`INSERT INTO reservations(user_id, schedule_id, seat_id, status, reserved_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		r.UserID, r.ScheduleID, r.SeatID, r.Status, r.ReservedAt,
	).Scan(&r.ID)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (rp *ReservationRepo) Update(ctx context.Context, r *domain.Reservation) error {
	const op = "postgres.ReservationRepo.Update"

	_, err := rp.db.Exec(ctx,
		`UPDATE reservations
		 SET status = $2, confirmed_at = $3, expired_at = $4, cancelled_at = $5, payment_id = $6
		 WHERE id = $1`,
		r.ID, r.Status, r.ConfirmedAt, r.ExpiredAt, r.CancelledAt, r.PaymentID,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (rp *ReservationRepo) FindByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	const op = "postgres.ReservationRepo.FindByID"

	r, err := scanReservation(rp.db.QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return r, nil
}

func (rp *ReservationRepo) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Reservation, error) {
	const op = "postgres.ReservationRepo.FindByIDForUpdate"

	r, err := scanReservation(rp.db.QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return r, nil
}

func (rp *ReservationRepo) HasActiveByUserAndSchedule(ctx context.Context, userID string, scheduleID int64) (bool, error) {
	const op = "postgres.ReservationRepo.HasActiveByUserAndSchedule"

	var exists bool
	err := rp.db.QueryRow(ctx,
		`SELECT EXISTS(
		   SELECT 1 FROM reservations
		   WHERE user_id = $1 AND schedule_id = $2
		     AND status IN ('TEMPORARY_RESERVED', 'CONFIRMED')
		 )`,
		userID, scheduleID,
	).Scan(&exists)
	if err != nil {
		return false, wrapDBErr(op, err)
	}

	return exists, nil
}

func (rp *ReservationRepo) ListExpiredTemporary(ctx context.Context, cutoff time.Time) ([]*domain.Reservation, error) {
	const op = "postgres.ReservationRepo.ListExpiredTemporary"

	rows, err := rp.db.Query(ctx,
		`SELECT `+reservationColumns+`
		 FROM reservations
		 WHERE status = 'TEMPORARY_RESERVED' AND reserved_at < $1
		 ORDER BY id
		 FOR UPDATE SKIP LOCKED`,
		cutoff,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []*domain.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

type PaymentRepo struct {
	db DB
}

const paymentColumns = `id, reservation_id, user_id, amount, status, failure_reason, cancel_reason, created_at, paid_at, failed_at, cancelled_at`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	var failureReason, cancelReason *string
	err := row.Scan(
		&p.ID, &p.ReservationID, &p.UserID, &p.Amount, &p.Status,
		&failureReason, &cancelReason, &p.CreatedAt, &p.PaidAt, &p.FailedAt, &p.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	if failureReason != nil {
		p.FailureReason = *failureReason
	}
	if cancelReason != nil {
		p.CancelReason = *cancelReason
	}
	return &p, nil
}

func (rp *PaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	const op = "postgres.PaymentRepo.Create"

	// Partial unique index on reservation_id for PENDING/COMPLETED rows turns
	// a duplicate payment attempt into a 23505, surfaced as ErrConflict.
	err := rp.db.QueryRow(ctx,
		`INSERT INTO payments(reservation_id, user_id, amount, status, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		p.ReservationID, p.UserID, p.Amount, p.Status, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (rp *PaymentRepo) Update(ctx context.Context, p *domain.Payment) error {
	const op = "postgres.PaymentRepo.Update"

	_, err := rp.db.Exec(ctx,
		`UPDATE payments
		 SET status = $2, failure_reason = $3, cancel_reason = $4, paid_at = $5, failed_at = $6, cancelled_at = $7
		 WHERE id = $1`,
		p.ID, p.Status, nullIfEmpty(p.FailureReason), nullIfEmpty(p.CancelReason), p.PaidAt, p.FailedAt, p.CancelledAt,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (rp *PaymentRepo) FindByID(ctx context.Context, id int64) (*domain.Payment, error) {
	const op = "postgres.PaymentRepo.FindByID"

	p, err := scanPayment(rp.db.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return p, nil
}

func (rp *PaymentRepo) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Payment, error) {
	const op = "postgres.PaymentRepo.FindByIDForUpdate"

	p, err := scanPayment(rp.db.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return p, nil
}

func (rp *PaymentRepo) HasActiveByReservation(ctx context.Context, reservationID int64) (bool, error) {
	const op = "postgres.PaymentRepo.HasActiveByReservation"

	var exists bool
	err := rp.db.QueryRow(ctx,
		`SELECT EXISTS(
		   SELECT 1 FROM payments
		   WHERE reservation_id = $1 AND status IN ('PENDING', 'COMPLETED')
		 )`,
		reservationID,
	).Scan(&exists)
	if err != nil {
		return false, wrapDBErr(op, err)
	}

	return exists, nil
}
