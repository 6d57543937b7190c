package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kirinyoku/showgate/internal/domain"
)

type ConcertRepo struct {
	db DB
}

func (r *ConcertRepo) Create(ctx context.Context, c *domain.Concert) error {
	const op = "postgres.ConcertRepo.Create"

	err := r.db.QueryRow(ctx,
		`INSERT INTO concerts(title, venue, description)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		c.Title, c.Venue, c.Description,
	).Scan(&c.ID)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *ConcertRepo) FindByID(ctx context.Context, id int64) (*domain.Concert, error) {
	const op = "postgres.ConcertRepo.FindByID"

	var c domain.Concert
	err := r.db.QueryRow(ctx,
		`SELECT id, title, venue, description FROM concerts WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Title, &c.Venue, &c.Description)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &c, nil
}

func (r *ConcertRepo) List(ctx context.Context) ([]*domain.Concert, error) {
	const op = "postgres.ConcertRepo.List"

	rows, err := r.db.Query(ctx,
		`SELECT id, title, venue, description FROM concerts ORDER BY id`,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []*domain.Concert
	for rows.Next() {
		var c domain.Concert
		if err := rows.Scan(&c.ID, &c.Title, &c.Venue, &c.Description); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

type ScheduleRepo struct {
	db DB
}

const scheduleColumns = `id, concert_id, performance_date, performance_time, total_seats, available_seats`

func scanSchedule(row pgx.Row) (*domain.Schedule, error) {
	var s domain.Schedule
	err := row.Scan(
		&s.ID, &s.ConcertID, &s.PerformanceDate, &s.PerformanceTime,
		&s.TotalSeats, &s.AvailableSeats,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ScheduleRepo) Create(ctx context.Context, s *domain.Schedule) error {
	const op = "postgres.ScheduleRepo.Create"

	err := r.db.QueryRow(ctx,
		`INSERT INTO schedules(concert_id, performance_date, performance_time, total_seats, available_seats)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		s.ConcertID, s.PerformanceDate, s.PerformanceTime, s.TotalSeats, s.AvailableSeats,
	).Scan(&s.ID)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *ScheduleRepo) Update(ctx context.Context, s *domain.Schedule) error {
	const op = "postgres.ScheduleRepo.Update"

	_, err := r.db.Exec(ctx,
		`UPDATE schedules SET available_seats = $2 WHERE id = $1`,
		s.ID, s.AvailableSeats,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *ScheduleRepo) FindByID(ctx context.Context, id int64) (*domain.Schedule, error) {
	const op = "postgres.ScheduleRepo.FindByID"

	s, err := scanSchedule(r.db.QueryRow(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return s, nil
}

func (r *ScheduleRepo) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Schedule, error) {
	const op = "postgres.ScheduleRepo.FindByIDForUpdate"

	s, err := scanSchedule(r.db.QueryRow(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE id = $1 FOR UPDATE`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return s, nil
}

func (r *ScheduleRepo) ListUpcomingByConcert(ctx context.Context, concertID int64, now time.Time) ([]*domain.Schedule, error) {
	const op = "postgres.ScheduleRepo.ListUpcomingByConcert"

	rows, err := r.db.Query(ctx,
		`SELECT `+scheduleColumns+`
		 FROM schedules
		 WHERE concert_id = $1 AND performance_time >= $2
		 ORDER BY performance_time`,
		concertID, now,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []*domain.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

type SeatRepo struct {
	db DB
}

const seatColumns = `id, schedule_id, seat_number, grade, price, status, reserved_by, reserved_at`

func scanSeat(row pgx.Row) (*domain.Seat, error) {
	var s domain.Seat
	var reservedBy *string
	err := row.Scan(
		&s.ID, &s.ScheduleID, &s.SeatNumber, &s.Grade, &s.Price,
		&s.Status, &reservedBy, &s.ReservedAt,
	)
	if err != nil {
		return nil, err
	}
	if reservedBy != nil {
		s.ReservedBy = *reservedBy
	}
	return &s, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *SeatRepo) CreateBatch(ctx context.Context, seats []*domain.Seat) error {
	const op = "postgres.SeatRepo.CreateBatch"

	batch := &pgx.Batch{}
	for _, s := range seats {
		batch.Queue(
			`INSERT INTO seats(schedule_id, seat_number, grade, price, status)
			 VALUES ($1, $2, $3, $4, $5)`,
			s.ScheduleID, s.SeatNumber, s.Grade, s.Price, s.Status,
		)
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *SeatRepo) Update(ctx context.Context, s *domain.Seat) error {
	const op = "postgres.SeatRepo.Update"

	_, err := r.db.Exec(ctx,
		`UPDATE seats
		 SET status = $2, reserved_by = $3, reserved_at = $4
		 WHERE id = $1`,
		s.ID, s.Status, nullIfEmpty(s.ReservedBy), s.ReservedAt,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *SeatRepo) FindByID(ctx context.Context, id int64) (*domain.Seat, error) {
	const op = "postgres.SeatRepo.FindByID"

	s, err := scanSeat(r.db.QueryRow(ctx,
		`SELECT `+seatColumns+` FROM seats WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return s, nil
}

func (r *SeatRepo) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Seat, error) {
	const op = "postgres.SeatRepo.FindByIDForUpdate"

	s, err := scanSeat(r.db.QueryRow(ctx,
		`SELECT `+seatColumns+` FROM seats WHERE id = $1 FOR UPDATE`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return s, nil
}

func (r *SeatRepo) FindByScheduleAndNumberForUpdate(ctx context.Context, scheduleID int64, seatNumber int) (*domain.Seat, error) {
	const op = "postgres.SeatRepo.FindByScheduleAndNumberForUpdate"

	s, err := scanSeat(r.db.QueryRow(ctx,
		`SELECT `+seatColumns+`
		 FROM seats
		 WHERE schedule_id = $1 AND seat_number = $2
		 FOR UPDATE`,
		scheduleID, seatNumber,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return s, nil
}

func (r *SeatRepo) ListBySchedule(ctx context.Context, scheduleID int64, onlyAvailable bool) ([]*domain.Seat, error) {
	const op = "postgres.SeatRepo.ListBySchedule"

	q := `SELECT ` + seatColumns + ` FROM seats WHERE schedule_id = $1`
	if onlyAvailable {
		q += ` AND status = 'AVAILABLE'`
	}
	q += ` ORDER BY seat_number`

	rows, err := r.db.Query(ctx, q, scheduleID)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []*domain.Seat
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}
