package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kirinyoku/showgate/internal/domain"
)

type QueueTokenRepo struct {
	db DB
}

const queueTokenColumns = `id, token, user_id, position, status, created_at, activated_at, expired_at`

func scanQueueToken(row pgx.Row) (*domain.QueueToken, error) {
	var t domain.QueueToken
	err := row.Scan(
		&t.ID, &t.Token, &t.UserID, &t.Position, &t.Status,
		&t.CreatedAt, &t.ActivatedAt, &t.ExpiredAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *QueueTokenRepo) Create(ctx context.Context, t *domain.QueueToken) error {
	const op = "postgres.QueueTokenRepo.Create"

	err := r.db.QueryRow(ctx,
		`INSERT INTO queue_tokens(token, user_id, position, status, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		t.Token, t.UserID, t.Position, t.Status, t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *QueueTokenRepo) Update(ctx context.Context, t *domain.QueueToken) error {
	const op = "postgres.QueueTokenRepo.Update"

	_, err := r.db.Exec(ctx,
		`UPDATE queue_tokens
		 SET position = $2, status = $3, activated_at = $4, expired_at = $5
		 WHERE id = $1`,
		t.ID, t.Position, t.Status, t.ActivatedAt, t.ExpiredAt,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *QueueTokenRepo) FindByToken(ctx context.Context, token string) (*domain.QueueToken, error) {
	const op = "postgres.QueueTokenRepo.FindByToken"

	t, err := scanQueueToken(r.db.QueryRow(ctx,
		`SELECT `+queueTokenColumns+` FROM queue_tokens WHERE token = $1`,
		token,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return t, nil
}

func (r *QueueTokenRepo) FindLiveByUser(ctx context.Context, userID string) (*domain.QueueToken, error) {
	const op = "postgres.QueueTokenRepo.FindLiveByUser"

	t, err := scanQueueToken(r.db.QueryRow(ctx,
		`SELECT `+queueTokenColumns+`
		 FROM queue_tokens
		 WHERE user_id = $1 AND status IN ('WAITING', 'ACTIVE')
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return t, nil
}

func (r *QueueTokenRepo) CountWaitingBefore(ctx context.Context, createdAt time.Time, id int64) (int, error) {
	const op = "postgres.QueueTokenRepo.CountWaitingBefore"

	var n int
	err := r.db.QueryRow(ctx,
		`SELECT count(*)
		 FROM queue_tokens
		 WHERE status = 'WAITING'
		   AND (created_at < $1 OR (created_at = $1 AND id < $2))`,
		createdAt, id,
	).Scan(&n)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return n, nil
}

func (r *QueueTokenRepo) CountActive(ctx context.Context) (int, error) {
	const op = "postgres.QueueTokenRepo.CountActive"

	var n int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM queue_tokens WHERE status = 'ACTIVE'`,
	).Scan(&n)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return n, nil
}

func (r *QueueTokenRepo) FindActiveExpiredBefore(ctx context.Context, cutoff time.Time) ([]*domain.QueueToken, error) {
	const op = "postgres.QueueTokenRepo.FindActiveExpiredBefore"

	rows, err := r.db.Query(ctx,
		`SELECT `+queueTokenColumns+`
		 FROM queue_tokens
		 WHERE status = 'ACTIVE' AND activated_at < $1
		 FOR UPDATE`,
		cutoff,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	return collectQueueTokens(op, rows)
}

func (r *QueueTokenRepo) FindOldestWaiting(ctx context.Context, limit int) ([]*domain.QueueToken, error) {
	const op = "postgres.QueueTokenRepo.FindOldestWaiting"

	rows, err := r.db.Query(ctx,
		`SELECT `+queueTokenColumns+`
		 FROM queue_tokens
		 WHERE status = 'WAITING'
		 ORDER BY created_at, id
		 LIMIT $1
		 FOR UPDATE SKIP LOCKED`,
		limit,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	return collectQueueTokens(op, rows)
}

func collectQueueTokens(op string, rows pgx.Rows) ([]*domain.QueueToken, error) {
	var out []*domain.QueueToken
	for rows.Next() {
		t, err := scanQueueToken(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}
