package domain

import (
	"errors"
	"time"
)

type TokenStatus string

const (
	TokenWaiting TokenStatus = "WAITING"
	TokenActive  TokenStatus = "ACTIVE"
	TokenExpired TokenStatus = "EXPIRED"
)

// TokenActiveDuration is how long an activated token stays usable.
const TokenActiveDuration = 5 * time.Minute

var (
	ErrTokenAlreadyActive  = errors.New("token is already active")
	ErrTokenAlreadyExpired = errors.New("token is already expired")
	ErrTokenStillWaiting   = errors.New("waiting token cannot be expired")
)

// QueueToken is an admission credential for the virtual waiting room.
// Position is meaningful only while the token is waiting; activated
// tokens report position 0.
type QueueToken struct {
	ID          int64
	Token       string
	UserID      string
	Position    int
	Status      TokenStatus
	CreatedAt   time.Time
	ActivatedAt *time.Time
	ExpiredAt   *time.Time
}

func NewQueueToken(token, userID string, now time.Time) *QueueToken {
	return &QueueToken{
		Token:     token,
		UserID:    userID,
		Status:    TokenWaiting,
		CreatedAt: now,
	}
}

// Activate moves a waiting token into the active window. Only the
// background sweep calls this; the request path never activates.
func (t *QueueToken) Activate(now time.Time) error {
	if t.Status == TokenActive {
		return ErrTokenAlreadyActive
	}
	if t.Status == TokenExpired {
		return ErrTokenAlreadyExpired
	}

	t.Status = TokenActive
	t.Position = 0
	at := now
	t.ActivatedAt = &at

	return nil
}

// Expire retires an active token. A waiting token must be activated
// first, so WAITING→EXPIRED is rejected.
func (t *QueueToken) Expire(now time.Time) error {
	if t.Status == TokenExpired {
		return ErrTokenAlreadyExpired
	}
	if t.Status == TokenWaiting {
		return ErrTokenStillWaiting
	}

	t.Status = TokenExpired
	at := now
	t.ExpiredAt = &at

	return nil
}

func (t *QueueToken) IsWaiting() bool { return t.Status == TokenWaiting }
func (t *QueueToken) IsActive() bool  { return t.Status == TokenActive }
func (t *QueueToken) IsExpired() bool { return t.Status == TokenExpired }

// RemainingActiveTime reports how much of the active window is left.
func (t *QueueToken) RemainingActiveTime(now time.Time) time.Duration {
	if !t.IsActive() || t.ActivatedAt == nil {
		return 0
	}

	remaining := t.ActivatedAt.Add(TokenActiveDuration).Sub(now)
	if remaining < 0 {
		return 0
	}

	return remaining
}

// ShouldAutoExpire reports whether an active token has outlived its
// window and must be lazily expired on the next read.
func (t *QueueToken) ShouldAutoExpire(now time.Time) bool {
	return t.IsActive() && t.RemainingActiveTime(now) == 0
}
