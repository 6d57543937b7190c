// Package memory implements repository.Store with in-process state.
// It backs local development and the concurrency test-suite; the
// transactional unit is a store-wide critical section with
// copy-on-write state, so a failed unit leaves nothing behind.
package memory

import (
	"context"
	"sync"

	"github.com/kirinyoku/showgate/internal/domain"
	"github.com/kirinyoku/showgate/internal/repository"
)

type seatKey struct {
	scheduleID int64
	seatNumber int
}

type state struct {
	tokens        map[int64]*domain.QueueToken
	tokenIDs      map[string]int64
	concerts      map[int64]*domain.Concert
	schedules     map[int64]*domain.Schedule
	seats         map[int64]*domain.Seat
	seatIDs       map[seatKey]int64
	reservations  map[int64]*domain.Reservation
	payments      map[int64]*domain.Payment
	wallets       map[string]*domain.Amount
	histories     []*domain.AmountHistory
	nextToken     int64
	nextConcert   int64
	nextSchedule  int64
	nextSeat      int64
	nextRes       int64
	nextPayment   int64
	nextWallet    int64
	nextHistory   int64
}

func newState() *state {
	return &state{
		tokens:       make(map[int64]*domain.QueueToken),
		tokenIDs:     make(map[string]int64),
		concerts:     make(map[int64]*domain.Concert),
		schedules:    make(map[int64]*domain.Schedule),
		seats:        make(map[int64]*domain.Seat),
		seatIDs:      make(map[seatKey]int64),
		reservations: make(map[int64]*domain.Reservation),
		payments:     make(map[int64]*domain.Payment),
		wallets:      make(map[string]*domain.Amount),
	}
}

// clone copies the state maps; entity structs are copied on write by
// the repositories, so sharing the current structs here is safe.
func (s *state) clone() *state {
	cp := *s

	cp.tokens = make(map[int64]*domain.QueueToken, len(s.tokens))
	for k, v := range s.tokens {
		cp.tokens[k] = v
	}
	cp.tokenIDs = make(map[string]int64, len(s.tokenIDs))
	for k, v := range s.tokenIDs {
		cp.tokenIDs[k] = v
	}
	cp.concerts = make(map[int64]*domain.Concert, len(s.concerts))
	for k, v := range s.concerts {
		cp.concerts[k] = v
	}
	cp.schedules = make(map[int64]*domain.Schedule, len(s.schedules))
	for k, v := range s.schedules {
		cp.schedules[k] = v
	}
	cp.seats = make(map[int64]*domain.Seat, len(s.seats))
	for k, v := range s.seats {
		cp.seats[k] = v
	}
	cp.seatIDs = make(map[seatKey]int64, len(s.seatIDs))
	for k, v := range s.seatIDs {
		cp.seatIDs[k] = v
	}
	cp.reservations = make(map[int64]*domain.Reservation, len(s.reservations))
	for k, v := range s.reservations {
		cp.reservations[k] = v
	}
	cp.payments = make(map[int64]*domain.Payment, len(s.payments))
	for k, v := range s.payments {
		cp.payments[k] = v
	}
	cp.wallets = make(map[string]*domain.Amount, len(s.wallets))
	for k, v := range s.wallets {
		cp.wallets[k] = v
	}
	cp.histories = append([]*domain.AmountHistory(nil), s.histories...)

	return &cp
}

// Store is the in-memory repository.Store.
type Store struct {
	mu   *sync.RWMutex
	st   *state
	inTx bool
}

func NewStore() *Store {
	return &Store{
		mu: &sync.RWMutex{},
		st: newState(),
	}
}

// RunTx serializes units of work behind the store mutex and applies
// the mutated state only when fn succeeds.
func (s *Store) RunTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	tx := &Store{mu: s.mu, st: work, inTx: true}

	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.st = work
	return nil
}

// read runs fn under a read lock unless already inside a transaction.
func (s *Store) read(fn func(st *state) error) error {
	if s.inTx {
		return fn(s.st)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

// write runs fn under the write lock unless already inside a
// transaction. Single-row writes outside RunTx use it.
func (s *Store) write(fn func(st *state) error) error {
	if s.inTx {
		return fn(s.st)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func (s *Store) QueueTokens() repository.QueueTokenRepository   { return &queueRepo{s: s} }
func (s *Store) Concerts() repository.ConcertRepository         { return &concertRepo{s: s} }
func (s *Store) Schedules() repository.ScheduleRepository       { return &scheduleRepo{s: s} }
func (s *Store) Seats() repository.SeatRepository               { return &seatRepo{s: s} }
func (s *Store) Reservations() repository.ReservationRepository { return &reservationRepo{s: s} }
func (s *Store) Payments() repository.PaymentRepository         { return &paymentRepo{s: s} }
func (s *Store) Wallets() repository.WalletRepository           { return &walletRepo{s: s} }
