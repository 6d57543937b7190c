package service

import (
	redisx "github.com/kirinyoku/showgate/internal/redis"
	"github.com/kirinyoku/showgate/internal/repository"
	redisrepo "github.com/kirinyoku/showgate/internal/repository/redis"
	"github.com/kirinyoku/showgate/internal/service/admin"
	"github.com/kirinyoku/showgate/internal/service/payment"
	"github.com/kirinyoku/showgate/internal/service/query"
	"github.com/kirinyoku/showgate/internal/service/queue"
	"github.com/kirinyoku/showgate/internal/service/reservation"
	"github.com/kirinyoku/showgate/internal/service/wallet"
)

type Services struct {
	Queue       *queue.Service
	Wallet      *wallet.Service
	Reservation *reservation.Service
	Payment     *payment.Service
	Query       *query.Service
	Admin       *admin.Service
}

type Config struct {
	Queue  queue.Config
	Wallet wallet.Config
	Query  query.Config
}

func NewServices(
	store repository.Store,
	cache *redisrepo.Cache,
	pubsub *redisx.SchedulesPubSub,
	limiter *redisrepo.SlidingWindowLimiter,
	cfg Config,
) *Services {
	queueSvc := queue.New(store, cfg.Queue)
	walletSvc := wallet.New(store, cfg.Wallet)

	// A nil *SchedulesPubSub or *SlidingWindowLimiter must stay a nil
	// interface, or the services' nil checks stop working.
	var resPub reservation.Publisher
	var payPub payment.Publisher
	var admPub admin.Publisher
	if pubsub != nil {
		resPub = pubsub
		payPub = pubsub
		admPub = pubsub
	}
	var lim reservation.Limiter
	if limiter != nil {
		lim = limiter
	}

	return &Services{
		Queue:       queueSvc,
		Wallet:      walletSvc,
		Reservation: reservation.New(store, cache, resPub, lim),
		Payment:     payment.New(store, walletSvc, queueSvc, cache, payPub),
		Query:       query.New(store, cache, cfg.Query),
		Admin:       admin.New(store, cache, admPub),
	}
}
