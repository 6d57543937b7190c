package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/kirinyoku/showgate/internal/domain"
	redisrepo "github.com/kirinyoku/showgate/internal/repository/redis"
	"github.com/kirinyoku/showgate/internal/service"
	"github.com/kirinyoku/showgate/internal/service/admin"
	"github.com/kirinyoku/showgate/internal/service/payment"
	"github.com/kirinyoku/showgate/internal/service/query"
	"github.com/kirinyoku/showgate/internal/service/queue"
	"github.com/kirinyoku/showgate/internal/service/reservation"
	"github.com/kirinyoku/showgate/internal/service/wallet"
)

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Waiting room
	r.POST("/queue/tokens", handleIssueToken(svcs))
	r.GET("/queue/tokens/:token", handleTokenStatus(svcs))
	r.DELETE("/queue/tokens/:token", handleRetireToken(svcs))

	// Browse
	r.GET("/concerts", handleListConcerts(svcs))
	r.GET("/concerts/:id", handleGetConcert(svcs))
	r.GET("/concerts/:id/schedules", handleListSchedules(svcs))
	r.GET("/concerts/:id/dates", handleListDates(svcs))
	r.GET("/schedules/:id/seats", handleListSeats(svcs))

	// Admission-gated flow
	gated := r.Group("/", QueueTokenAuth(svcs.Queue))
	{
		gated.POST("/schedules/:id/reservations", handleReserveSeat(svcs))
		gated.POST("/payments", handleProcessPayment(svcs, idem))
	}

	// Account
	r.GET("/reservations/:id", handleGetReservation(svcs))
	r.GET("/payments/:id", handleGetPayment(svcs))
	r.GET("/payments/:id/receipt", handleGetReceipt(svcs))
	r.POST("/payments/:id/cancel", handleCancelPayment(svcs))
	r.POST("/wallet/charge", handleCharge(svcs))
	r.GET("/wallet/balance", handleBalance(svcs))

	// Admin-API
	// TODO: add admin middleware
	adminGrp := r.Group("/admin")
	{
		adminGrp.POST("/concerts", handleCreateConcert(svcs))
		adminGrp.POST("/concerts/:id/schedules", handleCreateSchedule(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Issue queue token (idempotent per user)
// @Param    req body  IssueTokenRequest true "payload"
// @Success  201 {object} TokenResponse
// @Failure  400 {object} ErrorResponse
// @Router   /queue/tokens [post]
func handleIssueToken(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req IssueTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		info, err := svcs.Queue.IssueToken(c.Request.Context(), req.UserID)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, toTokenResponse(info))
	}
}

// @Summary  Queue token status
// @Param    token  path  string  true  "queue token"
// @Success  200 {object} TokenResponse
// @Failure  404 {object} ErrorResponse
// @Router   /queue/tokens/{token} [get]
func handleTokenStatus(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := svcs.Queue.Status(c.Request.Context(), c.Param("token"))
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, toTokenResponse(info))
	}
}

// @Summary  Retire queue token
// @Param    token  path  string  true  "queue token"
// @Success  204
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "token never activated / already expired"
// @Router   /queue/tokens/{token} [delete]
func handleRetireToken(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svcs.Queue.ExpireToken(c.Request.Context(), c.Param("token")); err != nil {
			respondErr(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// @Summary  List concerts
// @Success  200 {array} domain.Concert
// @Router   /concerts [get]
func handleListConcerts(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		concerts, err := svcs.Query.ListConcerts(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 60s
		writeJSONWithCache(c, http.StatusOK, concerts, "public, max-age=60", true)
	}
}

// @Summary  Get concert
// @Param    id  path  int  true  "Concert ID"
// @Success  200 {object} domain.Concert
// @Failure  404 {object} ErrorResponse
// @Router   /concerts/{id} [get]
func handleGetConcert(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		concertID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		concert, err := svcs.Query.GetConcert(c.Request.Context(), concertID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, concert, "public, max-age=60", true)
	}
}

// @Summary  List bookable schedules
// @Param    id  path  int  true  "Concert ID"
// @Success  200 {array} domain.Schedule
// @Router   /concerts/{id}/schedules [get]
func handleListSchedules(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		concertID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		schedules, err := svcs.Query.ListAvailableSchedules(c.Request.Context(), concertID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, schedules, "public, max-age=30", true)
	}
}

// @Summary  List bookable dates
// @Param    id  path  int  true  "Concert ID"
// @Success  200 {array} string
// @Router   /concerts/{id}/dates [get]
func handleListDates(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		concertID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		dates, err := svcs.Query.ListAvailableDates(c.Request.Context(), concertID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, dates, "public, max-age=30", true)
	}
}

// @Summary  List schedule seats
// @Param    id    path   int     true  "Schedule ID"
// @Param    only  query  string  false "available"
// @Success  200 {array} domain.Seat
// @Router   /schedules/{id}/seats [get]
func handleListSeats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheduleID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		onlyAvailable := c.Query("only") == "available" ||
			c.Query("only_available") == "true"

		seats, err := svcs.Query.ListSeats(c.Request.Context(), scheduleID, onlyAvailable)
		if err != nil {
			respondErr(c, err)
			return
		}
		// seat maps go stale fast, keep the cache window short
		writeJSONWithCache(c, http.StatusOK, seats, "public, max-age=5", true)
	}
}

// @Summary  Reserve a seat (requires active queue token)
// @Param    id  path  int  true  "Schedule ID"
// @Param    req body  ReserveSeatRequest true "payload"
// @Success  201 {object} ReservationResponse
// @Failure  401 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "seat taken / duplicate reservation"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /schedules/{id}/reservations [post]
func handleReserveSeat(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheduleID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req ReserveSeatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		userID := c.GetString(ctxUserID)
		rlKey := "ip:" + c.ClientIP()

		r, err := svcs.Reservation.ReserveSeat(
			c.Request.Context(),
			userID,
			scheduleID,
			req.SeatNumber,
			rlKey,
		)
		if err != nil {
			if errors.Is(err, reservation.ErrRateLimited) {
				c.Header("Retry-After", "60")
				c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limited"})
				return
			}
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, toReservationResponse(r))
	}
}

// @Summary  Get reservation
// @Param    id  path  int  true  "Reservation ID"
// @Success  200 {object} ReservationResponse
// @Failure  404 {object} ErrorResponse
// @Router   /reservations/{id} [get]
func handleGetReservation(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}
		reservationID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		r, err := svcs.Reservation.Get(c.Request.Context(), userID, reservationID)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, toReservationResponse(r))
	}
}

// @Summary  Pay for a reservation (idempotent, requires active queue token)
// @Param    req body  ProcessPaymentRequest true "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} PaymentResponse
// @Failure  402 {object} ErrorResponse "insufficient balance"
// @Failure  409 {object} ErrorResponse "hold expired / duplicate payment"
// @Router   /payments [post]
func handleProcessPayment(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProcessPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		userID := c.GetString(ctxUserID)
		queueToken := c.GetString(ctxQueueToken)

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemPayment(req.ReservationID, idemKey)

			if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
				return
			}

			locked, err := idem.AcquireLock(c.Request.Context(), idemStorageKey, 60*time.Second)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
				return
			}
		}

		rc, err := svcs.Payment.Process(c.Request.Context(), userID, req.ReservationID, queueToken)
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			respondErr(c, err)
			return
		}

		perf := rc.Schedule.PerformanceTime
		resp := PaymentResponse{
			PaymentID:     rc.Payment.ID,
			ReservationID: rc.Payment.ReservationID,
			Amount:        rc.Payment.Amount,
			Status:        string(rc.Payment.Status),
			ConcertTitle:  rc.ConcertTitle,
			Performance:   &perf,
			SeatNumber:    rc.Seat.SeatNumber,
			SeatGrade:     rc.Seat.Grade,
		}

		if idemStorageKey != "" && idem != nil {
			b, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary  Get payment
// @Param    id  path  int  true  "Payment ID"
// @Success  200 {object} PaymentResponse
// @Failure  404 {object} ErrorResponse
// @Router   /payments/{id} [get]
func handleGetPayment(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}
		paymentID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		p, refundable, err := svcs.Payment.Get(c.Request.Context(), userID, paymentID)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, PaymentResponse{
			PaymentID:     p.ID,
			ReservationID: p.ReservationID,
			Amount:        p.Amount,
			Status:        string(p.Status),
			Refundable:    refundable,
		})
	}
}

// @Summary  Get purchase receipt
// @Param    id  path  int  true  "Payment ID"
// @Success  200 {object} ReceiptResponse
// @Failure  404 {object} ErrorResponse
// @Router   /payments/{id}/receipt [get]
func handleGetReceipt(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}
		paymentID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		rc, err := svcs.Payment.BuildReceipt(c.Request.Context(), userID, paymentID)
		if err != nil {
			respondErr(c, err)
			return
		}

		resp := ReceiptResponse{
			PaymentID:    rc.Payment.ID,
			Amount:       rc.Payment.Amount,
			Status:       string(rc.Payment.Status),
			ConcertTitle: rc.ConcertTitle,
			Performance:  rc.Schedule.PerformanceTime,
			SeatNumber:   rc.Seat.SeatNumber,
			SeatGrade:    rc.Seat.Grade,
		}
		if rc.Payment.PaidAt != nil {
			resp.PaidAt = *rc.Payment.PaidAt
		}

		c.JSON(http.StatusOK, resp)
	}
}

// @Summary  Cancel payment and refund
// @Param    id  path  int  true  "Payment ID"
// @Success  200 {object} PaymentResponse
// @Failure  409 {object} ErrorResponse "outside refund window"
// @Router   /payments/{id}/cancel [post]
func handleCancelPayment(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}
		paymentID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		p, err := svcs.Payment.Cancel(c.Request.Context(), userID, paymentID)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, PaymentResponse{
			PaymentID:     p.ID,
			ReservationID: p.ReservationID,
			Amount:        p.Amount,
			Status:        string(p.Status),
		})
	}
}

// @Summary  Charge wallet
// @Param    req body  ChargeRequest true "payload"
// @Success  200 {object} BalanceResponse
// @Failure  400 {object} ErrorResponse "invalid amount / balance limit"
// @Router   /wallet/charge [post]
func handleCharge(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}
		var req ChargeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		balance, err := svcs.Wallet.Charge(c.Request.Context(), userID, req.Amount, req.Description)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, BalanceResponse{UserID: userID, Balance: balance})
	}
}

// @Summary  Wallet balance
// @Success  200 {object} BalanceResponse
// @Router   /wallet/balance [get]
func handleBalance(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}

		info, err := svcs.Wallet.Balance(c.Request.Context(), userID)
		if err != nil {
			respondErr(c, err)
			return
		}

		resp := BalanceResponse{UserID: info.UserID, Balance: info.Balance}
		if info.LastCharge != nil {
			at := info.LastCharge.CreatedAt
			resp.LastChargeAt = &at
			resp.LastCharge = info.LastCharge.Amount
		}

		c.JSON(http.StatusOK, resp)
	}
}

// @Summary  Create concert
// @Param    req body  CreateConcertRequest true "payload"
// @Success  201 {object} CreateConcertResponse
// @Router   /admin/concerts [post]
func handleCreateConcert(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateConcertRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		id, err := svcs.Admin.CreateConcert(c.Request.Context(), req.Title, req.Venue, req.Description)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, CreateConcertResponse{ConcertID: id})
	}
}

// @Summary  Create schedule with full seat grid
// @Param    id  path  int  true  "Concert ID"
// @Param    req body  CreateScheduleRequest true "payload"
// @Success  201 {object} CreateScheduleResponse
// @Router   /admin/concerts/{id}/schedules [post]
func handleCreateSchedule(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		concertID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req CreateScheduleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		at, err := parseRFC3339(req.PerformanceTime)
		if err != nil {
			badRequest(c, "invalid performance_time (RFC3339)")
			return
		}

		sc, err := svcs.Admin.CreateSchedule(c.Request.Context(), concertID, at)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, CreateScheduleResponse{
			ScheduleID:     sc.ID,
			TotalSeats:     sc.TotalSeats,
			AvailableSeats: sc.AvailableSeats,
		})
	}
}

// --- Helpers ---

func toTokenResponse(info *queue.TokenInfo) TokenResponse {
	return TokenResponse{
		Token:            info.Token,
		Status:           string(info.Status),
		Position:         info.Position,
		EstimatedWaitSec: int64(info.EstimatedWait / time.Second),
		RemainingSec:     int64(info.RemainingTTL / time.Second),
	}
}

func toReservationResponse(r *domain.Reservation) ReservationResponse {
	resp := ReservationResponse{
		ReservationID: r.ID,
		ScheduleID:    r.ScheduleID,
		SeatID:        r.SeatID,
		Status:        string(r.Status),
	}
	if r.Status == domain.ReservationTemporary {
		resp.ExpiresAt = r.ExpiresAt()
	}
	return resp
}

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	s := c.Param(name)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func requireUserID(c *gin.Context) (string, bool) {
	userID := strings.TrimSpace(c.GetHeader(headerUserID))
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing " + headerUserID})
		return "", false
	}
	return userID, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var seatErr domain.SeatNumberError
	if errors.As(err, &seatErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: seatErr.Error()})
		return
	}

	switch {
	// queue service
	case errors.Is(err, queue.ErrTokenNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "queue token not found"})
	case errors.Is(err, queue.ErrTokenNotActive):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "queue token is still waiting"})
	case errors.Is(err, queue.ErrTokenExpired):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "queue token is expired"})
	case errors.Is(err, domain.ErrTokenStillWaiting):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "queue token was never activated"})
	case errors.Is(err, domain.ErrTokenAlreadyExpired):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "queue token is already expired"})
	// reservation service
	case errors.Is(err, reservation.ErrScheduleNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "schedule not found"})
	case errors.Is(err, reservation.ErrSeatNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "seat not found"})
	case errors.Is(err, reservation.ErrReservationNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "reservation not found"})
	case errors.Is(err, reservation.ErrSeatNotAvailable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "seat is not available"})
	case errors.Is(err, reservation.ErrAlreadyReserved):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "already holding a reservation for this schedule"})
	case errors.Is(err, reservation.ErrScheduleClosed):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "schedule is not open for reservation"})
	case errors.Is(err, domain.ErrSoldOut):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "schedule is sold out"})
	// payment service
	case errors.Is(err, payment.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "payment not found"})
	case errors.Is(err, payment.ErrReservationNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "reservation not found"})
	case errors.Is(err, payment.ErrReservationNotPayable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "reservation cannot be paid for"})
	case errors.Is(err, payment.ErrHoldExpired):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "seat hold has expired"})
	case errors.Is(err, payment.ErrDuplicatePayment):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "payment already exists for this reservation"})
	case errors.Is(err, payment.ErrNotRefundable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "payment is outside the refund window"})
	// wallet service / domain
	case errors.Is(err, domain.ErrInsufficientBalance):
		c.JSON(http.StatusPaymentRequired, ErrorResponse{Error: "insufficient balance"})
	case errors.Is(err, domain.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid amount"})
	case errors.Is(err, domain.ErrBalanceLimit):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "balance limit exceeded"})
	case errors.Is(err, wallet.ErrContention):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "wallet is busy, retry"})
	// query service
	case errors.Is(err, query.ErrConcertNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "concert not found"})
	case errors.Is(err, query.ErrScheduleNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "schedule not found"})
	// admin service
	case errors.Is(err, admin.ErrConcertNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "concert not found"})
	case errors.Is(err, admin.ErrScheduleExists):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "schedule already exists"})
	case errors.Is(err, admin.ErrInvalidSchedule):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid schedule"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
