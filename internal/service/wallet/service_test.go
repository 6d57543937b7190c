package wallet

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/showgate/internal/domain"
	"github.com/kirinyoku/showgate/internal/repository"
	"github.com/kirinyoku/showgate/internal/repository/memory"
)

func TestChargeCreatesWallet(t *testing.T) {
	ctx := context.Background()
	svc := New(memory.NewStore(), Config{})

	balance, err := svc.Charge(ctx, "user-1", 50000, "top-up")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), balance)

	info, err := svc.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), info.Balance)
	require.NotNil(t, info.LastCharge)
	assert.Equal(t, int64(50000), info.LastCharge.Amount)
	assert.Equal(t, domain.HistoryCharge, info.LastCharge.Type)
}

func TestChargeRejectsInvalidAmounts(t *testing.T) {
	ctx := context.Background()
	svc := New(memory.NewStore(), Config{})

	_, err := svc.Charge(ctx, "user-1", 0, "")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Charge(ctx, "user-1", domain.MaxChargeAmount+1, "")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	// The failed attempts must not have created a wallet row.
	info, err := svc.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Balance)
	assert.Nil(t, info.LastCharge)
}

func TestUse(t *testing.T) {
	ctx := context.Background()
	svc := New(memory.NewStore(), Config{})

	_, err := svc.Charge(ctx, "user-1", 100000, "")
	require.NoError(t, err)

	balance, err := svc.Use(ctx, "user-1", 30000, "merch")
	require.NoError(t, err)
	assert.Equal(t, int64(70000), balance)

	_, err = svc.Use(ctx, "user-1", 70001, "")
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	_, err = svc.Use(ctx, "user-2", 100, "")
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestBalanceMissingWalletReadsZero(t *testing.T) {
	ctx := context.Background()
	svc := New(memory.NewStore(), Config{})

	info, err := svc.Balance(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, "nobody", info.UserID)
	assert.Equal(t, int64(0), info.Balance)
}

func TestConcurrentChargesOptimistic(t *testing.T) {
	ctx := context.Background()
	svc := New(memory.NewStore(), Config{
		MaxRetries: 100,
		RetryDelay: time.Millisecond,
	})

	const workers = 10
	const amount = int64(1000)

	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Charge(ctx, "user-1", amount, "")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	info, err := svc.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, amount*workers, info.Balance)
}

func TestConcurrentChargesPessimistic(t *testing.T) {
	ctx := context.Background()
	svc := New(memory.NewStore(), Config{LockMode: LockPessimistic})

	const workers = 10
	const amount = int64(1000)

	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Charge(ctx, "user-1", amount, "")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	info, err := svc.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, amount*workers, info.Balance)
}

func TestOptimisticContentionExhaustsRetries(t *testing.T) {
	ctx := context.Background()

	inner := memory.NewStore()
	require.NoError(t, inner.Wallets().Create(ctx, domain.NewAmount("user-1", 1000)))

	svc := New(&conflictingStore{Store: inner}, Config{
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	})

	_, err := svc.Charge(ctx, "user-1", 1000, "")
	assert.ErrorIs(t, err, ErrContention)
}

func TestFirstChargeRollsBackWithLedger(t *testing.T) {
	ctx := context.Background()

	inner := memory.NewStore()
	svc := New(&ledgerFailStore{Store: inner}, Config{})

	_, err := svc.Charge(ctx, "user-1", 1000, "")
	require.Error(t, err)

	// The wallet row rolled back together with the failed ledger write.
	_, err = inner.Wallets().FindByUser(ctx, "user-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUseInTxRollsBackWithCaller(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := New(store, Config{})

	_, err := svc.Charge(ctx, "user-1", 100000, "")
	require.NoError(t, err)

	boom := assert.AnError
	err = store.RunTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := svc.UseInTx(ctx, tx, "user-1", 40000, "payment"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	info, err := svc.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100000), info.Balance)
}

func TestRefundInTx(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := New(store, Config{})

	// Refunds above the single top-up cap are allowed; only the overall
	// balance limit applies.
	err := store.RunTx(ctx, func(ctx context.Context, tx repository.Store) error {
		return svc.RefundInTx(ctx, tx, "user-1", domain.MaxChargeAmount+1, "refund")
	})
	require.NoError(t, err)

	info, err := svc.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.MaxChargeAmount+1, info.Balance)

	err = store.RunTx(ctx, func(ctx context.Context, tx repository.Store) error {
		return svc.RefundInTx(ctx, tx, "user-1", domain.MaxBalance, "refund")
	})
	assert.ErrorIs(t, err, domain.ErrBalanceLimit)
}

// conflictingStore fails every wallet Update with a version conflict.
type conflictingStore struct {
	repository.Store
}

func (s *conflictingStore) RunTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	return s.Store.RunTx(ctx, func(ctx context.Context, tx repository.Store) error {
		return fn(ctx, &conflictingStore{Store: tx})
	})
}

func (s *conflictingStore) Wallets() repository.WalletRepository {
	return &conflictingWallets{WalletRepository: s.Store.Wallets()}
}

type conflictingWallets struct {
	repository.WalletRepository
}

func (r *conflictingWallets) Update(ctx context.Context, a *domain.Amount) error {
	return repository.ErrVersionConflict
}

// ledgerFailStore fails every history append inside a unit of work.
type ledgerFailStore struct {
	repository.Store
}

func (s *ledgerFailStore) RunTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	return s.Store.RunTx(ctx, func(ctx context.Context, tx repository.Store) error {
		return fn(ctx, &ledgerFailStore{Store: tx})
	})
}

func (s *ledgerFailStore) Wallets() repository.WalletRepository {
	return &ledgerFailWallets{WalletRepository: s.Store.Wallets()}
}

type ledgerFailWallets struct {
	repository.WalletRepository
}

func (r *ledgerFailWallets) AppendHistory(ctx context.Context, h *domain.AmountHistory) error {
	return assert.AnError
}
