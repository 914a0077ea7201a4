package billing

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamscout/internal/database"
)

// fakeBalances scripts the gate's storage surface for protocol tests.
type fakeBalances struct {
	balance       int
	balanceErr    error
	deductLanded  bool
	deductBalance int
	deductErr     error
	deductCalls   int
}

func (f *fakeBalances) TokenBalance(ctx context.Context, id int64) (int, error) {
	return f.balance, f.balanceErr
}

func (f *fakeBalances) DeductToken(ctx context.Context, id int64) (bool, int, error) {
	f.deductCalls++
	return f.deductLanded, f.deductBalance, f.deductErr
}

func TestMeteredChargesOnSuccess(t *testing.T) {
	balances := &fakeBalances{balance: 5, deductLanded: true, deductBalance: 4}
	meter := NewMeter(balances)

	result, balance, err := Metered(context.Background(), meter, 1, func(ctx context.Context) (string, error) {
		return "payload", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "payload", result)
	assert.Equal(t, 4, balance)
	assert.Equal(t, 1, balances.deductCalls)
}

func TestMeteredZeroBalanceNeverInvokesOp(t *testing.T) {
	balances := &fakeBalances{balance: 0}
	meter := NewMeter(balances)

	invoked := false
	_, balance, err := Metered(context.Background(), meter, 1, func(ctx context.Context) (string, error) {
		invoked = true
		return "payload", nil
	})
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.False(t, invoked)
	assert.Equal(t, 0, balance)
	assert.Equal(t, 0, balances.deductCalls)
}

func TestMeteredOpFailureSkipsCharge(t *testing.T) {
	balances := &fakeBalances{balance: 3}
	meter := NewMeter(balances)

	opErr := errors.New("upstream failed")
	_, _, err := Metered(context.Background(), meter, 1, func(ctx context.Context) (string, error) {
		return "", opErr
	})
	require.ErrorIs(t, err, opErr)
	assert.Equal(t, 0, balances.deductCalls)
}

func TestMeteredDiscardsResultWhenDecrementLoses(t *testing.T) {
	// Balance passes the check but the conditional decrement does not land:
	// another request spent the last token in between.
	balances := &fakeBalances{balance: 1, deductLanded: false, deductBalance: 0}
	meter := NewMeter(balances)

	result, balance, err := Metered(context.Background(), meter, 1, func(ctx context.Context) (string, error) {
		return "wasted work", nil
	})
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Empty(t, result, "loser's op result must be discarded")
	assert.Equal(t, 0, balance)
}

func TestMeteredPropagatesBalanceReadFailure(t *testing.T) {
	balances := &fakeBalances{balanceErr: database.ErrUserNotFound}
	meter := NewMeter(balances)

	_, _, err := Metered(context.Background(), meter, 99, func(ctx context.Context) (string, error) {
		return "", nil
	})
	require.ErrorIs(t, err, database.ErrUserNotFound)
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewDB(database.Config{DatabasePath: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMeteredConcurrentChargesNeverExceedBalance(t *testing.T) {
	db := newTestDB(t)
	repo := database.NewUserRepository(db.Connection())
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "meter@example.com", "hash", "Meter")
	require.NoError(t, err)

	// Schema grants 20 tokens; drain to a small balance to force contention.
	const startBalance = 3
	for i := 0; i < user.Tokens-startBalance; i++ {
		landed, _, err := repo.DeductToken(ctx, user.ID)
		require.NoError(t, err)
		require.True(t, landed)
	}

	meter := NewMeter(repo)

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		denials   int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := Metered(ctx, meter, user.ID, func(ctx context.Context) (string, error) {
				return "ok", nil
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrInsufficientBalance):
				denials++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, successes, startBalance, "charges must never exceed the starting balance")
	assert.Equal(t, workers, successes+denials)

	final, err := repo.TokenBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, final, 0, "balance must never go negative")
	assert.Equal(t, startBalance-successes, final)
}

func TestMeteredSequentialDrainStopsAtZero(t *testing.T) {
	db := newTestDB(t)
	repo := database.NewUserRepository(db.Connection())
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "drain@example.com", "hash", "Drain")
	require.NoError(t, err)

	meter := NewMeter(repo)
	for i := 0; i < user.Tokens; i++ {
		_, balance, err := Metered(ctx, meter, user.ID, func(ctx context.Context) (int, error) {
			return i, nil
		})
		require.NoError(t, err)
		assert.Equal(t, user.Tokens-i-1, balance)
	}

	_, balance, err := Metered(ctx, meter, user.ID, func(ctx context.Context) (int, error) {
		t.Fatal("op must not run at zero balance")
		return 0, nil
	})
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, 0, balance)
}
