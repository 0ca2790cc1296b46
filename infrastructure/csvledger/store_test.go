package csvledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"dotabot/events"
	"dotabot/models"
	"dotabot/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePublisher) Publish(e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func addPoints(delta int64) service.LedgerMutator {
	return func(r *models.LedgerRecord) error {
		r.ApplyDelta(delta)
		return nil
	}
}

func TestStore_UpdatePersistsAndReloads(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache", "currency.csv")

	publisher := &capturePublisher{}
	store, err := Open(path, publisher)
	require.NoError(t, err)

	day := models.Date{Year: 2024, Month: time.June, Day: 3}
	_, err = store.Update(ctx, 1, 10, models.TransactionTypeDailyClaim, func(r *models.LedgerRecord) error {
		return r.ClaimDaily(day, 25, true)
	})
	require.NoError(t, err)
	_, err = store.Update(ctx, 1, 11, models.TransactionTypeTriviaLoss, addPoints(-5))
	require.NoError(t, err)

	require.Len(t, publisher.events, 2)
	change := publisher.events[1].(events.BalanceChangeEvent)
	assert.Equal(t, int64(-5), change.ChangeAmount)
	assert.Equal(t, models.TransactionTypeTriviaLoss, change.TransactionType)

	reloaded, err := Open(path, nil)
	require.NoError(t, err)
	record, err := reloaded.GetOrCreate(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(25), record.Balance)
	assert.Equal(t, 1, record.Streak)
	assert.Equal(t, day, record.LastClaimDate)

	other, err := reloaded.GetOrCreate(ctx, 1, 11)
	require.NoError(t, err)
	assert.Equal(t, int64(-5), other.Balance)
}

func TestStore_GetOrCreateDefaults(t *testing.T) {
	t.Parallel()
	store, err := Open(filepath.Join(t.TempDir(), "currency.csv"), nil)
	require.NoError(t, err)

	record, err := store.GetOrCreate(context.Background(), 5, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(0), record.Balance)
	assert.Equal(t, 0, record.Streak)
	assert.True(t, record.LastClaimDate.IsZero())

	_, err = os.Stat(store.Path())
	assert.NoError(t, err, "first read creates the row on disk")
}

func TestStore_MutatorErrorLeavesRecord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, err := Open(filepath.Join(t.TempDir(), "currency.csv"), nil)
	require.NoError(t, err)

	_, err = store.Update(ctx, 1, 10, models.TransactionTypeTriviaWin, addPoints(5))
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = store.Update(ctx, 1, 10, models.TransactionTypeTriviaWin, func(r *models.LedgerRecord) error {
		r.ApplyDelta(100)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	record, err := store.GetOrCreate(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(5), record.Balance)
}

func TestStore_WriteFailureKeepsMemory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "currency.csv")
	store, err := Open(path, nil)
	require.NoError(t, err)

	_, err = store.Update(ctx, 1, 10, models.TransactionTypeTriviaWin, addPoints(5))
	require.NoError(t, err)

	// a non-empty directory in place of the file makes the rename fail
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.MkdirAll(filepath.Join(path, "blocker"), 0o755))

	_, err = store.Update(ctx, 1, 10, models.TransactionTypeTriviaWin, addPoints(5))
	var writeErr *service.LedgerWriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, int64(10), writeErr.UserID)

	top, err := store.TopByBalance(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, int64(5), top[0].Balance)
}

func TestStore_ConcurrentUpdatesSameKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, err := Open(filepath.Join(t.TempDir(), "currency.csv"), nil)
	require.NoError(t, err)

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := store.Update(ctx, 1, 10, models.TransactionTypeTriviaWin, addPoints(5))
			assert.NoError(t, err)
			_, err = store.Update(ctx, 1, userID, models.TransactionTypeTriviaWin, addPoints(1))
			assert.NoError(t, err)
		}(int64(100 + i))
	}
	wg.Wait()

	record, err := store.GetOrCreate(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(5*writers), record.Balance)

	reloaded, err := Open(store.Path(), nil)
	require.NoError(t, err)
	all, err := reloaded.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, all, writers+1)
}

func TestStore_TopQueries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, err := Open(filepath.Join(t.TempDir(), "currency.csv"), nil)
	require.NoError(t, err)

	seed := []struct {
		userID  int64
		balance int64
		streak  int
	}{
		{userID: 1, balance: 10, streak: 3},
		{userID: 2, balance: 30, streak: 1},
		{userID: 3, balance: 20, streak: 3},
	}
	for _, s := range seed {
		_, err := store.Update(ctx, 7, s.userID, models.TransactionTypeImport, func(r *models.LedgerRecord) error {
			r.Balance = s.balance
			r.Streak = s.streak
			return nil
		})
		require.NoError(t, err)
	}
	_, err = store.Update(ctx, 8, 1, models.TransactionTypeImport, addPoints(1000))
	require.NoError(t, err)

	byBalance, err := store.TopByBalance(ctx, 7, 10)
	require.NoError(t, err)
	require.Len(t, byBalance, 3)
	assert.Equal(t, []int64{30, 20, 10}, []int64{byBalance[0].Balance, byBalance[1].Balance, byBalance[2].Balance})

	byStreak, err := store.TopByStreak(ctx, 7, 2)
	require.NoError(t, err)
	require.Len(t, byStreak, 2)
	assert.Equal(t, int64(1), byStreak[0].UserID, "ties keep file order")
	assert.Equal(t, int64(3), byStreak[1].UserID)

	none, err := store.TopByBalance(ctx, 7, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOpen_CorruptFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "currency.csv")
	require.NoError(t, os.WriteFile(path, []byte("server_id,user_id,currency,last_claim_date,streak\n1,2,abc,none,0\n"), 0o644))

	_, err := Open(path, nil)
	var corrupt *service.CorruptLedgerError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, "currency", corrupt.Field)
	assert.Equal(t, "abc", corrupt.Value)
}

func TestRoleFile_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "role_ids.csv")

	roles, err := OpenRoleFile(path)
	require.NoError(t, err)

	settings, err := roles.GetOrCreateSettings(ctx, 1)
	require.NoError(t, err)
	assert.False(t, settings.HasQueueRole())

	roleID := int64(4242)
	require.NoError(t, roles.UpdateQueueRole(ctx, 1, &roleID))

	reloaded, err := OpenRoleFile(path)
	require.NoError(t, err)
	settings, err = reloaded.GetOrCreateSettings(ctx, 1)
	require.NoError(t, err)
	require.True(t, settings.HasQueueRole())
	assert.Equal(t, roleID, *settings.QueueRoleID)

	require.NoError(t, reloaded.UpdateQueueRole(ctx, 1, nil))
	settings, err = reloaded.GetOrCreateSettings(ctx, 1)
	require.NoError(t, err)
	assert.False(t, settings.HasQueueRole())
}
