package repository

import (
	"context"
	"testing"
	"time"

	"dotabot/events"
	"dotabot/models"
	"dotabot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRepository_GetOrCreate(t *testing.T) {
	testutil.SkipIfShort(t)
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	repo := NewLedgerRepository(testDB.DB, 1001)

	record, err := repo.GetOrCreate(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), record.GuildID)
	assert.Equal(t, int64(42), record.UserID)
	assert.Equal(t, int64(0), record.Balance)
	assert.Equal(t, 0, record.Streak)
	assert.True(t, record.LastClaimDate.IsZero())

	again, err := repo.GetOrCreate(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, record.ID, again.ID, "second read returns the same row")

	other, err := NewLedgerRepository(testDB.DB, 2002).GetOrCreate(ctx, 42)
	require.NoError(t, err)
	assert.NotEqual(t, record.ID, other.ID, "records are per guild")
}

func TestLedgerRepository_SaveRoundTripsDate(t *testing.T) {
	testutil.SkipIfShort(t)
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	repo := NewLedgerRepository(testDB.DB, 1001)

	record, err := repo.GetOrCreate(ctx, 7)
	require.NoError(t, err)

	claimDay := models.Date{Year: 2024, Month: time.February, Day: 29}
	require.NoError(t, record.ClaimDaily(claimDay, 25, true))
	require.NoError(t, repo.Save(ctx, record))

	loaded, err := repo.GetOrCreate(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(25), loaded.Balance)
	assert.Equal(t, 1, loaded.Streak)
	assert.Equal(t, claimDay, loaded.LastClaimDate)
}

func TestLedgerRepository_TopQueries(t *testing.T) {
	testutil.SkipIfShort(t)
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	repo := NewLedgerRepository(testDB.DB, 1001)

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
		record, err := repo.GetOrCreate(ctx, s.userID)
		require.NoError(t, err)
		record.Balance = s.balance
		record.Streak = s.streak
		require.NoError(t, repo.Save(ctx, record))
	}

	byBalance, err := repo.TopByBalance(ctx, 10)
	require.NoError(t, err)
	require.Len(t, byBalance, 3)
	assert.Equal(t, []int64{30, 20, 10}, []int64{byBalance[0].Balance, byBalance[1].Balance, byBalance[2].Balance})

	byStreak, err := repo.TopByStreak(ctx, 2)
	require.NoError(t, err)
	require.Len(t, byStreak, 2)
	assert.Equal(t, int64(1), byStreak[0].UserID, "ties keep insertion order")
	assert.Equal(t, int64(3), byStreak[1].UserID)

	none, err := repo.TopByBalance(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUnitOfWork_GetForUpdateSerialisesWriters(t *testing.T) {
	testutil.SkipIfShort(t)
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())

	const writers = 10
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		go func() {
			uow := factory.CreateForGuild(1001)
			if err := uow.Begin(ctx); err != nil {
				errs <- err
				return
			}
			defer uow.Rollback()

			record, err := uow.LedgerRepository().GetForUpdate(ctx, 99)
			if err != nil {
				errs <- err
				return
			}
			record.ApplyDelta(5)
			if err := uow.LedgerRepository().Save(ctx, record); err != nil {
				errs <- err
				return
			}
			errs <- uow.Commit()
		}()
	}
	for i := 0; i < writers; i++ {
		require.NoError(t, <-errs)
	}

	record, err := NewLedgerRepository(testDB.DB, 1001).GetOrCreate(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, int64(5*writers), record.Balance)
}

func TestUnitOfWork_RollbackDiscardsWrites(t *testing.T) {
	testutil.SkipIfShort(t)
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	bus := events.NewBus()
	received := make(chan events.Event, 1)
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) { received <- e })

	uow := NewUnitOfWorkFactory(testDB.DB, bus).CreateForGuild(1001)
	require.NoError(t, uow.Begin(ctx))

	record, err := uow.LedgerRepository().GetForUpdate(ctx, 5)
	require.NoError(t, err)
	record.ApplyDelta(100)
	require.NoError(t, uow.LedgerRepository().Save(ctx, record))
	uow.EventBus().Publish(events.BalanceChangeEvent{GuildID: 1001, UserID: 5, NewBalance: 100})
	require.NoError(t, uow.Rollback())

	select {
	case <-received:
		t.Fatal("events must not be emitted after rollback")
	case <-time.After(100 * time.Millisecond):
	}

	all, err := NewLedgerRepository(testDB.DB, 1001).All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestLedgerSnapshotRepository_RestoreAndSnapshot(t *testing.T) {
	testutil.SkipIfShort(t)
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	snapshots := NewLedgerSnapshotRepository(testDB.DB)

	day := models.Date{Year: 2024, Month: time.May, Day: 1}
	records := []*models.LedgerRecord{
		testutil.CreateTestLedgerRecordWithStreak(1, 10, 75, 2, day),
		testutil.CreateTestLedgerRecord(1, 11, -5),
		testutil.CreateTestLedgerRecord(2, 10, 40),
	}
	require.NoError(t, snapshots.Restore(ctx, records))

	// restoring twice overwrites instead of duplicating
	records[1].Balance = 15
	require.NoError(t, snapshots.Restore(ctx, records))

	got, err := snapshots.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(75), got[0].Balance)
	assert.Equal(t, day, got[0].LastClaimDate)
	assert.Equal(t, 2, got[0].Streak)
	assert.Equal(t, int64(15), got[1].Balance)
	assert.Equal(t, int64(2), got[2].GuildID)
}
