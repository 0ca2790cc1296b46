package repository

import (
	"context"
	"testing"

	"dotabot/models"
	"dotabot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceHistoryRepository_RecordAndGetByUser(t *testing.T) {
	testutil.SkipIfShort(t)
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	repo := NewBalanceHistoryRepository(testDB.DB, 1001)

	first := testutil.CreateTestBalanceHistory(42, 0, 25)
	first.TransactionType = models.TransactionTypeDailyClaim
	require.NoError(t, repo.Record(ctx, first))
	assert.NotZero(t, first.ID)
	assert.Equal(t, int64(1001), first.GuildID)

	second := testutil.CreateTestBalanceHistory(42, 25, -10)
	require.NoError(t, repo.Record(ctx, second))

	// other guilds are invisible
	require.NoError(t, NewBalanceHistoryRepository(testDB.DB, 2002).Record(ctx, testutil.CreateTestBalanceHistory(42, 0, 5)))

	history, err := repo.GetByUser(ctx, 42, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.TransactionTypeTriviaLoss, history[0].TransactionType)
	assert.Equal(t, int64(15), history[0].BalanceAfter)
	assert.Equal(t, models.TransactionTypeDailyClaim, history[1].TransactionType)
	assert.Equal(t, true, history[1].TransactionMetadata["test"])
}

func TestGuildSettingsRepository(t *testing.T) {
	testutil.SkipIfShort(t)
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	repo := NewGuildSettingsRepository(testDB.DB)

	settings, err := repo.GetOrCreateGuildSettings(ctx, 1001)
	require.NoError(t, err)
	assert.False(t, settings.HasQueueRole())

	roleID := int64(555)
	settings.QueueRoleID = &roleID
	require.NoError(t, repo.UpdateGuildSettings(ctx, settings))

	loaded, err := repo.GetOrCreateGuildSettings(ctx, 1001)
	require.NoError(t, err)
	require.True(t, loaded.HasQueueRole())
	assert.Equal(t, roleID, *loaded.QueueRoleID)

	err = repo.UpdateGuildSettings(ctx, &models.GuildSettings{GuildID: 9999})
	assert.Error(t, err)
}
