package service

import (
	"context"
	"errors"
	"testing"

	"dotabot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryService_Recent(t *testing.T) {
	ctx := context.Background()
	m := newLedgerServiceMocks()
	svc := NewHistoryService(m.factory)

	entries := []*models.BalanceHistory{
		{DiscordID: TestUser1ID, BalanceBefore: 0, BalanceAfter: 25, ChangeAmount: 25, TransactionType: models.TransactionTypeDailyClaim},
	}
	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.history.On("GetByUser", ctx, int64(TestUser1ID), 5).Return(entries, nil)

	got, err := svc.Recent(ctx, TestGuildID, TestUser1ID, 5)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
	m.assertExpectations(t)
}

func TestHistoryService_RecentQueryError(t *testing.T) {
	ctx := context.Background()
	m := newLedgerServiceMocks()
	svc := NewHistoryService(m.factory)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.history.On("GetByUser", ctx, int64(TestUser1ID), 5).Return(nil, errors.New("connection reset"))

	_, err := svc.Recent(ctx, TestGuildID, TestUser1ID, 5)
	assert.ErrorContains(t, err, "connection reset")
	m.uow.AssertNotCalled(t, "Commit")
}

func TestHistoryService_ZeroLimit(t *testing.T) {
	svc := NewHistoryService(new(MockUnitOfWorkFactory))

	got, err := svc.Recent(context.Background(), TestGuildID, TestUser1ID, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
