package service

import (
	"context"
	"errors"
	"testing"

	"dotabot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ledgerServiceMocks struct {
	factory   *MockUnitOfWorkFactory
	uow       *MockUnitOfWork
	ledger    *MockLedgerRepository
	history   *MockBalanceHistoryRepository
	publisher *MockEventPublisher
}

func newLedgerServiceMocks() *ledgerServiceMocks {
	m := &ledgerServiceMocks{
		factory:   new(MockUnitOfWorkFactory),
		uow:       new(MockUnitOfWork),
		ledger:    new(MockLedgerRepository),
		history:   new(MockBalanceHistoryRepository),
		publisher: new(MockEventPublisher),
	}
	m.uow.SetRepositories(m.ledger, m.history, nil, m.publisher)
	m.factory.On("CreateForGuild", int64(TestGuildID)).Return(m.uow)
	return m
}

func (m *ledgerServiceMocks) assertExpectations(t *testing.T) {
	m.factory.AssertExpectations(t)
	m.uow.AssertExpectations(t)
	m.ledger.AssertExpectations(t)
	m.history.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
}

func TestLedgerService_UpdateCommitsAndRecordsHistory(t *testing.T) {
	ctx := context.Background()
	m := newLedgerServiceMocks()
	svc := NewLedgerService(m.factory)

	existing := &models.LedgerRecord{GuildID: TestGuildID, UserID: TestUser1ID, Balance: 20}

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.ledger.On("GetForUpdate", ctx, int64(TestUser1ID)).Return(existing, nil)
	m.ledger.On("Save", ctx, mock.MatchedBy(func(r *models.LedgerRecord) bool {
		return r.Balance == 25
	})).Return(nil)
	m.history.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.BalanceBefore == 20 &&
			h.BalanceAfter == 25 &&
			h.ChangeAmount == 5 &&
			h.GuildID == TestGuildID &&
			h.TransactionType == models.TransactionTypeTriviaWin
	})).Return(nil)
	m.publisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return()

	record, err := svc.Update(ctx, TestGuildID, TestUser1ID, models.TransactionTypeTriviaWin, func(r *models.LedgerRecord) error {
		r.ApplyDelta(5)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int64(25), record.Balance)
	m.assertExpectations(t)
}

func TestLedgerService_UpdateMutatorErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	m := newLedgerServiceMocks()
	svc := NewLedgerService(m.factory)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.ledger.On("GetForUpdate", ctx, int64(TestUser1ID)).
		Return(&models.LedgerRecord{GuildID: TestGuildID, UserID: TestUser1ID}, nil)

	sentinel := errors.New("nope")
	_, err := svc.Update(ctx, TestGuildID, TestUser1ID, models.TransactionTypeDailyClaim, func(r *models.LedgerRecord) error {
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	m.ledger.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	m.uow.AssertNotCalled(t, "Commit")
	m.assertExpectations(t)
}

func TestLedgerService_UpdateCommitFailureIsLedgerWriteError(t *testing.T) {
	ctx := context.Background()
	m := newLedgerServiceMocks()
	svc := NewLedgerService(m.factory)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(errors.New("disk full"))
	m.uow.On("Rollback").Return(nil)
	m.ledger.On("GetForUpdate", ctx, int64(TestUser1ID)).
		Return(&models.LedgerRecord{GuildID: TestGuildID, UserID: TestUser1ID}, nil)
	m.ledger.On("Save", ctx, mock.Anything).Return(nil)
	m.history.On("Record", ctx, mock.Anything).Return(nil)
	m.publisher.On("Publish", mock.Anything).Return()

	_, err := svc.Update(ctx, TestGuildID, TestUser1ID, models.TransactionTypeTriviaLoss, func(r *models.LedgerRecord) error {
		r.ApplyDelta(-5)
		return nil
	})

	var lwe *LedgerWriteError
	require.ErrorAs(t, err, &lwe)
	assert.Equal(t, int64(TestUser1ID), lwe.UserID)
	m.assertExpectations(t)
}

func TestLedgerService_UpdateWithoutBalanceChangeSkipsHistory(t *testing.T) {
	ctx := context.Background()
	m := newLedgerServiceMocks()
	svc := NewLedgerService(m.factory)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.ledger.On("GetForUpdate", ctx, int64(TestUser1ID)).
		Return(&models.LedgerRecord{GuildID: TestGuildID, UserID: TestUser1ID, Balance: 3}, nil)
	m.ledger.On("Save", ctx, mock.Anything).Return(nil)

	_, err := svc.Update(ctx, TestGuildID, TestUser1ID, models.TransactionTypeDailyClaim, func(r *models.LedgerRecord) error {
		r.Streak = 4
		return nil
	})

	require.NoError(t, err)
	m.history.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	m.assertExpectations(t)
}

func TestLedgerService_TopByBalance(t *testing.T) {
	ctx := context.Background()
	m := newLedgerServiceMocks()
	svc := NewLedgerService(m.factory)

	top := []*models.LedgerRecord{{UserID: 2, Balance: 30}, {UserID: 3, Balance: 20}, {UserID: 1, Balance: 10}}
	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.ledger.On("TopByBalance", ctx, 10).Return(top, nil)

	got, err := svc.TopByBalance(ctx, TestGuildID, 10)
	require.NoError(t, err)
	assert.Equal(t, top, got)
	m.assertExpectations(t)
}
