package service

import (
	"context"

	"dotabot/events"
	"dotabot/models"

	"github.com/stretchr/testify/mock"
)

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) GetOrCreate(ctx context.Context, userID int64) (*models.LedgerRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerRecord), args.Error(1)
}

func (m *MockLedgerRepository) GetForUpdate(ctx context.Context, userID int64) (*models.LedgerRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerRecord), args.Error(1)
}

func (m *MockLedgerRepository) Save(ctx context.Context, record *models.LedgerRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockLedgerRepository) TopByBalance(ctx context.Context, limit int) ([]*models.LedgerRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerRecord), args.Error(1)
}

func (m *MockLedgerRepository) TopByStreak(ctx context.Context, limit int) ([]*models.LedgerRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerRecord), args.Error(1)
}

func (m *MockLedgerRepository) All(ctx context.Context) ([]*models.LedgerRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerRecord), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockGuildSettingsRepository is a mock implementation of GuildSettingsRepository
type MockGuildSettingsRepository struct {
	mock.Mock
}

func (m *MockGuildSettingsRepository) GetOrCreateGuildSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsRepository) UpdateGuildSettings(ctx context.Context, settings *models.GuildSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	ledgerRepo         LedgerRepository
	balanceHistoryRepo BalanceHistoryRepository
	guildSettingsRepo  GuildSettingsRepository
	eventBus           EventPublisher
}

// SetRepositories sets the repositories returned by the unit of work
func (m *MockUnitOfWork) SetRepositories(ledger LedgerRepository, history BalanceHistoryRepository, settings GuildSettingsRepository, bus EventPublisher) {
	m.ledgerRepo = ledger
	m.balanceHistoryRepo = history
	m.guildSettingsRepo = settings
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) LedgerRepository() LedgerRepository {
	return m.ledgerRepo
}

func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return m.balanceHistoryRepo
}

func (m *MockUnitOfWork) GuildSettingsRepository() GuildSettingsRepository {
	return m.guildSettingsRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) CreateForGuild(guildID int64) UnitOfWork {
	args := m.Called(guildID)
	return args.Get(0).(UnitOfWork)
}

// MockLedgerStore is a mock implementation of LedgerStore
type MockLedgerStore struct {
	mock.Mock
}

func (m *MockLedgerStore) GetOrCreate(ctx context.Context, guildID, userID int64) (*models.LedgerRecord, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerRecord), args.Error(1)
}

func (m *MockLedgerStore) Update(ctx context.Context, guildID, userID int64, txType models.TransactionType, mutate LedgerMutator) (*models.LedgerRecord, error) {
	args := m.Called(ctx, guildID, userID, txType, mutate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerRecord), args.Error(1)
}

func (m *MockLedgerStore) TopByBalance(ctx context.Context, guildID int64, n int) ([]*models.LedgerRecord, error) {
	args := m.Called(ctx, guildID, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerRecord), args.Error(1)
}

func (m *MockLedgerStore) TopByStreak(ctx context.Context, guildID int64, n int) ([]*models.LedgerRecord, error) {
	args := m.Called(ctx, guildID, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerRecord), args.Error(1)
}

// MockMessagingPlatform is a mock implementation of MessagingPlatform
type MockMessagingPlatform struct {
	mock.Mock
}

func (m *MockMessagingPlatform) PostMessage(ctx context.Context, channelID string, msg *models.Announcement) (string, error) {
	args := m.Called(ctx, channelID, msg)
	return args.String(0), args.Error(1)
}

func (m *MockMessagingPlatform) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	args := m.Called(ctx, channelID, messageID, emoji)
	return args.Error(0)
}

func (m *MockMessagingPlatform) ListReactors(ctx context.Context, channelID, messageID, emoji string) ([]models.Reactor, error) {
	args := m.Called(ctx, channelID, messageID, emoji)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reactor), args.Error(1)
}

func (m *MockMessagingPlatform) DisplayName(ctx context.Context, guildID, userID int64) (string, error) {
	args := m.Called(ctx, guildID, userID)
	return args.String(0), args.Error(1)
}

// MockRoleManager is a mock implementation of RoleManager
type MockRoleManager struct {
	mock.Mock
}

func (m *MockRoleManager) RoleExists(ctx context.Context, guildID, roleID int64) (bool, error) {
	args := m.Called(ctx, guildID, roleID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoleManager) CreateRole(ctx context.Context, guildID int64, name string, mentionable bool) (int64, error) {
	args := m.Called(ctx, guildID, name, mentionable)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRoleManager) AssignRole(ctx context.Context, guildID, userID, roleID int64) error {
	args := m.Called(ctx, guildID, userID, roleID)
	return args.Error(0)
}

// MockContentProvider is a mock implementation of ContentProvider
type MockContentProvider struct {
	mock.Mock
}

func (m *MockContentProvider) NextMatch(ctx context.Context) (*models.MatchRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MatchRecord), args.Error(1)
}

func (m *MockContentProvider) RandomHeroWithStat(ctx context.Context) (*models.HeroStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HeroStat), args.Error(1)
}

// MockGuildSettingsService is a mock implementation of GuildSettingsService
type MockGuildSettingsService struct {
	mock.Mock
}

func (m *MockGuildSettingsService) GetOrCreateSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsService) UpdateQueueRole(ctx context.Context, guildID int64, roleID *int64) error {
	args := m.Called(ctx, guildID, roleID)
	return args.Error(0)
}
