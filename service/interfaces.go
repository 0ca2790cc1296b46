package service

import (
	"context"
	"time"

	"dotabot/events"
	"dotabot/models"
)

// LedgerRepository is guild-scoped access to ledger rows
type LedgerRepository interface {
	// GetOrCreate returns the user's record, inserting the default row on miss
	GetOrCreate(ctx context.Context, userID int64) (*models.LedgerRecord, error)

	// GetForUpdate returns the user's record locked until the transaction ends,
	// inserting the default row on miss
	GetForUpdate(ctx context.Context, userID int64) (*models.LedgerRecord, error)

	// Save persists balance, last claim date and streak
	Save(ctx context.Context, record *models.LedgerRecord) error

	// TopByBalance returns up to limit records ordered by balance, ties by insertion order
	TopByBalance(ctx context.Context, limit int) ([]*models.LedgerRecord, error)

	// TopByStreak returns up to limit records ordered by streak, ties by insertion order
	TopByStreak(ctx context.Context, limit int) ([]*models.LedgerRecord, error)

	// All returns every record in the guild in insertion order
	All(ctx context.Context) ([]*models.LedgerRecord, error)
}

// BalanceHistoryRepository records balance changes
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns the most recent entries for a user
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error)
}

// GuildSettingsRepository defines the interface for guild settings data access
type GuildSettingsRepository interface {
	// GetOrCreateGuildSettings retrieves guild settings or creates default ones if not found
	GetOrCreateGuildSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error)

	// UpdateGuildSettings updates guild settings
	UpdateGuildSettings(ctx context.Context, settings *models.GuildSettings) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork groups the repositories of one guild-scoped transaction
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	LedgerRepository() LedgerRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	GuildSettingsRepository() GuildSettingsRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates guild-scoped units of work
type UnitOfWorkFactory interface {
	CreateForGuild(guildID int64) UnitOfWork
}

// LedgerMutator changes a record in place. Returning an error aborts the update.
type LedgerMutator func(record *models.LedgerRecord) error

// LedgerStore is the durable (guild, user) points ledger.
// Update is atomic per key: no other Update for the same key interleaves
// between its read and its write, and it returns only after the write is durable.
type LedgerStore interface {
	GetOrCreate(ctx context.Context, guildID, userID int64) (*models.LedgerRecord, error)
	Update(ctx context.Context, guildID, userID int64, txType models.TransactionType, mutate LedgerMutator) (*models.LedgerRecord, error)
	TopByBalance(ctx context.Context, guildID int64, n int) ([]*models.LedgerRecord, error)
	TopByStreak(ctx context.Context, guildID int64, n int) ([]*models.LedgerRecord, error)
}

// LedgerSnapshotter reads and restores whole ledgers for import and export
type LedgerSnapshotter interface {
	// Snapshot returns every record of every guild
	Snapshot(ctx context.Context) ([]*models.LedgerRecord, error)

	// Restore writes all records in one unit, replacing existing rows with the same key
	Restore(ctx context.Context, records []*models.LedgerRecord) error
}

// MessagingPlatform is the chat transport as seen by the services.
// Identifiers of channels and messages are the platform's opaque strings.
type MessagingPlatform interface {
	PostMessage(ctx context.Context, channelID string, msg *models.Announcement) (messageID string, err error)
	AddReaction(ctx context.Context, channelID, messageID, emoji string) error
	ListReactors(ctx context.Context, channelID, messageID, emoji string) ([]models.Reactor, error)
	DisplayName(ctx context.Context, guildID, userID int64) (string, error)
}

// RoleManager manages guild roles on the messaging platform
type RoleManager interface {
	RoleExists(ctx context.Context, guildID, roleID int64) (bool, error)
	CreateRole(ctx context.Context, guildID int64, name string, mentionable bool) (roleID int64, err error)
	AssignRole(ctx context.Context, guildID, userID, roleID int64) error
}

// ContentProvider supplies trivia facts
type ContentProvider interface {
	// NextMatch returns a 5v5 match not served before, or ErrContentUnavailable
	NextMatch(ctx context.Context) (*models.MatchRecord, error)

	// RandomHeroWithStat returns one numeric attribute of a random hero
	RandomHeroWithStat(ctx context.Context) (*models.HeroStat, error)
}

// SessionTracker counts reactions on group-activity messages
type SessionTracker interface {
	StartSession(session models.Session) error
	OnReactionChanged(messageID, emoji string, newCount int) (*models.FireEvent, bool)
	IsTracked(messageID, emoji string) bool
}

// DailyService handles the daily reward claim
type DailyService interface {
	// ClaimDaily credits the reward or returns *AlreadyClaimedError
	ClaimDaily(ctx context.Context, guildID, userID int64) (*models.LedgerRecord, error)
}

// GuildSettingsService manages per-guild settings
type GuildSettingsService interface {
	GetOrCreateSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error)
	UpdateQueueRole(ctx context.Context, guildID int64, roleID *int64) error
}

// Clock returns the current instant
type Clock func() time.Time
