package service

import (
	"context"
	"fmt"

	"dotabot/models"

	log "github.com/sirupsen/logrus"
)

// ledgerService is the Postgres-backed LedgerStore. Each Update runs in its own
// guild-scoped unit of work holding a row lock on the user's record.
type ledgerService struct {
	uowFactory UnitOfWorkFactory
}

// NewLedgerService creates a LedgerStore over the unit of work factory
func NewLedgerService(uowFactory UnitOfWorkFactory) LedgerStore {
	return &ledgerService{uowFactory: uowFactory}
}

// GetOrCreate returns the user's record, creating the default one on miss
func (s *ledgerService) GetOrCreate(ctx context.Context, guildID, userID int64) (*models.LedgerRecord, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	record, err := uow.LedgerRepository().GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger record: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return record, nil
}

// Update applies mutate to the locked record and commits it. Errors from mutate
// are returned unchanged with nothing written; failures while writing are
// returned as *LedgerWriteError.
func (s *ledgerService) Update(ctx context.Context, guildID, userID int64, txType models.TransactionType, mutate LedgerMutator) (*models.LedgerRecord, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, &LedgerWriteError{GuildID: guildID, UserID: userID, Err: fmt.Errorf("failed to begin transaction: %w", err)}
	}
	defer uow.Rollback()

	record, err := uow.LedgerRepository().GetForUpdate(ctx, userID)
	if err != nil {
		return nil, &LedgerWriteError{GuildID: guildID, UserID: userID, Err: err}
	}

	before := record.Clone()
	if err := mutate(record); err != nil {
		return nil, err
	}

	if err := uow.LedgerRepository().Save(ctx, record); err != nil {
		return nil, &LedgerWriteError{GuildID: guildID, UserID: userID, Err: err}
	}

	if record.Balance != before.Balance {
		history := &models.BalanceHistory{
			DiscordID:       userID,
			GuildID:         guildID,
			BalanceBefore:   before.Balance,
			BalanceAfter:    record.Balance,
			ChangeAmount:    record.Balance - before.Balance,
			TransactionType: txType,
			TransactionMetadata: map[string]any{
				"streak":          record.Streak,
				"last_claim_date": record.LastClaimDate.String(),
			},
		}
		if err := RecordBalanceChange(ctx, uow, history); err != nil {
			return nil, &LedgerWriteError{GuildID: guildID, UserID: userID, Err: err}
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, &LedgerWriteError{GuildID: guildID, UserID: userID, Err: err}
	}

	log.WithFields(log.Fields{
		"guild_id":         guildID,
		"user_id":          userID,
		"transaction_type": txType,
		"balance":          record.Balance,
		"streak":           record.Streak,
	}).Debug("Ledger record updated")
	return record, nil
}

// TopByBalance returns up to n records of the guild with the highest balance
func (s *ledgerService) TopByBalance(ctx context.Context, guildID int64, n int) ([]*models.LedgerRecord, error) {
	return s.top(ctx, guildID, func(repo LedgerRepository) ([]*models.LedgerRecord, error) {
		return repo.TopByBalance(ctx, n)
	})
}

// TopByStreak returns up to n records of the guild with the longest streak
func (s *ledgerService) TopByStreak(ctx context.Context, guildID int64, n int) ([]*models.LedgerRecord, error) {
	return s.top(ctx, guildID, func(repo LedgerRepository) ([]*models.LedgerRecord, error) {
		return repo.TopByStreak(ctx, n)
	})
}

func (s *ledgerService) top(ctx context.Context, guildID int64, query func(LedgerRepository) ([]*models.LedgerRecord, error)) ([]*models.LedgerRecord, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	records, err := query(uow.LedgerRepository())
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	return records, nil
}

