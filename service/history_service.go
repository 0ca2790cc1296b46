package service

import (
	"context"
	"fmt"

	"dotabot/models"
)

// HistoryReader lists a user's recent balance changes
type HistoryReader interface {
	Recent(ctx context.Context, guildID, userID int64, limit int) ([]*models.BalanceHistory, error)
}

type historyService struct {
	uowFactory UnitOfWorkFactory
}

// NewHistoryService creates a HistoryReader over the unit of work factory
func NewHistoryService(uowFactory UnitOfWorkFactory) HistoryReader {
	return &historyService{uowFactory: uowFactory}
}

// Recent returns up to limit entries, newest first
func (s *historyService) Recent(ctx context.Context, guildID, userID int64, limit int) ([]*models.BalanceHistory, error) {
	if limit <= 0 {
		return nil, nil
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.BalanceHistoryRepository().GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance history: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return entries, nil
}
