package service

import (
	"context"
	"fmt"

	"dotabot/events"
	"dotabot/models"
)

// RecordBalanceChange writes a balance history entry and publishes the matching
// event on the unit of work's bus, to be emitted once the transaction commits.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, history *models.BalanceHistory) error {
	if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		GuildID:         history.GuildID,
		UserID:          history.DiscordID,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		TransactionType: history.TransactionType,
		ChangeAmount:    history.ChangeAmount,
	})
	return nil
}
