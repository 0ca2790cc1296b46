package models

import (
	"time"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeDailyClaim TransactionType = "daily_claim"
	TransactionTypeTriviaWin  TransactionType = "trivia_win"
	TransactionTypeTriviaLoss TransactionType = "trivia_loss"
	TransactionTypeImport     TransactionType = "import"
)

// TransactionTypeForDelta picks the trivia transaction type matching the sign of delta
func TransactionTypeForDelta(delta int64) TransactionType {
	if delta >= 0 {
		return TransactionTypeTriviaWin
	}
	return TransactionTypeTriviaLoss
}

// BalanceHistory represents a historical balance change
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	DiscordID           int64           `db:"discord_id"`
	GuildID             int64           `db:"guild_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	CreatedAt           time.Time       `db:"created_at"`
}
