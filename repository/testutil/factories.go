package testutil

import (
	"dotabot/models"
)

// CreateTestLedgerRecord creates a record with the given balance and no claims
func CreateTestLedgerRecord(guildID, userID, balance int64) *models.LedgerRecord {
	record := models.NewLedgerRecord(guildID, userID)
	record.Balance = balance
	return record
}

// CreateTestLedgerRecordWithStreak creates a record that last claimed on lastClaim
func CreateTestLedgerRecordWithStreak(guildID, userID, balance int64, streak int, lastClaim models.Date) *models.LedgerRecord {
	record := CreateTestLedgerRecord(guildID, userID, balance)
	record.Streak = streak
	record.LastClaimDate = lastClaim
	return record
}

// CreateTestBalanceHistory creates a history row for a trivia result of amount
func CreateTestBalanceHistory(userID, before, amount int64) *models.BalanceHistory {
	return &models.BalanceHistory{
		DiscordID:       userID,
		BalanceBefore:   before,
		BalanceAfter:    before + amount,
		ChangeAmount:    amount,
		TransactionType: models.TransactionTypeForDelta(amount),
		TransactionMetadata: map[string]any{
			"test": true,
		},
	}
}
