package service

import (
	"context"
	"errors"

	"dotabot/models"

	log "github.com/sirupsen/logrus"
)

// DefaultDailyReward is credited by each successful daily claim
const DefaultDailyReward = 25

type dailyService struct {
	ledger        LedgerStore
	calendar      *Calendar
	reward        int64
	enableStreaks bool
}

// NewDailyService creates the daily claim service
func NewDailyService(ledger LedgerStore, calendar *Calendar, reward int64, enableStreaks bool) DailyService {
	return &dailyService{
		ledger:        ledger,
		calendar:      calendar,
		reward:        reward,
		enableStreaks: enableStreaks,
	}
}

// ClaimDaily credits today's reward. A second claim on the same calendar day
// returns *AlreadyClaimedError with the time left until the next local midnight.
func (s *dailyService) ClaimDaily(ctx context.Context, guildID, userID int64) (*models.LedgerRecord, error) {
	today := s.calendar.Today()

	record, err := s.ledger.Update(ctx, guildID, userID, models.TransactionTypeDailyClaim, func(r *models.LedgerRecord) error {
		return r.ClaimDaily(today, s.reward, s.enableStreaks)
	})
	if errors.Is(err, models.ErrAlreadyClaimedToday) {
		return nil, &AlreadyClaimedError{Remaining: s.calendar.UntilNextMidnight()}
	}
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"guild_id": guildID,
		"user_id":  userID,
		"balance":  record.Balance,
		"streak":   record.Streak,
		"date":     today.String(),
	}).Info("Daily reward claimed")
	return record, nil
}
