package daily

import (
	"context"
	"errors"
	"fmt"

	"dotabot/bot/common"
	"dotabot/models"
	"dotabot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleDaily(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	record, err := f.dailyService.ClaimDaily(context.Background(), guildID, userID)

	var claimed *service.AlreadyClaimedError
	switch {
	case errors.As(err, &claimed):
		log.WithFields(log.Fields{
			"guild_id":  guildID,
			"user_id":   userID,
			"remaining": claimed.Remaining,
		}).Info("Daily already claimed")
		err = common.RespondWithMessage(s, i, AlreadyClaimedMessage(userID, claimed), false)
	case err != nil:
		common.HandleError(s, i, err, false)
		return
	default:
		err = common.RespondWithMessage(s, i, ClaimedMessage(record), false)
	}
	if err != nil {
		log.Errorf("Error responding to daily command: %v", err)
	}
}

// ClaimedMessage confirms a successful claim
func ClaimedMessage(record *models.LedgerRecord) string {
	return fmt.Sprintf("%s, daily reward claimed! You now have **%s**. Streak: %d days in a row.",
		common.UserMention(record.UserID), common.FormatPoints(record.Balance), record.Streak)
}

// AlreadyClaimedMessage tells the user when the next claim opens
func AlreadyClaimedMessage(userID int64, claimed *service.AlreadyClaimedError) string {
	return fmt.Sprintf("%s, you've already claimed your daily. Try again in %s.",
		common.UserMention(userID), common.FormatRemaining(claimed.Remaining))
}
