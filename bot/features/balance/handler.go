package balance

import (
	"context"
	"fmt"

	"dotabot/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	record, err := f.ledger.GetOrCreate(context.Background(), guildID, userID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if err := common.RespondWithMessage(s, i, Message(userID, record.Balance), false); err != nil {
		log.Errorf("Error responding to balance command: %v", err)
	}
}

// Message reports a user's points
func Message(userID, balance int64) string {
	return fmt.Sprintf("%s, you have **%s**.", common.UserMention(userID), common.FormatPoints(balance))
}
