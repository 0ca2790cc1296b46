package trivia

import (
	"context"
	"fmt"
	"strings"

	"dotabot/bot/common"
	"dotabot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleTrivia(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !f.trivia.Enabled() {
		if err := common.RespondWithMessage(s, i, DisabledMessage, false); err != nil {
			log.Errorf("Error responding to trivia command: %v", err)
		}
		return
	}

	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	// the wait for a pick outlasts the initial response window
	if err := common.DeferResponse(s, i, false); err != nil {
		log.Errorf("Error deferring trivia response: %v", err)
		return
	}

	round, err := f.trivia.Play(context.Background(), service.TriviaRequest{
		GuildID:   guildID,
		ChannelID: i.ChannelID,
		UserID:    userID,
	})
	if err != nil {
		common.HandleError(s, i, err, true)
		return
	}

	if _, err := common.FollowUpWithMessage(s, i, ResultMessage(userID, round), false); err != nil {
		log.WithFields(log.Fields{
			"guild_id":   guildID,
			"user_id":    userID,
			"message_id": round.MessageID,
			"error":      err,
		}).Error("Error sending trivia result")
	}
}

// ResultMessage reports a settled round to the asking user
func ResultMessage(userID int64, round *service.TriviaRound) string {
	result := round.Result

	var b strings.Builder
	b.WriteString(common.UserMention(userID))
	if result.Correct {
		fmt.Fprintf(&b, " Correct! You gain %d MMR.\n", result.Delta)
	} else {
		fmt.Fprintf(&b, " Incorrect! You lose %d MMR.\n", -result.Delta)
	}

	switch {
	case round.Stat != nil:
		fmt.Fprintf(&b, "The real value is **%s**, which is **%s** %s.\n",
			service.FormatStatValue(round.Stat.RealValue),
			strings.ToLower(result.Truth.DisplayName()),
			service.FormatStatValue(round.Stat.ShownValue))
	case round.Match != nil:
		fmt.Fprintf(&b, "The actual winner was **%s**.\n", round.Match.Winner().DisplayName())
	}

	fmt.Fprintf(&b, "Your new MMR: **%d**.", result.NewBalance)
	return b.String()
}
