package balance

import (
	"context"
	"fmt"
	"strings"

	"dotabot/bot/common"
	"dotabot/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const historyLimit = 10

// HistoryUnavailableMessage is the reply when the backend keeps no history
const HistoryUnavailableMessage = "Balance history is not kept by this ledger."

func (f *Feature) handleHistory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if f.history == nil {
		if err := common.RespondWithMessage(s, i, HistoryUnavailableMessage, true); err != nil {
			log.Errorf("Error responding to history command: %v", err)
		}
		return
	}

	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Error deferring history response: %v", err)
		return
	}

	entries, err := f.history.Recent(context.Background(), guildID, userID, historyLimit)
	if err != nil {
		common.HandleError(s, i, err, true)
		return
	}

	if _, err := common.FollowUpWithEmbed(s, i, BuildHistoryEmbed(entries), true); err != nil {
		log.Errorf("Error sending history embed: %v", err)
	}
}

// BuildHistoryEmbed lists balance changes, newest first
func BuildHistoryEmbed(entries []*models.BalanceHistory) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Recent MMR Changes",
		Color: common.ColorInfo,
	}
	if len(entries) == 0 {
		embed.Description = "No changes yet."
		return embed
	}

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "`%+d` %s → **%s** %s\n",
			e.ChangeAmount,
			describeTransaction(e.TransactionType),
			common.FormatPoints(e.BalanceAfter),
			common.FormatDiscordTimestamp(e.CreatedAt, "R"),
		)
	}
	embed.Description = strings.TrimSuffix(b.String(), "\n")
	return embed
}

func describeTransaction(t models.TransactionType) string {
	switch t {
	case models.TransactionTypeDailyClaim:
		return "daily claim"
	case models.TransactionTypeTriviaWin:
		return "trivia win"
	case models.TransactionTypeTriviaLoss:
		return "trivia loss"
	case models.TransactionTypeImport:
		return "import"
	default:
		return string(t)
	}
}
