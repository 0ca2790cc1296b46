package leaderboard

import (
	"context"
	"fmt"
	"strings"

	"dotabot/bot/common"
	"dotabot/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleTop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, _, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	by := ByBalance
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == ByOption {
			by = opt.StringValue()
		}
	}

	ctx := context.Background()
	var records []*models.LedgerRecord
	if by == ByStreak {
		records, err = f.ledger.TopByStreak(ctx, guildID, f.size)
	} else {
		records, err = f.ledger.TopByBalance(ctx, guildID, f.size)
	}
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	embed := BuildEmbed(by, records, func(userID int64) string {
		return common.GetDisplayName(s, i.GuildID, common.FormatID(userID))
	})
	if err := common.RespondWithEmbed(s, i, embed, false); err != nil {
		log.Errorf("Error responding to top command: %v", err)
	}
}

// BuildEmbed renders ranked records, one numbered line per user
func BuildEmbed(by string, records []*models.LedgerRecord, displayName func(userID int64) string) *discordgo.MessageEmbed {
	title := "Top Point Holders"
	if by == ByStreak {
		title = "Top Daily Streaks"
	}

	var desc strings.Builder
	for idx, r := range records {
		value := common.FormatPoints(r.Balance)
		if by == ByStreak {
			value = fmt.Sprintf("%d days", r.Streak)
		}
		fmt.Fprintf(&desc, "%d. %s - **%s**\n", idx+1, displayName(r.UserID), value)
	}
	if len(records) == 0 {
		desc.WriteString("Nobody is on the board yet.")
	}

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: desc.String(),
		Color:       common.ColorGold,
	}
}
