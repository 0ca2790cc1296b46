package help

import (
	"fmt"
	"strings"

	"dotabot/bot/common"
	"dotabot/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature lists the bot's commands
type Feature struct {
	embed *discordgo.MessageEmbed
}

func New(queues []models.QueueDefinition, dailyReward int64) *Feature {
	return &Feature{embed: BuildEmbed(queues, dailyReward)}
}

// HandleCommand handles /help
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := common.RespondWithEmbed(s, i, f.embed, true); err != nil {
		log.Errorf("Error responding to help command: %v", err)
	}
}

// BuildEmbed renders the command list
func BuildEmbed(queues []models.QueueDefinition, dailyReward int64) *discordgo.MessageEmbed {
	var b strings.Builder
	fmt.Fprintf(&b, "/daily - Claim your daily %s\n", common.FormatPoints(dailyReward))
	b.WriteString("/mmr - Check your points\n")
	b.WriteString("/history - Show your recent point changes\n")
	b.WriteString("/top - Show the top point holders or daily streaks\n")
	b.WriteString("/trivia - 50% match trivia, 50% hero Over/Under\n")
	b.WriteString("/role - Join the queue role\n")
	for _, q := range queues {
		fmt.Fprintf(&b, "/queue %s - %s\n", q.Kind, q.Title)
	}

	return &discordgo.MessageEmbed{
		Title:       "Dota Queue Bot Commands",
		Description: b.String(),
		Color:       common.ColorSuccess,
	}
}
