package bot

import (
	"fmt"

	"dotabot/bot/features/leaderboard"
	"dotabot/bot/features/queue"

	"github.com/bwmarrin/discordgo"
)

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	for _, cmd := range b.commands() {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}
	return nil
}

func (b *Bot) commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "help",
			Description: "List the bot's commands",
		},
		{
			Name:        "queue",
			Description: "Start a queue that pings the queue role",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        queue.KindOption,
					Description: "Queue type",
					Required:    true,
					Choices:     queue.Choices(b.queueDefs),
				},
			},
		},
		{
			Name:        "daily",
			Description: "Claim your daily reward",
		},
		{
			Name:        "mmr",
			Description: "Check your points",
		},
		{
			Name:        "history",
			Description: "Show your recent point changes",
		},
		{
			Name:        "top",
			Description: "Show the top point holders",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        leaderboard.ByOption,
					Description: "Rank by balance or daily streak",
					Required:    false,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Balance", Value: leaderboard.ByBalance},
						{Name: "Streak", Value: leaderboard.ByStreak},
					},
				},
			},
		},
		{
			Name:        "trivia",
			Description: "50% match trivia, 50% hero Over/Under",
		},
		{
			Name:        "role",
			Description: "Join the queue role",
		},
	}
}
