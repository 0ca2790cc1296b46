package queue

import (
	"context"

	"dotabot/bot/common"
	"dotabot/models"
	"dotabot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// KindOption is the /queue option naming the queue type
const KindOption = "kind"

func (f *Feature) handleQueue(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	kind := models.QueueKind(optionString(i.ApplicationCommandData().Options, KindOption))
	if _, ok := f.queues.Queue(kind); !ok {
		common.HandleError(s, i, common.NewUserError("Unknown queue type.", "unknown queue kind "+string(kind)), false)
		return
	}

	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Error deferring queue response: %v", err)
		return
	}

	ctx := context.Background()
	messageID, err := f.queues.Start(ctx, service.QueueRequest{
		GuildID:   guildID,
		ChannelID: i.ChannelID,
		UserID:    userID,
		Kind:      kind,
	})
	if err != nil {
		common.HandleError(s, i, err, true)
		return
	}

	if _, err := common.FollowUpWithMessage(s, i, "Queue started.", true); err != nil {
		log.WithFields(log.Fields{
			"guild_id":   guildID,
			"message_id": messageID,
			"error":      err,
		}).Error("Error sending queue confirmation")
	}
}

func optionString(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

// Choices lists the queue types offered by the /queue command
func Choices(queues []models.QueueDefinition) []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(queues))
	for _, q := range queues {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  q.Title,
			Value: string(q.Kind),
		})
	}
	return choices
}
