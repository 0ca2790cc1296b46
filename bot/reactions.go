package bot

import (
	"context"

	"dotabot/bot/common"
	"dotabot/models"
	"dotabot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// WagerInput receives reaction adds for waiting wagers
type WagerInput interface {
	OnReaction(messageID, emoji string, userID int64) bool
}

// SummaryPublisher posts the participant summary of a fired session
type SummaryPublisher interface {
	PublishSummary(ctx context.Context, fire *models.FireEvent) error
}

// ReactionCounter reads the current reaction count of a message
type ReactionCounter interface {
	ReactionCount(ctx context.Context, channelID, messageID, emoji string) (int, error)
}

// ReactionRouter feeds reaction events to the wager engine and session tracker
type ReactionRouter struct {
	emojis    *models.EmojiTable
	tracker   service.SessionTracker
	wagers    WagerInput
	summaries SummaryPublisher
	counter   ReactionCounter
}

// NewReactionRouter creates a router
func NewReactionRouter(emojis *models.EmojiTable, tracker service.SessionTracker, wagers WagerInput, summaries SummaryPublisher, counter ReactionCounter) *ReactionRouter {
	return &ReactionRouter{
		emojis:    emojis,
		tracker:   tracker,
		wagers:    wagers,
		summaries: summaries,
		counter:   counter,
	}
}

// Route handles one reaction add or remove. Adds are offered to the wager
// engine first. Emoji bound to a session then get the fresh count when the
// message is tracked; every other emoji stops here.
func (r *ReactionRouter) Route(ctx context.Context, ev models.ReactionEvent) {
	emoji := models.NormalizeEmoji(ev.Emoji)

	if ev.Added && r.wagers.OnReaction(ev.MessageID, emoji, ev.UserID) {
		log.WithFields(log.Fields{
			"guild_id":   ev.GuildID,
			"user_id":    ev.UserID,
			"message_id": ev.MessageID,
			"emoji":      emoji,
		}).Debug("Wager pick received")
		return
	}

	binding, ok := r.emojis.Lookup("", emoji)
	if !ok || binding.Kind != models.EmojiKindSession {
		return
	}
	if !r.tracker.IsTracked(ev.MessageID, emoji) {
		return
	}

	count := ev.Count
	if count == 0 {
		var err error
		count, err = r.counter.ReactionCount(ctx, ev.ChannelID, ev.MessageID, emoji)
		if err != nil {
			log.WithFields(log.Fields{
				"guild_id":   ev.GuildID,
				"message_id": ev.MessageID,
				"emoji":      emoji,
				"error":      err,
			}).Warn("Failed to read reaction count")
			return
		}
	}

	fire, ok := r.tracker.OnReactionChanged(ev.MessageID, emoji, count)
	if !ok {
		return
	}
	if err := r.summaries.PublishSummary(ctx, fire); err != nil {
		log.WithFields(log.Fields{
			"guild_id":   fire.GuildID,
			"message_id": fire.MessageID,
			"error":      err,
		}).Error("Failed to publish queue summary")
	}
}

// toReactionEvent converts gateway reaction data. It returns false for
// reactions by bots, the bot itself included, and for reactions outside a guild.
// member is only sent with adds; removes from other bots still pass.
func toReactionEvent(selfID string, r *discordgo.MessageReaction, member *discordgo.Member, added bool) (models.ReactionEvent, bool) {
	if r == nil || r.UserID == selfID || r.GuildID == "" {
		return models.ReactionEvent{}, false
	}
	if member != nil && member.User != nil && member.User.Bot {
		return models.ReactionEvent{}, false
	}
	guildID, err := common.ParseID(r.GuildID)
	if err != nil {
		return models.ReactionEvent{}, false
	}
	userID, err := common.ParseID(r.UserID)
	if err != nil {
		return models.ReactionEvent{}, false
	}
	return models.ReactionEvent{
		GuildID:   guildID,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		Emoji:     r.Emoji.APIName(),
		UserID:    userID,
		Added:     added,
	}, true
}
