package service

import (
	"context"
	"fmt"
	"strings"

	"dotabot/models"

	log "github.com/sirupsen/logrus"
)

const (
	queueColor   = 0x9B59B6
	summaryColor = 0x1ABC9C
)

// QueueRoles are the configured role IDs pinged when a queue starts. Zero means unset.
type QueueRoles struct {
	Default  int64
	Immortal int64
	Deadlock int64
}

// QueueRequest starts a queue in a channel
type QueueRequest struct {
	GuildID   int64
	ChannelID string
	UserID    int64
	Kind      models.QueueKind
}

// QueueService posts group-activity queues and their participant summaries
type QueueService struct {
	platform MessagingPlatform
	tracker  SessionTracker
	settings GuildSettingsService // optional
	emojis   *models.EmojiTable
	queues   map[models.QueueKind]models.QueueDefinition
	roles    QueueRoles
}

// NewQueueService creates a queue service. Session thresholds and labels come
// from emojis. settings may be nil, in which case only the configured roles are pinged.
func NewQueueService(platform MessagingPlatform, tracker SessionTracker, settings GuildSettingsService, emojis *models.EmojiTable, queues []models.QueueDefinition, roles QueueRoles) *QueueService {
	byKind := make(map[models.QueueKind]models.QueueDefinition, len(queues))
	for _, q := range queues {
		byKind[q.Kind] = q
	}
	return &QueueService{
		platform: platform,
		tracker:  tracker,
		settings: settings,
		emojis:   emojis,
		queues:   byKind,
		roles:    roles,
	}
}

// Queue returns the definition for kind
func (s *QueueService) Queue(kind models.QueueKind) (models.QueueDefinition, bool) {
	q, ok := s.queues[kind]
	return q, ok
}

// Start posts the queue message, adds the join and cancel reactions, tracks the
// join emoji and pings the queue role. It returns the queue message ID.
func (s *QueueService) Start(ctx context.Context, req QueueRequest) (string, error) {
	def, ok := s.queues[req.Kind]
	if !ok {
		return "", fmt.Errorf("unknown queue type %q", req.Kind)
	}
	binding, ok := s.emojis.Session(def.Emoji)
	if !ok {
		return "", fmt.Errorf("queue type %q has no session emoji", req.Kind)
	}

	name, err := s.platform.DisplayName(ctx, req.GuildID, req.UserID)
	if err != nil {
		return "", NewTransportError("get display name", err)
	}

	messageID, err := s.platform.PostMessage(ctx, req.ChannelID, &models.Announcement{
		Title:       def.StartedBy(name),
		Description: "React below to join",
		Color:       queueColor,
	})
	if err != nil {
		return "", NewTransportError("post queue message", err)
	}

	// track before reacting so no count update is missed
	if err := s.tracker.StartSession(models.Session{
		GuildID:   req.GuildID,
		ChannelID: req.ChannelID,
		MessageID: messageID,
		Emoji:     binding.Emoji,
		Threshold: binding.Threshold,
		Label:     binding.Label,
	}); err != nil {
		return messageID, fmt.Errorf("failed to track queue: %w", err)
	}

	for _, emoji := range []string{def.Emoji, models.CancelEmoji} {
		if err := s.platform.AddReaction(ctx, req.ChannelID, messageID, emoji); err != nil {
			return messageID, NewTransportError("add queue reaction", err)
		}
	}

	if roleID := s.roleFor(ctx, req.GuildID, def); roleID != 0 {
		if _, err := s.platform.PostMessage(ctx, req.ChannelID, &models.Announcement{
			Content: fmt.Sprintf("<@&%d>", roleID),
		}); err != nil {
			return messageID, NewTransportError("post queue role mention", err)
		}
	}

	log.WithFields(log.Fields{
		"guild_id":   req.GuildID,
		"user_id":    req.UserID,
		"message_id": messageID,
		"queue":      def.Kind,
	}).Info("Queue started")
	return messageID, nil
}

// roleFor picks the queue-specific configured role, then the default role,
// then the guild's stored queue role
func (s *QueueService) roleFor(ctx context.Context, guildID int64, def models.QueueDefinition) int64 {
	switch {
	case def.Role == models.RoleSlotImmortal && s.roles.Immortal != 0:
		return s.roles.Immortal
	case def.Role == models.RoleSlotDeadlock && s.roles.Deadlock != 0:
		return s.roles.Deadlock
	case s.roles.Default != 0:
		return s.roles.Default
	}

	if s.settings == nil {
		return 0
	}
	settings, err := s.settings.GetOrCreateSettings(ctx, guildID)
	if err != nil {
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"error":    err,
		}).Warn("Failed to load guild settings for queue role")
		return 0
	}
	if !settings.HasQueueRole() {
		return 0
	}
	return *settings.QueueRoleID
}

// PublishSummary replies to a fired queue message with its human participants
func (s *QueueService) PublishSummary(ctx context.Context, fire *models.FireEvent) error {
	reactors, err := s.platform.ListReactors(ctx, fire.ChannelID, fire.MessageID, fire.Emoji)
	if err != nil {
		return NewTransportError("list queue reactors", err)
	}

	participants := make([]string, 0, len(reactors))
	for _, r := range reactors {
		if !r.Bot {
			participants = append(participants, r.Username)
		}
	}
	value := "None"
	if len(participants) > 0 {
		value = strings.Join(participants, ", ")
	}

	_, err = s.platform.PostMessage(ctx, fire.ChannelID, &models.Announcement{
		Title:            fire.Label,
		Color:            summaryColor,
		Fields:           []models.AnnouncementField{{Name: "Participants:", Value: value, Inline: true}},
		ReplyToMessageID: fire.MessageID,
	})
	if err != nil {
		return NewTransportError("post queue summary", err)
	}

	log.WithFields(log.Fields{
		"guild_id":     fire.GuildID,
		"message_id":   fire.MessageID,
		"participants": len(participants),
	}).Info("Queue summary published")
	return nil
}
