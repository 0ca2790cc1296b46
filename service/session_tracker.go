package service

import (
	"fmt"
	"sync"

	"dotabot/events"
	"dotabot/models"

	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"
)

// DefaultSessionCacheSize bounds the number of sessions tracked at once
const DefaultSessionCacheSize = 1024

type sessionKey struct {
	messageID string
	emoji     string
}

type trackedSession struct {
	mu      sync.Mutex
	session models.Session
}

// sessionTracker fires a one-time event when a message's reaction count for a
// trigger emoji equals the session threshold. Sessions are keyed by message and
// emoji; the least recently touched sessions are evicted past the cache size.
type sessionTracker struct {
	sessions  *lru.Cache[sessionKey, *trackedSession]
	publisher EventPublisher
}

// NewSessionTracker creates a tracker holding at most size sessions.
// publisher may be nil.
func NewSessionTracker(size int, publisher EventPublisher) (SessionTracker, error) {
	if size <= 0 {
		size = DefaultSessionCacheSize
	}
	cache, err := lru.New[sessionKey, *trackedSession](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	return &sessionTracker{sessions: cache, publisher: publisher}, nil
}

// StartSession registers a session. Re-registering the same message and emoji
// replaces the previous session, including its fired flag.
func (t *sessionTracker) StartSession(session models.Session) error {
	if session.MessageID == "" {
		return fmt.Errorf("session message ID is required")
	}
	if session.Threshold <= 0 {
		return fmt.Errorf("session threshold must be positive, got %d", session.Threshold)
	}
	session.Emoji = models.NormalizeEmoji(session.Emoji)
	session.Fired = false

	key := sessionKey{messageID: session.MessageID, emoji: session.Emoji}
	if evicted := t.sessions.Add(key, &trackedSession{session: session}); evicted {
		log.Debug("Session cache full, evicted least recently used session")
	}

	log.WithFields(log.Fields{
		"guild_id":   session.GuildID,
		"message_id": session.MessageID,
		"emoji":      session.Emoji,
		"threshold":  session.Threshold,
	}).Debug("Session started")
	return nil
}

// OnReactionChanged reports a new reaction count. It returns a fire event only
// for the update whose count equals the threshold, and only once per session.
func (t *sessionTracker) OnReactionChanged(messageID, emoji string, newCount int) (*models.FireEvent, bool) {
	ts, ok := t.sessions.Get(sessionKey{messageID: messageID, emoji: models.NormalizeEmoji(emoji)})
	if !ok {
		return nil, false
	}

	ts.mu.Lock()
	if ts.session.Fired || newCount != ts.session.Threshold {
		ts.mu.Unlock()
		return nil, false
	}
	ts.session.Fired = true
	s := ts.session
	ts.mu.Unlock()

	fire := &models.FireEvent{
		GuildID:   s.GuildID,
		ChannelID: s.ChannelID,
		MessageID: s.MessageID,
		Emoji:     s.Emoji,
		Label:     s.Label,
		Count:     newCount,
	}

	log.WithFields(log.Fields{
		"guild_id":   s.GuildID,
		"message_id": s.MessageID,
		"emoji":      s.Emoji,
		"count":      newCount,
	}).Info("Session threshold reached")

	if t.publisher != nil {
		t.publisher.Publish(events.SessionFiredEvent{
			GuildID:   s.GuildID,
			MessageID: s.MessageID,
			Emoji:     s.Emoji,
			Label:     s.Label,
			Count:     newCount,
		})
	}
	return fire, true
}

// IsTracked reports whether a session exists for the message and emoji
func (t *sessionTracker) IsTracked(messageID, emoji string) bool {
	return t.sessions.Contains(sessionKey{messageID: messageID, emoji: models.NormalizeEmoji(emoji)})
}
