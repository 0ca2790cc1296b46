package models

// Session is the reaction-count state for one trigger emoji on one message
type Session struct {
	GuildID   int64
	ChannelID string
	MessageID string
	Emoji     string
	Threshold int
	Label     string
	Fired     bool
}

// FireEvent is emitted once when a session's reaction count reaches its threshold
type FireEvent struct {
	GuildID   int64
	ChannelID string
	MessageID string
	Emoji     string
	Label     string
	Count     int
}

// ReactionEvent is a reaction add or remove reported by the messaging platform
type ReactionEvent struct {
	GuildID   int64
	ChannelID string
	MessageID string
	Emoji     string
	UserID    int64
	Added     bool
	Count     int
}
