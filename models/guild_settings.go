package models

// GuildSettings represents per-guild configuration settings
type GuildSettings struct {
	GuildID     int64  `db:"guild_id"`
	QueueRoleID *int64 `db:"queue_role_id"` // Nullable - role pinged when a queue starts
}

// HasQueueRole reports whether a queue role has been stored for the guild
func (s *GuildSettings) HasQueueRole() bool {
	return s.QueueRoleID != nil && *s.QueueRoleID != 0
}
