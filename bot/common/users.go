package common

import (
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// GetDisplayName returns the server-specific display name for a user.
// Falls back to the global name, then the username.
func GetDisplayName(s *discordgo.Session, guildID, userID string) string {
	member, err := s.GuildMember(guildID, userID)
	if err == nil && member != nil {
		if member.Nick != "" {
			return member.Nick
		}
		if member.User != nil {
			return UserDisplayName(member.User)
		}
	}

	user, err := s.User(userID)
	if err == nil && user != nil {
		return UserDisplayName(user)
	}

	return "User " + userID
}

// UserDisplayName prefers the global display name over the username
func UserDisplayName(u *discordgo.User) string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// ParseID converts a Discord snowflake to int64
func ParseID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

// FormatID converts an int64 snowflake to its string form
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// UserMention returns a Discord mention string for a user
func UserMention(userID int64) string {
	return "<@" + FormatID(userID) + ">"
}

// RoleMention returns a Discord mention string for a role
func RoleMention(roleID int64) string {
	return "<@&" + FormatID(roleID) + ">"
}

// InteractionUserID returns the invoking user's id for guild and DM interactions
func InteractionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// InteractionIDs parses the guild and user ids of a guild interaction
func InteractionIDs(i *discordgo.InteractionCreate) (guildID, userID int64, err error) {
	if i.GuildID == "" {
		return 0, 0, NewUserError("This command only works in a server.", "interaction outside a guild")
	}
	guildID, err = ParseID(i.GuildID)
	if err != nil {
		return 0, 0, NewSystemError(err, "invalid guild id")
	}
	userID, err = ParseID(InteractionUserID(i))
	if err != nil {
		return 0, 0, NewSystemError(err, "invalid user id")
	}
	return guildID, userID, nil
}
