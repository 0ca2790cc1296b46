package bot

import (
	"context"
	"fmt"

	"dotabot/bot/common"
	"dotabot/models"
	"dotabot/service"

	"github.com/bwmarrin/discordgo"
)

// reactorPageSize is the largest page the reactions endpoint serves
const reactorPageSize = 100

// Platform adapts a discordgo session to the services' transport interfaces
type Platform struct {
	session *discordgo.Session
}

var (
	_ service.MessagingPlatform = (*Platform)(nil)
	_ service.RoleManager       = (*Platform)(nil)
)

// NewPlatform wraps a discordgo session
func NewPlatform(session *discordgo.Session) *Platform {
	return &Platform{session: session}
}

// PostMessage sends an announcement, as a reply when ReplyToMessageID is set
func (p *Platform) PostMessage(ctx context.Context, channelID string, msg *models.Announcement) (string, error) {
	sent, err := p.session.ChannelMessageSendComplex(channelID, toMessageSend(channelID, msg), discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return sent.ID, nil
}

// AddReaction reacts to a message as the bot
func (p *Platform) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	return p.session.MessageReactionAdd(channelID, messageID, models.NormalizeEmoji(emoji), discordgo.WithContext(ctx))
}

// ListReactors pages through every user who reacted with emoji
func (p *Platform) ListReactors(ctx context.Context, channelID, messageID, emoji string) ([]models.Reactor, error) {
	apiEmoji := models.NormalizeEmoji(emoji)

	var (
		reactors []models.Reactor
		after    string
	)
	for {
		users, err := p.session.MessageReactions(channelID, messageID, apiEmoji, reactorPageSize, "", after, discordgo.WithContext(ctx))
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			id, err := common.ParseID(u.ID)
			if err != nil {
				return nil, fmt.Errorf("invalid reactor id %q: %w", u.ID, err)
			}
			reactors = append(reactors, models.Reactor{UserID: id, Username: u.Username, Bot: u.Bot})
		}
		if len(users) < reactorPageSize {
			return reactors, nil
		}
		after = users[len(users)-1].ID
	}
}

// DisplayName returns the member's server nickname, global name or username
func (p *Platform) DisplayName(ctx context.Context, guildID, userID int64) (string, error) {
	member, err := p.session.GuildMember(common.FormatID(guildID), common.FormatID(userID), discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	if member.Nick != "" {
		return member.Nick, nil
	}
	if member.User == nil {
		return "User " + common.FormatID(userID), nil
	}
	return common.UserDisplayName(member.User), nil
}

// ReactionCount returns how many users currently carry emoji on the message,
// the bot included
func (p *Platform) ReactionCount(ctx context.Context, channelID, messageID, emoji string) (int, error) {
	msg, err := p.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return 0, err
	}
	return countReactions(msg, models.NormalizeEmoji(emoji)), nil
}

// RoleExists reports whether roleID is still defined in the guild
func (p *Platform) RoleExists(ctx context.Context, guildID, roleID int64) (bool, error) {
	roles, err := p.session.GuildRoles(common.FormatID(guildID), discordgo.WithContext(ctx))
	if err != nil {
		return false, err
	}
	want := common.FormatID(roleID)
	for _, r := range roles {
		if r.ID == want {
			return true, nil
		}
	}
	return false, nil
}

// CreateRole creates a guild role and returns its ID
func (p *Platform) CreateRole(ctx context.Context, guildID int64, name string, mentionable bool) (int64, error) {
	role, err := p.session.GuildRoleCreate(common.FormatID(guildID), &discordgo.RoleParams{
		Name:        name,
		Mentionable: &mentionable,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return 0, err
	}
	return common.ParseID(role.ID)
}

// AssignRole adds roleID to the member
func (p *Platform) AssignRole(ctx context.Context, guildID, userID, roleID int64) error {
	return p.session.GuildMemberRoleAdd(
		common.FormatID(guildID), common.FormatID(userID), common.FormatID(roleID),
		discordgo.WithContext(ctx),
	)
}

func toMessageSend(channelID string, msg *models.Announcement) *discordgo.MessageSend {
	send := &discordgo.MessageSend{Content: msg.Content}

	if msg.HasEmbed() {
		embed := &discordgo.MessageEmbed{
			Title:       msg.Title,
			Description: msg.Description,
			Color:       msg.Color,
		}
		for _, f := range msg.Fields {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:   f.Name,
				Value:  f.Value,
				Inline: f.Inline,
			})
		}
		if msg.ImageURL != "" {
			embed.Image = &discordgo.MessageEmbedImage{URL: msg.ImageURL}
		}
		if msg.Footer != "" {
			embed.Footer = &discordgo.MessageEmbedFooter{Text: msg.Footer}
		}
		send.Embeds = []*discordgo.MessageEmbed{embed}
	}

	if msg.ReplyToMessageID != "" {
		send.Reference = &discordgo.MessageReference{
			MessageID: msg.ReplyToMessageID,
			ChannelID: channelID,
		}
	}
	return send
}

func countReactions(msg *discordgo.Message, emoji string) int {
	for _, r := range msg.Reactions {
		if r.Emoji != nil && r.Emoji.APIName() == emoji {
			return r.Count
		}
	}
	return 0
}
