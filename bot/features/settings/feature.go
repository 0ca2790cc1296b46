package settings

import (
	"dotabot/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles guild role settings
type Feature struct {
	queueRoles *service.QueueRoleService
}

// NewFeature creates a new settings feature instance
func NewFeature(queueRoles *service.QueueRoleService) *Feature {
	return &Feature{
		queueRoles: queueRoles,
	}
}

// HandleCommand handles /role
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleRole(s, i)
}
