package settings

import (
	"context"
	"fmt"

	"dotabot/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleRole assigns the guild's queue role to the caller, creating it on first use
func (f *Feature) handleRole(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, userID, err := common.InteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	roleID, err := f.queueRoles.JoinQueueRole(context.Background(), guildID, userID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if err := common.RespondWithMessage(s, i, AssignedMessage(userID, roleID), false); err != nil {
		log.Errorf("Failed to respond to interaction: %v", err)
	}
}

// AssignedMessage confirms a role assignment
func AssignedMessage(userID, roleID int64) string {
	return fmt.Sprintf("%s was assigned to %s.", common.UserMention(userID), common.RoleMention(roleID))
}
