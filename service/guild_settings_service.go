package service

import (
	"context"
	"fmt"

	"dotabot/models"

	log "github.com/sirupsen/logrus"
)

// QueueRoleName is the role created by /role when the guild has none stored
const QueueRoleName = "queue"

type guildSettingsService struct {
	uowFactory UnitOfWorkFactory
}

// NewGuildSettingsService creates a new guild settings service
func NewGuildSettingsService(uowFactory UnitOfWorkFactory) GuildSettingsService {
	return &guildSettingsService{
		uowFactory: uowFactory,
	}
}

// GetOrCreateSettings retrieves guild settings or creates default ones if not found
func (s *guildSettingsService) GetOrCreateSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings, err := uow.GuildSettingsRepository().GetOrCreateGuildSettings(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create guild settings: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return settings, nil
}

// UpdateQueueRole stores the role pinged by queues. A nil roleID clears it.
func (s *guildSettingsService) UpdateQueueRole(ctx context.Context, guildID int64, roleID *int64) error {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings, err := uow.GuildSettingsRepository().GetOrCreateGuildSettings(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to get guild settings: %w", err)
	}

	settings.QueueRoleID = roleID
	if err := uow.GuildSettingsRepository().UpdateGuildSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to update guild settings: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// QueueRoleService implements /role: it finds or creates the guild's queue role
// and assigns it to a member
type QueueRoleService struct {
	settings GuildSettingsService
	roles    RoleManager
}

func NewQueueRoleService(settings GuildSettingsService, roles RoleManager) *QueueRoleService {
	return &QueueRoleService{settings: settings, roles: roles}
}

// JoinQueueRole assigns the queue role to userID, creating and storing a
// mentionable "queue" role when none exists. It returns the role ID.
func (s *QueueRoleService) JoinQueueRole(ctx context.Context, guildID, userID int64) (int64, error) {
	settings, err := s.settings.GetOrCreateSettings(ctx, guildID)
	if err != nil {
		return 0, err
	}

	var roleID int64
	if settings.HasQueueRole() {
		exists, err := s.roles.RoleExists(ctx, guildID, *settings.QueueRoleID)
		if err != nil {
			return 0, NewTransportError("look up queue role", err)
		}
		if exists {
			roleID = *settings.QueueRoleID
		}
	}

	if roleID == 0 {
		roleID, err = s.roles.CreateRole(ctx, guildID, QueueRoleName, true)
		if err != nil {
			return 0, NewTransportError("create queue role", err)
		}
		if err := s.settings.UpdateQueueRole(ctx, guildID, &roleID); err != nil {
			return 0, err
		}
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"role_id":  roleID,
		}).Info("Created queue role")
	}

	if err := s.roles.AssignRole(ctx, guildID, userID, roleID); err != nil {
		return 0, NewTransportError("assign queue role", err)
	}
	return roleID, nil
}
