package repository

import (
	"context"
	"errors"
	"fmt"

	"dotabot/database"
	"dotabot/models"

	"github.com/jackc/pgx/v5"
)

// GuildSettingsRepository implements service.GuildSettingsRepository
type GuildSettingsRepository struct {
	q Queryable
}

// NewGuildSettingsRepository creates a new guild settings repository
func NewGuildSettingsRepository(db *database.DB) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: db.Pool}
}

func newGuildSettingsRepositoryWithTx(q Queryable) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: q}
}

// GetOrCreateGuildSettings retrieves guild settings or creates default ones if not found
func (r *GuildSettingsRepository) GetOrCreateGuildSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	var settings models.GuildSettings
	err := r.q.QueryRow(ctx,
		`SELECT guild_id, queue_role_id FROM guild_settings WHERE guild_id = $1`,
		guildID,
	).Scan(&settings.GuildID, &settings.QueueRoleID)
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to get guild settings for guild %d: %w", guildID, err)
	}

	insertQuery := `
		INSERT INTO guild_settings (guild_id, queue_role_id)
		VALUES ($1, NULL)
		ON CONFLICT (guild_id) DO UPDATE SET guild_id = EXCLUDED.guild_id
		RETURNING guild_id, queue_role_id
	`
	if err := r.q.QueryRow(ctx, insertQuery, guildID).Scan(&settings.GuildID, &settings.QueueRoleID); err != nil {
		return nil, fmt.Errorf("failed to create guild settings for guild %d: %w", guildID, err)
	}
	return &settings, nil
}

// UpdateGuildSettings updates guild settings
func (r *GuildSettingsRepository) UpdateGuildSettings(ctx context.Context, settings *models.GuildSettings) error {
	result, err := r.q.Exec(ctx,
		`UPDATE guild_settings SET queue_role_id = $2, updated_at = NOW() WHERE guild_id = $1`,
		settings.GuildID,
		settings.QueueRoleID,
	)
	if err != nil {
		return fmt.Errorf("failed to update guild settings for guild %d: %w", settings.GuildID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("guild settings not found for guild %d", settings.GuildID)
	}
	return nil
}
