package repository

import (
	"context"
	"fmt"

	"dotabot/database"
	"dotabot/models"

	"github.com/jackc/pgx/v5"
)

// LedgerSnapshotRepository reads and restores the ledger across all guilds.
// It implements service.LedgerSnapshotter for the ledger import and export commands.
type LedgerSnapshotRepository struct {
	db *database.DB
}

func NewLedgerSnapshotRepository(db *database.DB) *LedgerSnapshotRepository {
	return &LedgerSnapshotRepository{db: db}
}

// Snapshot returns every record ordered by guild then insertion
func (r *LedgerSnapshotRepository) Snapshot(ctx context.Context) ([]*models.LedgerRecord, error) {
	return AllGuilds(ctx, r.db.Pool)
}

// Restore upserts all records in a single transaction
func (r *LedgerSnapshotRepository) Restore(ctx context.Context, records []*models.LedgerRecord) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for i, record := range records {
			if err := newLedgerRepository(tx, record.GuildID).Upsert(ctx, record); err != nil {
				return fmt.Errorf("record %d: %w", i+1, err)
			}
		}
		return nil
	})
}
