package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dotabot/database"
	"dotabot/models"

	"github.com/jackc/pgx/v5"
)

const ledgerColumns = `id, guild_id, discord_id, balance, last_claim_date, streak, created_at, updated_at`

// LedgerRepository implements service.LedgerRepository for one guild
type LedgerRepository struct {
	q       Queryable
	guildID int64
}

// NewLedgerRepository creates a pool-backed repository scoped to guildID
func NewLedgerRepository(db *database.DB, guildID int64) *LedgerRepository {
	return &LedgerRepository{q: db.Pool, guildID: guildID}
}

func newLedgerRepository(q Queryable, guildID int64) *LedgerRepository {
	return &LedgerRepository{q: q, guildID: guildID}
}

// GetOrCreate returns the user's record, inserting the default row on miss
func (r *LedgerRepository) GetOrCreate(ctx context.Context, userID int64) (*models.LedgerRecord, error) {
	if err := r.ensure(ctx, userID); err != nil {
		return nil, err
	}
	return r.get(ctx, userID, false)
}

// GetForUpdate returns the user's record with a row lock held until the transaction ends
func (r *LedgerRepository) GetForUpdate(ctx context.Context, userID int64) (*models.LedgerRecord, error) {
	if err := r.ensure(ctx, userID); err != nil {
		return nil, err
	}
	return r.get(ctx, userID, true)
}

func (r *LedgerRepository) ensure(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO ledger_records (guild_id, discord_id)
		VALUES ($1, $2)
		ON CONFLICT (guild_id, discord_id) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, query, r.guildID, userID); err != nil {
		return fmt.Errorf("failed to create ledger record for user %d: %w", userID, err)
	}
	return nil
}

func (r *LedgerRepository) get(ctx context.Context, userID int64, forUpdate bool) (*models.LedgerRecord, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_records WHERE guild_id = $1 AND discord_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	record, err := scanLedgerRecord(r.q.QueryRow(ctx, query, r.guildID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("ledger record for user %d missing after insert", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger record for user %d: %w", userID, err)
	}
	return record, nil
}

// Save persists balance, last claim date and streak
func (r *LedgerRepository) Save(ctx context.Context, record *models.LedgerRecord) error {
	query := `
		UPDATE ledger_records
		SET balance = $3, last_claim_date = $4, streak = $5, updated_at = NOW()
		WHERE guild_id = $1 AND discord_id = $2
		RETURNING updated_at
	`
	err := r.q.QueryRow(ctx, query,
		r.guildID,
		record.UserID,
		record.Balance,
		dateParam(record.LastClaimDate),
		record.Streak,
	).Scan(&record.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("ledger record for user %d not found", record.UserID)
	}
	if err != nil {
		return fmt.Errorf("failed to save ledger record for user %d: %w", record.UserID, err)
	}
	return nil
}

// Upsert inserts or overwrites the record with the same key
func (r *LedgerRepository) Upsert(ctx context.Context, record *models.LedgerRecord) error {
	query := `
		INSERT INTO ledger_records (guild_id, discord_id, balance, last_claim_date, streak)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (guild_id, discord_id) DO UPDATE
		SET balance = EXCLUDED.balance,
		    last_claim_date = EXCLUDED.last_claim_date,
		    streak = EXCLUDED.streak,
		    updated_at = NOW()
	`
	if _, err := r.q.Exec(ctx, query,
		r.guildID,
		record.UserID,
		record.Balance,
		dateParam(record.LastClaimDate),
		record.Streak,
	); err != nil {
		return fmt.Errorf("failed to upsert ledger record for user %d: %w", record.UserID, err)
	}
	return nil
}

// TopByBalance returns up to limit records by balance descending, ties by insertion order
func (r *LedgerRepository) TopByBalance(ctx context.Context, limit int) ([]*models.LedgerRecord, error) {
	return r.list(ctx, `ORDER BY balance DESC, id ASC LIMIT $2`, limit)
}

// TopByStreak returns up to limit records by streak descending, ties by insertion order
func (r *LedgerRepository) TopByStreak(ctx context.Context, limit int) ([]*models.LedgerRecord, error) {
	return r.list(ctx, `ORDER BY streak DESC, id ASC LIMIT $2`, limit)
}

// All returns every record of the guild in insertion order
func (r *LedgerRepository) All(ctx context.Context) ([]*models.LedgerRecord, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_records WHERE guild_id = $1 ORDER BY id ASC`
	rows, err := r.q.Query(ctx, query, r.guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger records: %w", err)
	}
	return collectLedgerRecords(rows)
}

func (r *LedgerRepository) list(ctx context.Context, orderAndLimit string, limit int) ([]*models.LedgerRecord, error) {
	if limit <= 0 {
		return []*models.LedgerRecord{}, nil
	}
	query := `SELECT ` + ledgerColumns + ` FROM ledger_records WHERE guild_id = $1 ` + orderAndLimit
	rows, err := r.q.Query(ctx, query, r.guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top ledger records: %w", err)
	}
	return collectLedgerRecords(rows)
}

// AllGuilds returns every ledger record across guilds, ordered by guild then insertion
func AllGuilds(ctx context.Context, q Queryable) ([]*models.LedgerRecord, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_records ORDER BY guild_id ASC, id ASC`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger records: %w", err)
	}
	return collectLedgerRecords(rows)
}

func collectLedgerRecords(rows pgx.Rows) ([]*models.LedgerRecord, error) {
	defer rows.Close()

	records := make([]*models.LedgerRecord, 0)
	for rows.Next() {
		record, err := scanLedgerRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger records: %w", err)
	}
	return records, nil
}

func scanLedgerRecord(row pgx.Row) (*models.LedgerRecord, error) {
	var record models.LedgerRecord
	var lastClaim *time.Time
	if err := row.Scan(
		&record.ID,
		&record.GuildID,
		&record.UserID,
		&record.Balance,
		&lastClaim,
		&record.Streak,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if lastClaim != nil {
		record.LastClaimDate = models.DateOf(lastClaim.UTC())
	}
	return &record, nil
}

// dateParam maps the zero date to NULL
func dateParam(d models.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.Time()
}
