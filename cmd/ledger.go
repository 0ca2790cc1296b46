package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"dotabot/config"
	"dotabot/database"
	"dotabot/infrastructure/csvledger"
	"dotabot/repository"
	"dotabot/service"

	log "github.com/sirupsen/logrus"
)

// ImportLedger loads a ledger CSV into Postgres in one transaction.
// legacyGuildID is required for single-guild files in the old layout.
func ImportLedger(ctx context.Context, path string, legacyGuildID int64) error {
	cfg, err := config.LoadForMaintenance()
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	n, err := importLedger(ctx, f, csvledger.ReadOptions{
		LegacyGuildID: legacyGuildID,
		Location:      cfg.Location,
	}, repository.NewLedgerSnapshotRepository(db))
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"path":    path,
		"records": n,
	}).Info("Ledger imported")
	return nil
}

// ExportLedger writes the Postgres ledger to path in the canonical CSV layout
func ExportLedger(ctx context.Context, path string) (err error) {
	cfg, err := config.LoadForMaintenance()
	if err != nil {
		return err
	}

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	n, err := exportLedger(ctx, f, repository.NewLedgerSnapshotRepository(db))
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"path":    path,
		"records": n,
	}).Info("Ledger exported")
	return nil
}

func importLedger(ctx context.Context, r io.Reader, opts csvledger.ReadOptions, dst service.LedgerSnapshotter) (int, error) {
	records, err := csvledger.ReadRecords(r, opts)
	if err != nil {
		return 0, err
	}
	if err := dst.Restore(ctx, records); err != nil {
		return 0, fmt.Errorf("failed to restore ledger: %w", err)
	}
	return len(records), nil
}

func exportLedger(ctx context.Context, w io.Writer, src service.LedgerSnapshotter) (int, error) {
	records, err := src.Snapshot(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read ledger: %w", err)
	}
	if err := csvledger.WriteRecords(w, records); err != nil {
		return 0, err
	}
	return len(records), nil
}
