package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"dotabot/cmd"
	"dotabot/config"
	"dotabot/database"

	log "github.com/sirupsen/logrus"
)

func main() {
	// Check for maintenance subcommands
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			if err := handleMigrationCommand(os.Args[2:]); err != nil {
				log.Fatal("Migration error: ", err)
			}
			return
		case "ledger":
			if err := handleLedgerCommand(os.Args[2:]); err != nil {
				log.Fatal("Ledger error: ", err)
			}
			return
		}
	}

	// Normal bot operation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	// Run the application
	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error: ", err)
	}
}

func handleMigrationCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: dotabot migrate [up|down|status] [steps]")
	}

	cfg, err := config.LoadForMaintenance()
	if err != nil {
		return err
	}
	url := cfg.GetDatabaseURL()

	switch args[0] {
	case "up":
		return database.MigrateUp(url)
	case "down":
		steps := 1
		if len(args) > 1 {
			steps, err = strconv.Atoi(args[1])
			if err != nil || steps <= 0 {
				return fmt.Errorf("invalid step count %q", args[1])
			}
		}
		return database.MigrateDown(url, steps)
	case "status":
		return database.MigrateStatus(url)
	default:
		return fmt.Errorf("unknown migration command: %s", args[0])
	}
}

func handleLedgerCommand(args []string) error {
	const usage = "usage: dotabot ledger [import|export] <file.csv> [--guild id]"
	if len(args) < 2 {
		return errors.New(usage)
	}

	flags := flag.NewFlagSet("ledger "+args[0], flag.ContinueOnError)
	guildID := flags.Int64("guild", 0, "guild ID for files in the legacy single-guild layout")
	if err := flags.Parse(args[2:]); err != nil {
		return err
	}

	ctx := context.Background()
	switch args[0] {
	case "import":
		return cmd.ImportLedger(ctx, args[1], *guildID)
	case "export":
		return cmd.ExportLedger(ctx, args[1])
	default:
		return fmt.Errorf("unknown ledger command: %s\n%s", args[0], usage)
	}
}
