package cmd

import (
	"context"
	"fmt"
	"time"

	"dotabot/bot"
	"dotabot/config"
	"dotabot/database"
	"dotabot/events"
	"dotabot/infrastructure/csvledger"
	"dotabot/infrastructure/observability"
	"dotabot/infrastructure/opendota"
	"dotabot/models"
	"dotabot/repository"
	"dotabot/service"

	log "github.com/sirupsen/logrus"
)

// ledgerBackend is the storage selected by LEDGER_BACKEND
type ledgerBackend struct {
	ledger   service.LedgerStore
	history  service.HistoryReader
	settings service.GuildSettingsService
	close    func()
}

// Run initializes and starts the application
func Run(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.ConfigureLogging(cfg); err != nil {
		return err
	}
	log.WithField("environment", cfg.Environment).Info("Starting dotabot...")

	// Initialize metrics
	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	return serve(ctx, cfg, metrics)
}

// serve wires the services and blocks until ctx is done. metrics is shut
// down on every return path.
func serve(ctx context.Context, cfg *config.Config, metrics *observability.MetricsProvider) error {
	defer shutdownMetrics(metrics)

	// Initialize event bus
	eventBus := events.NewBus()
	metrics.Subscribe(eventBus)

	// Initialize ledger storage
	backend, err := openLedgerBackend(ctx, cfg, eventBus)
	if err != nil {
		return err
	}
	defer backend.close()
	ledger := service.NewInstrumentedLedgerStore(backend.ledger, metrics)

	// Load trivia content
	provider := opendota.NewProvider(
		opendota.NewClient(cfg.OpenDotaBaseURL, cfg.OpenDotaRatePerMinute),
		cfg.ContentCacheDir,
		cfg.HeroImageBaseURL,
	)
	if cfg.EnableTrivia {
		if err := provider.Init(ctx); err != nil {
			return fmt.Errorf("failed to load hero stats: %w", err)
		}
	}

	// Initialize services
	queueDefs := models.DefaultQueues(cfg.ImmortalEmoji)
	emojis, err := models.NewEmojiTable(queueDefs)
	if err != nil {
		return fmt.Errorf("invalid emoji table: %w", err)
	}
	tracker, err := service.NewSessionTracker(cfg.SessionCacheSize, eventBus)
	if err != nil {
		return fmt.Errorf("failed to create session tracker: %w", err)
	}

	dg, err := bot.NewSession(cfg.DiscordToken)
	if err != nil {
		return err
	}
	platform := bot.NewPlatform(dg)

	calendar := service.NewCalendar(cfg.Location, time.Now)
	engine := service.NewWagerEngine(platform, ledger, emojis, eventBus, cfg.TriviaStake, cfg.TriviaTimeout)
	services := bot.Services{
		Ledger:        ledger,
		History:       backend.history,
		Daily:         service.NewDailyService(ledger, calendar, cfg.DailyReward, cfg.EnableStreaks),
		GuildSettings: backend.settings,
		Tracker:       tracker,
		Emojis:        emojis,
		Wagers:        engine,
		Queues: service.NewQueueService(platform, tracker, backend.settings, emojis, queueDefs, service.QueueRoles{
			Default:  cfg.DefaultRoleID,
			Immortal: cfg.ImmortalRoleID,
			Deadlock: cfg.DeadlockRoleID,
		}),
		QueueRoles: service.NewQueueRoleService(backend.settings, platform),
		Trivia:     service.NewTriviaService(engine, provider, platform, emojis, cfg.EnableTrivia),
		QueueDefs:  queueDefs,
	}

	// Initialize Discord bot
	discordBot, err := bot.New(bot.Config{
		Token:           cfg.DiscordToken,
		GuildID:         cfg.GuildID,
		DailyReward:     cfg.DailyReward,
		LeaderboardSize: cfg.LeaderboardSize,
	}, dg, services)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.WithField("ledger_backend", cfg.LedgerBackend).Info("Bot is running")

	// Wait for context cancellation
	<-ctx.Done()
	log.Info("Shutting down bot...")

	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}

	return nil
}

func shutdownMetrics(metrics *observability.MetricsProvider) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metrics.Shutdown(ctx); err != nil {
		log.Errorf("Error shutting down metrics: %v", err)
	}
}

func openLedgerBackend(ctx context.Context, cfg *config.Config, bus *events.Bus) (*ledgerBackend, error) {
	if cfg.LedgerBackend == config.LedgerBackendCSV {
		store, err := csvledger.Open(cfg.LedgerCSVPath, bus)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV ledger: %w", err)
		}
		roles, err := csvledger.OpenRoleFile(cfg.RoleCSVPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open role file: %w", err)
		}
		log.WithField("path", store.Path()).Info("Using CSV ledger")
		return &ledgerBackend{ledger: store, settings: roles, close: func() {}}, nil
	}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("Database connection established successfully")

	uowFactory := repository.NewUnitOfWorkFactory(db, bus)
	return &ledgerBackend{
		ledger:   service.NewLedgerService(uowFactory),
		history:  service.NewHistoryService(uowFactory),
		settings: service.NewGuildSettingsService(uowFactory),
		close: func() {
			log.Info("Closing database connection...")
			db.Close()
		},
	}, nil
}
