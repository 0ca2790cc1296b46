package bot

import (
	"context"
	"fmt"

	"dotabot/bot/common"
	"dotabot/bot/features/balance"
	"dotabot/bot/features/daily"
	"dotabot/bot/features/help"
	"dotabot/bot/features/leaderboard"
	"dotabot/bot/features/queue"
	"dotabot/bot/features/settings"
	"dotabot/bot/features/trivia"
	"dotabot/models"
	"dotabot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token           string
	GuildID         string // commands are registered globally when empty
	DailyReward     int64
	LeaderboardSize int
}

// Services are the domain services the bot routes commands and reactions to
type Services struct {
	Ledger        service.LedgerStore
	History       service.HistoryReader // nil when the backend keeps no history
	Daily         service.DailyService
	GuildSettings service.GuildSettingsService
	Tracker       service.SessionTracker
	Emojis        *models.EmojiTable
	Wagers        *service.WagerEngine
	Queues        *service.QueueService
	QueueRoles    *service.QueueRoleService
	Trivia        *service.TriviaService
	QueueDefs     []models.QueueDefinition
}

// Bot manages the Discord session and all feature modules
type Bot struct {
	config        Config
	session       *discordgo.Session
	guildSettings service.GuildSettingsService
	queueDefs     []models.QueueDefinition
	reactions     *ReactionRouter

	// Feature modules
	help        *help.Feature
	queue       *queue.Feature
	daily       *daily.Feature
	balance     *balance.Feature
	leaderboard *leaderboard.Feature
	trivia      *trivia.Feature
	settings    *settings.Feature
}

// NewSession creates an unopened Discord session with the intents the bot needs
func NewSession(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions
	return dg, nil
}

// New creates the bot, registers its handlers, opens the websocket and
// registers the slash commands
func New(config Config, dg *discordgo.Session, svc Services) (*Bot, error) {
	bot := &Bot{
		config:        config,
		session:       dg,
		guildSettings: svc.GuildSettings,
		queueDefs:     svc.QueueDefs,
		reactions:     NewReactionRouter(svc.Emojis, svc.Tracker, svc.Wagers, svc.Queues, NewPlatform(dg)),
	}

	// Create feature modules
	bot.help = help.New(svc.QueueDefs, config.DailyReward)
	bot.queue = queue.New(svc.Queues)
	bot.daily = daily.New(svc.Daily)
	bot.balance = balance.New(svc.Ledger, svc.History)
	bot.leaderboard = leaderboard.New(svc.Ledger, config.LeaderboardSize)
	bot.trivia = trivia.New(svc.Trivia)
	bot.settings = settings.NewFeature(svc.QueueRoles)

	// Register handlers
	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleReactionAdd)
	dg.AddHandler(bot.handleReactionRemove)
	dg.AddHandler(bot.handleGuildCreate)
	dg.AddHandler(bot.handleReady)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	return bot, nil
}

// Close gracefully shuts down the bot
func (b *Bot) Close() error {
	return b.session.Close()
}

// handleCommands routes slash commands to appropriate handlers
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "help":
		b.help.HandleCommand(s, i)
	case "queue":
		b.queue.HandleCommand(s, i)
	case "daily":
		b.daily.HandleCommand(s, i)
	case "mmr", "history":
		b.balance.HandleCommand(s, i)
	case "top":
		b.leaderboard.HandleCommand(s, i)
	case "trivia":
		b.trivia.HandleCommand(s, i)
	case "role":
		b.settings.HandleCommand(s, i)
	}
}

func (b *Bot) handleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if ev, ok := toReactionEvent(s.State.User.ID, r.MessageReaction, r.Member, true); ok {
		b.reactions.Route(context.Background(), ev)
	}
}

func (b *Bot) handleReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if ev, ok := toReactionEvent(s.State.User.ID, r.MessageReaction, nil, false); ok {
		b.reactions.Route(context.Background(), ev)
	}
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.WithFields(log.Fields{
		"user":   r.User.Username,
		"guilds": len(r.Guilds),
	}).Info("Logged in")
}

// handleGuildCreate makes sure every guild the bot sees has a settings row
func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	guildID, err := common.ParseID(g.ID)
	if err != nil {
		log.Errorf("Failed to parse guild ID %s: %v", g.ID, err)
		return
	}

	settings, err := b.guildSettings.GetOrCreateSettings(context.Background(), guildID)
	if err != nil {
		log.Errorf("Failed to track guild %s (%s): %v", g.Name, g.ID, err)
		return
	}

	log.WithFields(log.Fields{
		"guild_id":   settings.GuildID,
		"guild_name": g.Name,
		"queue_role": settings.HasQueueRole(),
	}).Info("Guild available")
}
