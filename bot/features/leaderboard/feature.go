package leaderboard

import (
	"dotabot/service"

	"github.com/bwmarrin/discordgo"
)

// Ranking options of /top
const (
	ByOption  = "by"
	ByBalance = "balance"
	ByStreak  = "streak"
)

// Feature shows the guild's top point holders or daily streaks
type Feature struct {
	ledger service.LedgerStore
	size   int
}

func New(ledger service.LedgerStore, size int) *Feature {
	return &Feature{ledger: ledger, size: size}
}

// HandleCommand handles /top
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleTop(s, i)
}
