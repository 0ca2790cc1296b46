package balance

import (
	"dotabot/service"

	"github.com/bwmarrin/discordgo"
)

type Feature struct {
	ledger  service.LedgerStore
	history service.HistoryReader
}

// New creates the balance feature. history is nil when the ledger backend
// keeps no balance history.
func New(ledger service.LedgerStore, history service.HistoryReader) *Feature {
	return &Feature{
		ledger:  ledger,
		history: history,
	}
}

// HandleCommand handles /mmr and /history
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "history":
		f.handleHistory(s, i)
	default:
		f.handleBalance(s, i)
	}
}
