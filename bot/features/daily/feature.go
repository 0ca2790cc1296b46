package daily

import (
	"dotabot/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles the daily reward claim
type Feature struct {
	dailyService service.DailyService
}

func New(dailyService service.DailyService) *Feature {
	return &Feature{dailyService: dailyService}
}

// HandleCommand handles /daily
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleDaily(s, i)
}
