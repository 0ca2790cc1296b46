package trivia

import (
	"dotabot/service"

	"github.com/bwmarrin/discordgo"
)

// DisabledMessage answers /trivia when trivia is switched off
const DisabledMessage = "Trivia is currently unimplemented."

// Feature runs trivia wagers
type Feature struct {
	trivia *service.TriviaService
}

func New(trivia *service.TriviaService) *Feature {
	return &Feature{trivia: trivia}
}

// HandleCommand handles /trivia
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleTrivia(s, i)
}
