package queue

import (
	"dotabot/service"

	"github.com/bwmarrin/discordgo"
)

// Feature starts group-activity queues
type Feature struct {
	queues *service.QueueService
}

func New(queues *service.QueueService) *Feature {
	return &Feature{queues: queues}
}

// HandleCommand handles /queue
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleQueue(s, i)
}
