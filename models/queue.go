package models

// QueueKind identifies a group-activity queue type
type QueueKind string

const (
	QueueBattleCup QueueKind = "battlecup"
	QueueStandard  QueueKind = "queue"
	QueueRanked    QueueKind = "ranked"
	QueueImmortal  QueueKind = "immortal"
	QueueMid       QueueKind = "mid"
	QueueTurbo     QueueKind = "turbo"
	QueueInhouse   QueueKind = "inhouse"
	QueueDeadlock  QueueKind = "deadlock"
)

// RoleSlot selects which configured role a queue pings
type RoleSlot int

const (
	RoleSlotDefault RoleSlot = iota
	RoleSlotImmortal
	RoleSlotDeadlock
)

// CancelEmoji is added to every queue message next to the join emoji
const CancelEmoji = "❌"

// DefaultImmortalEmoji is the custom emoji used by immortal ranked queues
const DefaultImmortalEmoji = "<:immortal:1156278341096194098>"

// QueueDefinition describes one queue type and the session it starts
type QueueDefinition struct {
	Kind      QueueKind
	Title     string // e.g. "Battle Cup", wrapped with the emoji when displayed
	Emoji     string
	Threshold int
	Role      RoleSlot
}

// Label returns the title wrapped in the queue's emoji, as shown in summaries
func (q QueueDefinition) Label() string {
	return q.Emoji + " " + q.Title + " " + q.Emoji
}

// StartedBy returns the title of the message that opens the queue
func (q QueueDefinition) StartedBy(displayName string) string {
	return q.Emoji + " " + q.Title + " started by " + displayName + " " + q.Emoji
}

// DefaultQueues returns the queue types offered by the bot.
// immortalEmoji may be empty, in which case DefaultImmortalEmoji is used.
func DefaultQueues(immortalEmoji string) []QueueDefinition {
	if immortalEmoji == "" {
		immortalEmoji = DefaultImmortalEmoji
	}
	return []QueueDefinition{
		{Kind: QueueBattleCup, Title: "Battle Cup", Emoji: "🏆", Threshold: 6},
		{Kind: QueueStandard, Title: "Queue", Emoji: "⚔️", Threshold: 6},
		{Kind: QueueRanked, Title: "Ranked", Emoji: "📈", Threshold: 6},
		{Kind: QueueImmortal, Title: "Immortal Ranked", Emoji: immortalEmoji, Threshold: 6, Role: RoleSlotImmortal},
		{Kind: QueueMid, Title: "1v1 Mid", Emoji: "💃", Threshold: 3},
		{Kind: QueueTurbo, Title: "Turbo", Emoji: "⏩", Threshold: 6},
		{Kind: QueueInhouse, Title: "Inhouse", Emoji: "🏠", Threshold: 11},
		{Kind: QueueDeadlock, Title: "Deadlock", Emoji: "🔒", Threshold: 7, Role: RoleSlotDeadlock},
	}
}
