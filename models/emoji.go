package models

import (
	"fmt"
	"strings"
)

// EmojiKind tags what a reaction emoji means to the bot
type EmojiKind int

const (
	EmojiKindSession EmojiKind = iota + 1
	EmojiKindDoubleModifier
	EmojiKindChoiceA
	EmojiKindChoiceB
)

func (k EmojiKind) String() string {
	switch k {
	case EmojiKindSession:
		return "session"
	case EmojiKindDoubleModifier:
		return "double"
	case EmojiKindChoiceA:
		return "choice_a"
	case EmojiKindChoiceB:
		return "choice_b"
	default:
		return "unknown"
	}
}

// Wager emoji
const (
	EmojiOver    = "⬆️"
	EmojiUnder   = "⬇️"
	EmojiRadiant = "🟢"
	EmojiDire    = "🔴"
	EmojiDouble  = "💰"
)

// EmojiBinding is what one emoji resolves to.
// Threshold and Queue are set for session emoji, Variant and Outcome for choices.
type EmojiBinding struct {
	Emoji     string
	Kind      EmojiKind
	Threshold int
	Label     string
	Queue     QueueKind
	Variant   WagerVariant
	Outcome   Outcome
}

type choiceKey struct {
	variant WagerVariant
	emoji   string
}

// EmojiTable resolves reaction emoji to their bindings. It is built once at
// startup and read concurrently afterwards.
type EmojiTable struct {
	sessions map[string]EmojiBinding
	choices  map[choiceKey]EmojiBinding
	byChoice map[WagerVariant][2]string
	double   string
}

// NormalizeEmoji maps the different spellings of an emoji onto one identity.
// Custom emoji arrive as "<:name:id>", "<a:name:id>" or "name:id" and become "name:id".
func NormalizeEmoji(emoji string) string {
	e := strings.TrimSpace(emoji)
	if strings.HasPrefix(e, "<") && strings.HasSuffix(e, ">") {
		e = strings.TrimSuffix(strings.TrimPrefix(e, "<"), ">")
		e = strings.TrimPrefix(e, "a:")
		e = strings.TrimPrefix(e, ":")
	}
	return e
}

// NewEmojiTable builds a table from queue definitions and the wager emoji.
// Non-positive thresholds are rejected, as are session emoji that are used
// twice or that collide with a wager emoji or the cancel emoji.
func NewEmojiTable(queues []QueueDefinition) (*EmojiTable, error) {
	t := &EmojiTable{
		sessions: make(map[string]EmojiBinding, len(queues)),
		choices:  make(map[choiceKey]EmojiBinding, 4),
		byChoice: make(map[WagerVariant][2]string, 2),
		double:   EmojiDouble,
	}

	t.addChoices(WagerVariantStatGuess, EmojiOver, OutcomeOver, EmojiUnder, OutcomeUnder)
	t.addChoices(WagerVariantMatchOutcome, EmojiRadiant, OutcomeRadiant, EmojiDire, OutcomeDire)

	reserved := map[string]bool{
		NormalizeEmoji(t.double):    true,
		NormalizeEmoji(CancelEmoji): true,
	}
	for key := range t.choices {
		reserved[key.emoji] = true
	}

	for _, q := range queues {
		if q.Threshold <= 0 {
			return nil, fmt.Errorf("queue %s: threshold must be positive, got %d", q.Kind, q.Threshold)
		}
		key := NormalizeEmoji(q.Emoji)
		if key == "" {
			return nil, fmt.Errorf("queue %s: emoji is empty", q.Kind)
		}
		if _, exists := t.sessions[key]; exists {
			return nil, fmt.Errorf("queue %s: emoji %s already bound", q.Kind, q.Emoji)
		}
		if reserved[key] {
			return nil, fmt.Errorf("queue %s: emoji %s is reserved for wagers or cancelling", q.Kind, q.Emoji)
		}
		t.sessions[key] = EmojiBinding{
			Emoji:     q.Emoji,
			Kind:      EmojiKindSession,
			Threshold: q.Threshold,
			Label:     q.Label(),
			Queue:     q.Kind,
		}
	}

	return t, nil
}

// DefaultEmojiTable builds the table for DefaultQueues
func DefaultEmojiTable(immortalEmoji string) (*EmojiTable, error) {
	return NewEmojiTable(DefaultQueues(immortalEmoji))
}

func (t *EmojiTable) addChoices(variant WagerVariant, a string, outcomeA Outcome, b string, outcomeB Outcome) {
	t.choices[choiceKey{variant, NormalizeEmoji(a)}] = EmojiBinding{
		Emoji: a, Kind: EmojiKindChoiceA, Variant: variant, Outcome: outcomeA, Label: outcomeA.DisplayName(),
	}
	t.choices[choiceKey{variant, NormalizeEmoji(b)}] = EmojiBinding{
		Emoji: b, Kind: EmojiKindChoiceB, Variant: variant, Outcome: outcomeB, Label: outcomeB.DisplayName(),
	}
	t.byChoice[variant] = [2]string{a, b}
}

// Session returns the session binding for emoji, if any
func (t *EmojiTable) Session(emoji string) (EmojiBinding, bool) {
	b, ok := t.sessions[NormalizeEmoji(emoji)]
	return b, ok
}

// Choice returns the choice binding for emoji within a wager variant
func (t *EmojiTable) Choice(variant WagerVariant, emoji string) (EmojiBinding, bool) {
	b, ok := t.choices[choiceKey{variant, NormalizeEmoji(emoji)}]
	return b, ok
}

// ChoiceEmojis returns the two choice emoji for a variant in A, B order
func (t *EmojiTable) ChoiceEmojis(variant WagerVariant) []string {
	pair, ok := t.byChoice[variant]
	if !ok {
		return nil
	}
	return []string{pair[0], pair[1]}
}

// DoubleEmoji returns the stake-doubling modifier emoji
func (t *EmojiTable) DoubleEmoji() string {
	return t.double
}

// IsDouble reports whether emoji is the double modifier
func (t *EmojiTable) IsDouble(emoji string) bool {
	return NormalizeEmoji(emoji) == NormalizeEmoji(t.double)
}

// Lookup resolves emoji for a given wager variant, falling back to session bindings.
// An empty variant only considers sessions and the double modifier.
func (t *EmojiTable) Lookup(variant WagerVariant, emoji string) (EmojiBinding, bool) {
	if t.IsDouble(emoji) {
		return EmojiBinding{Emoji: t.double, Kind: EmojiKindDoubleModifier, Label: "Double"}, true
	}
	if variant != "" {
		if b, ok := t.Choice(variant, emoji); ok {
			return b, true
		}
	}
	return t.Session(emoji)
}
