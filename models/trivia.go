package models

import (
	"math"
)

// WagerVariant identifies which trivia game produced a wager
type WagerVariant string

const (
	WagerVariantStatGuess    WagerVariant = "stat_guess"
	WagerVariantMatchOutcome WagerVariant = "match_outcome"
)

// Outcome is one side of a binary wager
type Outcome string

const (
	OutcomeOver    Outcome = "over"
	OutcomeUnder   Outcome = "under"
	OutcomeRadiant Outcome = "radiant"
	OutcomeDire    Outcome = "dire"
)

// DisplayName returns the capitalised outcome for messages
func (o Outcome) DisplayName() string {
	switch o {
	case OutcomeOver:
		return "Over"
	case OutcomeUnder:
		return "Under"
	case OutcomeRadiant:
		return "Radiant"
	case OutcomeDire:
		return "Dire"
	default:
		return string(o)
	}
}

// RelevantHeroStats are the numeric hero attributes used by stat-guess trivia
var RelevantHeroStats = []string{
	"base_health", "base_mana",
	"str_gain", "agi_gain", "int_gain",
	"base_armor",
	"attack_range", "attack_rate", "move_speed",
}

// HeroStat is one attribute of one hero as served by the content provider
type HeroStat struct {
	HeroName  string
	StatName  string
	RealValue float64
	ImageURL  string // optional
}

// StatQuestion is a stat-guess wager: the player decides whether the real
// value is over or under the shown value
type StatQuestion struct {
	HeroStat
	ShownValue float64
}

// NewStatQuestion perturbs the real value by factor and rounds it to one decimal
func NewStatQuestion(stat HeroStat, factor float64) StatQuestion {
	return StatQuestion{
		HeroStat:   stat,
		ShownValue: math.Round(stat.RealValue*factor*10) / 10,
	}
}

// TrueOutcome is Over when the real value exceeds the shown one, else Under
func (q StatQuestion) TrueOutcome() Outcome {
	if q.RealValue > q.ShownValue {
		return OutcomeOver
	}
	return OutcomeUnder
}

// MatchRecord is a finished 5v5 public match
type MatchRecord struct {
	MatchID         int64
	RadiantWin      bool
	DurationSeconds int
	RadiantTeam     []int
	DireTeam        []int
	RadiantHeroes   []string
	DireHeroes      []string
}

// IsFiveVersusFive reports whether both teams have exactly five heroes
func (m MatchRecord) IsFiveVersusFive() bool {
	return len(m.RadiantTeam) == 5 && len(m.DireTeam) == 5
}

// Winner returns the recorded winning side
func (m MatchRecord) Winner() Outcome {
	if m.RadiantWin {
		return OutcomeRadiant
	}
	return OutcomeDire
}

// WagerResult reports a settled wager
type WagerResult struct {
	Variant    WagerVariant
	Chosen     Outcome
	Truth      Outcome
	Correct    bool
	Doubled    bool
	Delta      int64
	NewBalance int64
}

// Stake returns the signed balance change for a settled wager
func Stake(correct, doubled bool, stakeBase int64) int64 {
	amount := stakeBase
	if doubled {
		amount = 2 * stakeBase
	}
	if !correct {
		return -amount
	}
	return amount
}
