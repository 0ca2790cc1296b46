package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStatQuestion(t *testing.T) {
	t.Parallel()

	stat := HeroStat{HeroName: "Axe", StatName: "base_health", RealValue: 600}

	q := NewStatQuestion(stat, 550.0/600.0)
	assert.Equal(t, 550.0, q.ShownValue)
	assert.Equal(t, OutcomeOver, q.TrueOutcome())

	q = NewStatQuestion(stat, 1.2)
	assert.Equal(t, 720.0, q.ShownValue)
	assert.Equal(t, OutcomeUnder, q.TrueOutcome())

	q = NewStatQuestion(HeroStat{RealValue: 1.7}, 1.0)
	assert.Equal(t, 1.7, q.ShownValue)
	assert.Equal(t, OutcomeUnder, q.TrueOutcome(), "equal values resolve to under")

	q = NewStatQuestion(HeroStat{RealValue: 2.4}, 0.93)
	assert.Equal(t, 2.2, q.ShownValue)
}

func TestStake(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(5), Stake(true, false, 5))
	assert.Equal(t, int64(10), Stake(true, true, 5))
	assert.Equal(t, int64(-5), Stake(false, false, 5))
	assert.Equal(t, int64(-10), Stake(false, true, 5))
}

func TestMatchRecord(t *testing.T) {
	t.Parallel()

	m := MatchRecord{RadiantWin: true, RadiantTeam: []int{1, 2, 3, 4, 5}, DireTeam: []int{6, 7, 8, 9, 10}}
	assert.True(t, m.IsFiveVersusFive())
	assert.Equal(t, OutcomeRadiant, m.Winner())

	m.RadiantWin = false
	m.DireTeam = m.DireTeam[:4]
	assert.False(t, m.IsFiveVersusFive())
	assert.Equal(t, OutcomeDire, m.Winner())
}
