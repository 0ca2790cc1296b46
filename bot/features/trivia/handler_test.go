package trivia

import (
	"testing"

	"dotabot/models"
	"dotabot/service"

	"github.com/stretchr/testify/assert"
)

func TestResultMessage_StatGuess(t *testing.T) {
	stat := models.NewStatQuestion(models.HeroStat{HeroName: "Axe", StatName: "move_speed", RealValue: 310}, 1.1)
	round := &service.TriviaRound{
		Variant: models.WagerVariantStatGuess,
		Stat:    &stat,
		Result: &models.WagerResult{
			Variant:    models.WagerVariantStatGuess,
			Chosen:     models.OutcomeUnder,
			Truth:      models.OutcomeUnder,
			Correct:    true,
			Doubled:    true,
			Delta:      10,
			NewBalance: 35,
		},
	}

	assert.Equal(t,
		"<@42> Correct! You gain 10 MMR.\nThe real value is **310**, which is **under** 341.\nYour new MMR: **35**.",
		ResultMessage(42, round))
}

func TestResultMessage_MatchOutcome(t *testing.T) {
	round := &service.TriviaRound{
		Variant: models.WagerVariantMatchOutcome,
		Match:   &models.MatchRecord{MatchID: 1, RadiantWin: false},
		Result: &models.WagerResult{
			Variant:    models.WagerVariantMatchOutcome,
			Chosen:     models.OutcomeRadiant,
			Truth:      models.OutcomeDire,
			Delta:      -5,
			NewBalance: -5,
		},
	}

	assert.Equal(t,
		"<@42> Incorrect! You lose 5 MMR.\nThe actual winner was **Dire**.\nYour new MMR: **-5**.",
		ResultMessage(42, round))
}
