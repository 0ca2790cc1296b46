package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"dotabot/models"

	log "github.com/sirupsen/logrus"
)

// ErrTriviaDisabled is returned by Play when trivia is switched off
var ErrTriviaDisabled = errors.New("trivia is disabled")

const (
	statFactorMin = 0.8
	statFactorMax = 1.2

	triviaColor = 0x3498DB
)

// TriviaRequest starts a trivia round for one user
type TriviaRequest struct {
	GuildID   int64
	ChannelID string
	UserID    int64
}

// TriviaRound describes a posted question and, once settled, its result
type TriviaRound struct {
	MessageID string
	Variant   models.WagerVariant
	Stat      *models.StatQuestion
	Match     *models.MatchRecord
	Result    *models.WagerResult
}

// TriviaService runs stat-guess and match-outcome wagers
type TriviaService struct {
	engine   *WagerEngine
	content  ContentProvider
	platform MessagingPlatform
	emojis   *models.EmojiTable
	enabled  bool
	random   func() float64
}

// NewTriviaService creates a trivia service drawing randomness from math/rand
func NewTriviaService(engine *WagerEngine, content ContentProvider, platform MessagingPlatform, emojis *models.EmojiTable, enabled bool) *TriviaService {
	return &TriviaService{
		engine:   engine,
		content:  content,
		platform: platform,
		emojis:   emojis,
		enabled:  enabled,
		random:   rand.Float64,
	}
}

// Enabled reports whether trivia can be played
func (s *TriviaService) Enabled() bool {
	return s.enabled
}

// Play flips between the two variants, posts the question and waits for the
// asking user's pick. The returned round is non-nil whenever a question was
// posted, including when the wager expired or failed to settle.
func (s *TriviaService) Play(ctx context.Context, req TriviaRequest) (*TriviaRound, error) {
	if !s.enabled {
		return nil, ErrTriviaDisabled
	}

	round := &TriviaRound{Variant: models.WagerVariantStatGuess}
	if s.random() < 0.5 {
		round.Variant = models.WagerVariantMatchOutcome
	}

	var (
		msg   *models.Announcement
		truth models.Outcome
	)
	switch round.Variant {
	case models.WagerVariantStatGuess:
		stat, err := s.content.RandomHeroWithStat(ctx)
		if err != nil {
			return nil, err
		}
		factor := statFactorMin + (statFactorMax-statFactorMin)*s.random()
		q := models.NewStatQuestion(*stat, factor)
		round.Stat = &q
		truth = q.TrueOutcome()
		msg = s.statAnnouncement(q)
	case models.WagerVariantMatchOutcome:
		match, err := s.content.NextMatch(ctx)
		if err != nil {
			return nil, err
		}
		round.Match = match
		truth = match.Winner()
		msg = s.matchAnnouncement(match)
	}

	messageID, err := s.platform.PostMessage(ctx, req.ChannelID, msg)
	if err != nil {
		return nil, NewTransportError("post trivia question", err)
	}
	round.MessageID = messageID

	handle, err := s.engine.StartWager(WagerRequest{
		GuildID:      req.GuildID,
		ChannelID:    req.ChannelID,
		MessageID:    messageID,
		AskingUserID: req.UserID,
		Variant:      round.Variant,
		TrueOutcome:  truth,
	})
	if err != nil {
		return round, fmt.Errorf("failed to start wager: %w", err)
	}

	reactions := append(s.emojis.ChoiceEmojis(round.Variant), s.emojis.DoubleEmoji())
	for _, emoji := range reactions {
		if err := s.platform.AddReaction(ctx, req.ChannelID, messageID, emoji); err != nil {
			s.engine.Cancel(handle)
			return round, NewTransportError("add trivia reaction", err)
		}
	}

	log.WithFields(log.Fields{
		"guild_id":   req.GuildID,
		"user_id":    req.UserID,
		"message_id": messageID,
		"variant":    round.Variant,
	}).Debug("Trivia question posted")

	result, err := s.engine.Await(ctx, handle)
	if err != nil {
		return round, err
	}
	round.Result = result
	return round, nil
}

func (s *TriviaService) statAnnouncement(q models.StatQuestion) *models.Announcement {
	choices := s.emojis.ChoiceEmojis(models.WagerVariantStatGuess)
	stake := s.engine.StakeBase()
	return &models.Announcement{
		Title: "Hero Over/Under Trivia",
		Description: fmt.Sprintf(
			"**Hero**: %s\n**Stat**: %s\n\nWe show: **%s**.\n\nIs the real value Over or Under that number?",
			q.HeroName, q.StatName, FormatStatValue(q.ShownValue),
		),
		Color:    triviaColor,
		ImageURL: q.ImageURL,
		Footer: fmt.Sprintf(
			"React %s if real stat is OVER.\nReact %s if it's UNDER.\nReact %s to double down (±%d). Otherwise ±%d.",
			choices[0], choices[1], s.emojis.DoubleEmoji(), 2*stake, stake,
		),
	}
}

func (s *TriviaService) matchAnnouncement(m *models.MatchRecord) *models.Announcement {
	choices := s.emojis.ChoiceEmojis(models.WagerVariantMatchOutcome)
	stake := s.engine.StakeBase()
	return &models.Announcement{
		Title: "Match Trivia",
		Color: triviaColor,
		Fields: []models.AnnouncementField{
			{Name: "Radiant Team", Value: strings.Join(m.RadiantHeroes, ", ")},
			{Name: "Dire Team", Value: strings.Join(m.DireHeroes, ", ")},
			{Name: "Duration", Value: fmt.Sprintf("%dm %ds", m.DurationSeconds/60, m.DurationSeconds%60)},
		},
		Footer: fmt.Sprintf(
			"React %s if Radiant won, %s if Dire won.\nReact %s to double down (±%d) otherwise ±%d.",
			choices[0], choices[1], s.emojis.DoubleEmoji(), 2*stake, stake,
		),
	}
}

// FormatStatValue prints a stat value in its shortest form, 600 rather than 600.0
func FormatStatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
