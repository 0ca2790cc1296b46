package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dotabot/events"
	"dotabot/models"

	log "github.com/sirupsen/logrus"
)

const (
	// DefaultWagerTimeout is how long a wager waits for its pick
	DefaultWagerTimeout = 60 * time.Second

	// DefaultStakeBase is the undoubled stake of a trivia wager
	DefaultStakeBase = 5
)

// WagerRequest describes a wager posted on a message
type WagerRequest struct {
	GuildID      int64
	ChannelID    string
	MessageID    string
	AskingUserID int64
	Variant      models.WagerVariant
	TrueOutcome  models.Outcome
	Timeout      time.Duration // zero uses the engine default
}

type wagerWaiter struct {
	req      WagerRequest
	deadline time.Time
	picks    chan models.EmojiBinding
}

// WagerHandle identifies a started wager
type WagerHandle struct {
	waiter *wagerWaiter
}

// WagerEngine waits for one choice reaction per wager and settles it against the ledger.
// Waiting wagers are keyed by message; the reaction path delivers at most one pick
// to each and never blocks.
type WagerEngine struct {
	platform  MessagingPlatform
	ledger    LedgerStore
	emojis    *models.EmojiTable
	publisher EventPublisher
	stakeBase int64
	timeout   time.Duration

	mu      sync.Mutex
	waiters map[string]*wagerWaiter
}

// NewWagerEngine creates an engine. Non-positive stakeBase or timeout use the defaults.
func NewWagerEngine(platform MessagingPlatform, ledger LedgerStore, emojis *models.EmojiTable, publisher EventPublisher, stakeBase int64, timeout time.Duration) *WagerEngine {
	if stakeBase <= 0 {
		stakeBase = DefaultStakeBase
	}
	if timeout <= 0 {
		timeout = DefaultWagerTimeout
	}
	return &WagerEngine{
		platform:  platform,
		ledger:    ledger,
		emojis:    emojis,
		publisher: publisher,
		stakeBase: stakeBase,
		timeout:   timeout,
		waiters:   make(map[string]*wagerWaiter),
	}
}

// StakeBase returns the undoubled stake
func (e *WagerEngine) StakeBase() int64 {
	return e.stakeBase
}

// StartWager registers a wager. Its deadline is measured from now.
func (e *WagerEngine) StartWager(req WagerRequest) (*WagerHandle, error) {
	if req.MessageID == "" {
		return nil, fmt.Errorf("wager message ID is required")
	}
	if len(e.emojis.ChoiceEmojis(req.Variant)) == 0 {
		return nil, fmt.Errorf("unknown wager variant %q", req.Variant)
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = e.timeout
	}

	w := &wagerWaiter{
		req:      req,
		deadline: time.Now().Add(timeout),
		picks:    make(chan models.EmojiBinding, 1),
	}

	e.mu.Lock()
	if _, exists := e.waiters[req.MessageID]; exists {
		e.mu.Unlock()
		return nil, ErrWagerAlreadyActive
	}
	e.waiters[req.MessageID] = w
	e.mu.Unlock()

	e.publish(events.WagerStartedEvent{
		GuildID:   req.GuildID,
		UserID:    req.AskingUserID,
		MessageID: req.MessageID,
		Variant:   req.Variant,
	})

	log.WithFields(log.Fields{
		"guild_id":   req.GuildID,
		"user_id":    req.AskingUserID,
		"message_id": req.MessageID,
		"variant":    req.Variant,
	}).Debug("Wager started")
	return &WagerHandle{waiter: w}, nil
}

// OnReaction offers a reaction add to the waiting wager on messageID. It returns
// true when the reaction was the asking user's first choice and was consumed.
func (e *WagerEngine) OnReaction(messageID, emoji string, userID int64) bool {
	e.mu.Lock()
	w, ok := e.waiters[messageID]
	if !ok || userID != w.req.AskingUserID {
		e.mu.Unlock()
		return false
	}
	pick, ok := e.emojis.Choice(w.req.Variant, emoji)
	if !ok {
		e.mu.Unlock()
		return false
	}
	delete(e.waiters, messageID)
	e.mu.Unlock()

	w.picks <- pick
	return true
}

// Cancel abandons a wager that has not been picked yet, without publishing anything
func (e *WagerEngine) Cancel(h *WagerHandle) {
	e.unregister(h.waiter)
}

// Active returns the number of wagers waiting for a pick
func (e *WagerEngine) Active() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.waiters)
}

// unregister removes w if it is still waiting and reports whether it did
func (e *WagerEngine) unregister(w *wagerWaiter) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.waiters[w.req.MessageID] != w {
		return false
	}
	delete(e.waiters, w.req.MessageID)
	return true
}

// Await blocks until the wager is picked, expires, or ctx is done.
// A pick is settled through the ledger; expiry returns ErrWagerExpired and
// leaves the ledger untouched.
func (e *WagerEngine) Await(ctx context.Context, h *WagerHandle) (*models.WagerResult, error) {
	w := h.waiter
	timer := time.NewTimer(time.Until(w.deadline))
	defer timer.Stop()

	var abort error
	select {
	case pick := <-w.picks:
		return e.settle(ctx, w, pick)
	case <-timer.C:
		abort = ErrWagerExpired
	case <-ctx.Done():
		abort = ctx.Err()
	}

	if !e.unregister(w) {
		// a pick won the race with the deadline and is already on its way
		return e.settle(ctx, w, <-w.picks)
	}

	if errors.Is(abort, ErrWagerExpired) {
		e.publish(events.WagerExpiredEvent{
			GuildID:   w.req.GuildID,
			UserID:    w.req.AskingUserID,
			MessageID: w.req.MessageID,
			Variant:   w.req.Variant,
		})
		log.WithFields(log.Fields{
			"guild_id":   w.req.GuildID,
			"user_id":    w.req.AskingUserID,
			"message_id": w.req.MessageID,
		}).Info("Wager expired")
	}
	return nil, abort
}

// settle commits a consumed pick. Cancelling ctx only abandons waiting, so a
// pick that was already taken is settled regardless.
func (e *WagerEngine) settle(ctx context.Context, w *wagerWaiter, pick models.EmojiBinding) (*models.WagerResult, error) {
	ctx = context.WithoutCancel(ctx)
	req := w.req

	reactors, err := e.platform.ListReactors(ctx, req.ChannelID, req.MessageID, e.emojis.DoubleEmoji())
	if err != nil {
		return nil, NewTransportError("list double reactors", err)
	}
	doubled := false
	for _, r := range reactors {
		if r.UserID == req.AskingUserID {
			doubled = true
			break
		}
	}

	correct := pick.Outcome == req.TrueOutcome
	delta := models.Stake(correct, doubled, e.stakeBase)

	record, err := e.ledger.Update(ctx, req.GuildID, req.AskingUserID, models.TransactionTypeForDelta(delta), func(r *models.LedgerRecord) error {
		r.ApplyDelta(delta)
		return nil
	})
	if err != nil {
		var lwe *LedgerWriteError
		if !errors.As(err, &lwe) {
			err = &LedgerWriteError{GuildID: req.GuildID, UserID: req.AskingUserID, Err: err}
		}
		log.WithFields(log.Fields{
			"guild_id":   req.GuildID,
			"user_id":    req.AskingUserID,
			"message_id": req.MessageID,
			"error":      err,
		}).Error("Failed to settle wager")
		return nil, err
	}

	result := &models.WagerResult{
		Variant:    req.Variant,
		Chosen:     pick.Outcome,
		Truth:      req.TrueOutcome,
		Correct:    correct,
		Doubled:    doubled,
		Delta:      delta,
		NewBalance: record.Balance,
	}

	e.publish(events.WagerSettledEvent{
		GuildID:   req.GuildID,
		UserID:    req.AskingUserID,
		MessageID: req.MessageID,
		Result:    *result,
	})

	log.WithFields(log.Fields{
		"guild_id":    req.GuildID,
		"user_id":     req.AskingUserID,
		"message_id":  req.MessageID,
		"chosen":      result.Chosen,
		"truth":       result.Truth,
		"doubled":     doubled,
		"delta":       delta,
		"new_balance": record.Balance,
	}).Info("Wager settled")
	return result, nil
}

func (e *WagerEngine) publish(event events.Event) {
	if e.publisher != nil {
		e.publisher.Publish(event)
	}
}
