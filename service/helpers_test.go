package service

import (
	"context"
	"sync"
	"time"

	"dotabot/events"
	"dotabot/models"
)

// Test IDs
const (
	TestGuildID   = 900001
	TestUser1ID   = 111111
	TestUser2ID   = 222222
	TestUser3ID   = 333333
	TestBotID     = 999999
	TestChannelID = "channel-1"
	TestMessageID = "message-1"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// memoryLedgerStore is an in-process LedgerStore for service tests.
// failWrites makes every Update fail after running the mutator, leaving state unchanged.
type memoryLedgerStore struct {
	mu         sync.Mutex
	records    map[[2]int64]*models.LedgerRecord
	order      [][2]int64
	failWrites error
	updates    int
}

func newMemoryLedgerStore() *memoryLedgerStore {
	return &memoryLedgerStore{records: make(map[[2]int64]*models.LedgerRecord)}
}

func (s *memoryLedgerStore) getLocked(guildID, userID int64) *models.LedgerRecord {
	key := [2]int64{guildID, userID}
	r, ok := s.records[key]
	if !ok {
		r = models.NewLedgerRecord(guildID, userID)
		s.records[key] = r
		s.order = append(s.order, key)
	}
	return r
}

func (s *memoryLedgerStore) GetOrCreate(ctx context.Context, guildID, userID int64) (*models.LedgerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(guildID, userID).Clone(), nil
}

func (s *memoryLedgerStore) Update(ctx context.Context, guildID, userID int64, txType models.TransactionType, mutate LedgerMutator) (*models.LedgerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.getLocked(guildID, userID).Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	if s.failWrites != nil {
		return nil, &LedgerWriteError{GuildID: guildID, UserID: userID, Err: s.failWrites}
	}
	s.records[[2]int64{guildID, userID}] = next
	s.updates++
	return next.Clone(), nil
}

func (s *memoryLedgerStore) TopByBalance(ctx context.Context, guildID int64, n int) ([]*models.LedgerRecord, error) {
	return nil, nil
}

func (s *memoryLedgerStore) TopByStreak(ctx context.Context, guildID int64, n int) ([]*models.LedgerRecord, error) {
	return nil, nil
}

func (s *memoryLedgerStore) balance(guildID, userID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(guildID, userID).Balance
}

func (s *memoryLedgerStore) updateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates
}

func mustEmojiTable() *models.EmojiTable {
	table, err := models.DefaultEmojiTable("")
	if err != nil {
		panic(err)
	}
	return table
}

// recordingPublisher collects published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) ofType(t events.EventType) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, e := range p.events {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}
