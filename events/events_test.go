package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"dotabot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionalBus_FlushDeliversToMainBus(t *testing.T) {
	mainBus := NewBus()
	txBus := NewTransactionalBus(mainBus)

	received := make(chan BalanceChangeEvent, 1)
	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		if e, ok := event.(BalanceChangeEvent); ok {
			received <- e
		}
	})

	want := BalanceChangeEvent{
		GuildID:         789,
		UserID:          123456,
		OldBalance:      25,
		NewBalance:      30,
		TransactionType: models.TransactionTypeTriviaWin,
		ChangeAmount:    5,
	}
	txBus.Publish(want)
	assert.Equal(t, 1, txBus.Pending())

	require.NoError(t, txBus.Flush(context.Background()))
	assert.Equal(t, 0, txBus.Pending())

	select {
	case got := <-received:
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestTransactionalBus_DiscardDropsEvents(t *testing.T) {
	mainBus := NewBus()
	txBus := NewTransactionalBus(mainBus)

	var mu sync.Mutex
	calls := 0
	mainBus.Subscribe(EventTypeWagerSettled, func(ctx context.Context, event Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	txBus.Publish(WagerSettledEvent{GuildID: 1, UserID: 2})
	txBus.Discard()
	require.NoError(t, txBus.Flush(context.Background()))

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, calls)
}

func TestBus_PanickingHandlerDoesNotStopOthers(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(1)
	bus.Subscribe(EventTypeSessionFired, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeSessionFired, func(ctx context.Context, event Event) {
		defer wg.Done()
		fired := event.(SessionFiredEvent)
		assert.Equal(t, "🏆", fired.Emoji)
	})

	bus.Emit(context.Background(), SessionFiredEvent{MessageID: "m1", Emoji: "🏆", Count: 6})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second handler was not called")
	}
}

func TestBus_OnlyMatchingTypeReceives(t *testing.T) {
	bus := NewBus()

	expired := make(chan Event, 1)
	settled := make(chan Event, 1)
	bus.Subscribe(EventTypeWagerExpired, func(ctx context.Context, e Event) { expired <- e })
	bus.Subscribe(EventTypeWagerSettled, func(ctx context.Context, e Event) { settled <- e })

	bus.Publish(WagerExpiredEvent{UserID: 7, Variant: models.WagerVariantStatGuess})

	select {
	case e := <-expired:
		assert.Equal(t, EventTypeWagerExpired, e.Type())
	case <-time.After(2 * time.Second):
		t.Fatal("expired handler not called")
	}
	select {
	case <-settled:
		t.Fatal("settled handler should not be called")
	case <-time.After(50 * time.Millisecond):
	}
}
