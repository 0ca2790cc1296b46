package service

import (
	"context"
	"time"

	"dotabot/models"
)

// LedgerObserver receives the outcome of every ledger update
type LedgerObserver interface {
	RecordLedgerUpdate(ctx context.Context, txType models.TransactionType, duration time.Duration, err error)
}

type instrumentedLedgerStore struct {
	LedgerStore
	observer LedgerObserver
}

// NewInstrumentedLedgerStore reports each Update of store to observer.
// A nil observer returns store unchanged.
func NewInstrumentedLedgerStore(store LedgerStore, observer LedgerObserver) LedgerStore {
	if observer == nil {
		return store
	}
	return &instrumentedLedgerStore{LedgerStore: store, observer: observer}
}

func (s *instrumentedLedgerStore) Update(ctx context.Context, guildID, userID int64, txType models.TransactionType, mutate LedgerMutator) (*models.LedgerRecord, error) {
	start := time.Now()
	record, err := s.LedgerStore.Update(ctx, guildID, userID, txType, mutate)
	s.observer.RecordLedgerUpdate(ctx, txType, time.Since(start), err)
	return record, err
}
