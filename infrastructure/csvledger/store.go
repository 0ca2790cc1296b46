package csvledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"dotabot/events"
	"dotabot/models"
	"dotabot/service"

	log "github.com/sirupsen/logrus"
)

type ledgerKey struct {
	guildID int64
	userID  int64
}

// Store is a LedgerStore persisted to one CSV file. The whole file is rewritten
// atomically on every update; the in-memory state only changes once the new file
// is in place.
type Store struct {
	path      string
	publisher service.EventPublisher

	mu      sync.Mutex // guards records, order, keyLock and the file
	records map[ledgerKey]*models.LedgerRecord
	order   []ledgerKey
	nextID  int64
	keyLock map[ledgerKey]*sync.Mutex
}

var _ service.LedgerStore = (*Store)(nil)

// Open loads the ledger at path, creating its directory when missing. A missing
// file is an empty ledger. Unparsable rows fail with *service.CorruptLedgerError.
// publisher may be nil.
func Open(path string, publisher service.EventPublisher) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	s := &Store{
		path:      path,
		publisher: publisher,
		records:   make(map[ledgerKey]*models.LedgerRecord),
		keyLock:   make(map[ledgerKey]*sync.Mutex),
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		log.WithField("path", path).Info("CSV ledger not found, starting empty")
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	records, err := ReadRecords(f, ReadOptions{})
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		s.insert(r)
	}

	log.WithFields(log.Fields{
		"path":    path,
		"records": len(records),
	}).Info("Loaded CSV ledger")
	return s, nil
}

// GetOrCreate returns the user's record. A missing record is created and persisted.
func (s *Store) GetOrCreate(ctx context.Context, guildID, userID int64) (*models.LedgerRecord, error) {
	key := ledgerKey{guildID, userID}
	s.mu.Lock()
	if r, ok := s.records[key]; ok {
		s.mu.Unlock()
		return r.Clone(), nil
	}
	s.mu.Unlock()

	return s.Update(ctx, guildID, userID, "", func(*models.LedgerRecord) error { return nil })
}

// Update runs mutate on the user's record under the key's lock and persists the
// result before returning it. Mutator errors are returned unchanged; persistence
// failures are *service.LedgerWriteError.
func (s *Store) Update(ctx context.Context, guildID, userID int64, txType models.TransactionType, mutate service.LedgerMutator) (*models.LedgerRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := ledgerKey{guildID, userID}
	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	current, exists := s.records[key]
	s.mu.Unlock()

	var record *models.LedgerRecord
	if exists {
		record = current.Clone()
	} else {
		record = models.NewLedgerRecord(guildID, userID)
	}
	before := record.Balance

	if err := mutate(record); err != nil {
		return nil, err
	}
	record.GuildID, record.UserID = guildID, userID

	s.mu.Lock()
	if err := s.commit(key, record, exists); err != nil {
		s.mu.Unlock()
		return nil, &service.LedgerWriteError{GuildID: guildID, UserID: userID, Err: err}
	}
	s.mu.Unlock()

	if record.Balance != before && s.publisher != nil {
		s.publisher.Publish(events.BalanceChangeEvent{
			GuildID:         guildID,
			UserID:          userID,
			OldBalance:      before,
			NewBalance:      record.Balance,
			TransactionType: txType,
			ChangeAmount:    record.Balance - before,
		})
	}
	return record.Clone(), nil
}

// TopByBalance returns up to n records of the guild ordered by balance, ties in file order
func (s *Store) TopByBalance(_ context.Context, guildID int64, n int) ([]*models.LedgerRecord, error) {
	return s.top(guildID, n, func(r *models.LedgerRecord) int64 { return r.Balance }), nil
}

// TopByStreak returns up to n records of the guild ordered by streak, ties in file order
func (s *Store) TopByStreak(_ context.Context, guildID int64, n int) ([]*models.LedgerRecord, error) {
	return s.top(guildID, n, func(r *models.LedgerRecord) int64 { return int64(r.Streak) }), nil
}

// Snapshot returns every record in file order
func (s *Store) Snapshot(_ context.Context) ([]*models.LedgerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), nil
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

func (s *Store) top(guildID int64, n int, field func(*models.LedgerRecord) int64) []*models.LedgerRecord {
	if n <= 0 {
		return []*models.LedgerRecord{}
	}

	s.mu.Lock()
	var guild []*models.LedgerRecord
	for _, key := range s.order {
		if key.guildID == guildID {
			guild = append(guild, s.records[key].Clone())
		}
	}
	s.mu.Unlock()

	slices.SortStableFunc(guild, func(a, b *models.LedgerRecord) int {
		fa, fb := field(a), field(b)
		switch {
		case fa > fb:
			return -1
		case fa < fb:
			return 1
		}
		return 0
	})
	if len(guild) > n {
		guild = guild[:n]
	}
	return guild
}

// commit writes the ledger with record in place of key and only then updates memory.
// s.mu must be held.
func (s *Store) commit(key ledgerKey, record *models.LedgerRecord, exists bool) error {
	rows := s.snapshotLocked()
	if exists {
		for i, r := range rows {
			if r.GuildID == key.guildID && r.UserID == key.userID {
				record.ID = r.ID
				rows[i] = record
				break
			}
		}
	} else {
		record.ID = s.nextID + 1
		rows = append(rows, record)
	}

	if err := writeFileAtomic(s.path, rows); err != nil {
		return err
	}

	if !exists {
		s.nextID = record.ID
		s.order = append(s.order, key)
	}
	s.records[key] = record.Clone()
	return nil
}

func (s *Store) insert(r *models.LedgerRecord) {
	s.nextID++
	r.ID = s.nextID
	key := ledgerKey{r.GuildID, r.UserID}
	s.records[key] = r
	s.order = append(s.order, key)
}

func (s *Store) snapshotLocked() []*models.LedgerRecord {
	rows := make([]*models.LedgerRecord, 0, len(s.order))
	for _, key := range s.order {
		rows = append(rows, s.records[key].Clone())
	}
	return rows
}

func (s *Store) lockFor(key ledgerKey) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.keyLock[key]
	if !ok {
		lock = &sync.Mutex{}
		s.keyLock[key] = lock
	}
	return lock
}

// writeFileAtomic replaces path with the encoded records via a synced temp file and rename
func writeFileAtomic(path string, records []*models.LedgerRecord) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = WriteRecords(tmp, records); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync ledger: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close ledger: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace ledger: %w", err)
	}
	return nil
}
