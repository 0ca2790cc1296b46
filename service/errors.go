package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrContentUnavailable means the content provider has nothing to serve
	ErrContentUnavailable = errors.New("trivia content unavailable")

	// ErrWagerExpired means no qualifying pick arrived before the deadline
	ErrWagerExpired = errors.New("wager expired")

	// ErrWagerAlreadyActive means a wager is already waiting on the message
	ErrWagerAlreadyActive = errors.New("wager already active for message")
)

// AlreadyClaimedError is returned when the daily reward was already claimed today
type AlreadyClaimedError struct {
	Remaining time.Duration // until the next local midnight
}

func (e *AlreadyClaimedError) Error() string {
	return fmt.Sprintf("daily reward already claimed, next claim in %s", e.Remaining.Round(time.Second))
}

// TransportError wraps a failed messaging platform call
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError wraps err unless it is nil or already a transport error
func NewTransportError(op string, err error) error {
	if err == nil {
		return nil
	}
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Op: op, Err: err}
}

// LedgerWriteError means a ledger update could not be made durable.
// Nothing from the failed update is visible afterwards.
type LedgerWriteError struct {
	GuildID int64
	UserID  int64
	Err     error
}

func (e *LedgerWriteError) Error() string {
	return fmt.Sprintf("ledger write failed for guild %d user %d: %v", e.GuildID, e.UserID, e.Err)
}

func (e *LedgerWriteError) Unwrap() error {
	return e.Err
}

// CorruptLedgerError reports a persisted ledger row that cannot be parsed
type CorruptLedgerError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *CorruptLedgerError) Error() string {
	return fmt.Sprintf("corrupt ledger at line %d: field %s has invalid value %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *CorruptLedgerError) Unwrap() error {
	return e.Err
}
