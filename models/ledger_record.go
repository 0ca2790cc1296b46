package models

import (
	"errors"
	"time"
)

// ErrAlreadyClaimedToday is returned when a daily claim is repeated on the same calendar day
var ErrAlreadyClaimedToday = errors.New("daily reward already claimed today")

// LedgerRecord is a user's points and streak within one guild
type LedgerRecord struct {
	ID            int64     `db:"id"`
	GuildID       int64     `db:"guild_id"`
	UserID        int64     `db:"discord_id"`
	Balance       int64     `db:"balance"`
	LastClaimDate Date      `db:"last_claim_date"` // zero means never claimed
	Streak        int       `db:"streak"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// NewLedgerRecord returns the default record created on first read
func NewLedgerRecord(guildID, userID int64) *LedgerRecord {
	return &LedgerRecord{
		GuildID: guildID,
		UserID:  userID,
	}
}

// Clone returns a copy that can be mutated without touching r
func (r *LedgerRecord) Clone() *LedgerRecord {
	c := *r
	return &c
}

// HasClaimed reports whether the record has ever claimed a daily reward
func (r *LedgerRecord) HasClaimed() bool {
	return !r.LastClaimDate.IsZero()
}

// ClaimDaily credits the daily reward for today and advances the streak.
// The streak grows only when the previous claim was exactly one day earlier;
// any other gap, or a first claim, restarts it at 1.
func (r *LedgerRecord) ClaimDaily(today Date, reward int64, trackStreak bool) error {
	if r.LastClaimDate == today {
		return ErrAlreadyClaimedToday
	}

	if trackStreak {
		if r.HasClaimed() && r.LastClaimDate.DaysUntil(today) == 1 {
			r.Streak++
		} else {
			r.Streak = 1
		}
	}

	r.LastClaimDate = today
	r.Balance += reward
	return nil
}

// ApplyDelta adjusts the balance. Negative results are allowed.
func (r *LedgerRecord) ApplyDelta(delta int64) {
	r.Balance += delta
}
