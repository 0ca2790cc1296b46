// Package csvledger keeps the points ledger in a single CSV file with the layout
// server_id,user_id,currency,last_claim_date,streak.
package csvledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"dotabot/models"
	"dotabot/service"
)

// Header is the canonical column layout
var Header = []string{"server_id", "user_id", "currency", "last_claim_date", "streak"}

// legacyHeader is the single-guild layout of older deployments
var legacyHeader = []string{"user_id", "currency", "last_daily"}

var (
	errDuplicateKey   = errors.New("duplicate ledger key")
	errUnknownHeader  = errors.New("unrecognised header")
	errLegacyNoGuild  = errors.New("legacy ledger needs a guild id")
	errNegativeStreak = errors.New("streak must not be negative")
)

// ReadOptions controls how legacy files are read
type ReadOptions struct {
	// LegacyGuildID is assigned to every row of a legacy user_id,currency,last_daily file
	LegacyGuildID int64

	// Location converts legacy last_daily instants to calendar dates. Defaults to UTC.
	Location *time.Location
}

// ReadRecords parses a ledger file in either the canonical or the legacy layout.
// Records are returned in file order. Any unparsable field is a *service.CorruptLedgerError.
func ReadRecords(r io.Reader, opts ReadOptions) ([]*models.LedgerRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, &service.CorruptLedgerError{Line: 1, Field: "header", Err: err}
	}
	header = trimHeader(header)

	var parse func(line int, row []string) (*models.LedgerRecord, error)
	switch {
	case slices.Equal(header, Header):
		parse = parseCanonical
	case slices.Equal(header, legacyHeader):
		if opts.LegacyGuildID == 0 {
			return nil, &service.CorruptLedgerError{Line: 1, Field: "header", Value: strings.Join(header, ","), Err: errLegacyNoGuild}
		}
		loc := opts.Location
		if loc == nil {
			loc = time.UTC
		}
		parse = func(line int, row []string) (*models.LedgerRecord, error) {
			return parseLegacy(line, row, opts.LegacyGuildID, loc)
		}
	default:
		return nil, &service.CorruptLedgerError{Line: 1, Field: "header", Value: strings.Join(header, ","), Err: errUnknownHeader}
	}

	var records []*models.LedgerRecord
	seen := make(map[[2]int64]int)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &service.CorruptLedgerError{Line: line, Field: "row", Err: err}
		}
		if len(row) != len(header) {
			return nil, &service.CorruptLedgerError{
				Line:  line,
				Field: "row",
				Value: strings.Join(row, ","),
				Err:   fmt.Errorf("expected %d fields, got %d", len(header), len(row)),
			}
		}

		record, err := parse(line, row)
		if err != nil {
			return nil, err
		}

		key := [2]int64{record.GuildID, record.UserID}
		if first, ok := seen[key]; ok {
			return nil, &service.CorruptLedgerError{
				Line:  line,
				Field: "user_id",
				Value: strconv.FormatInt(record.UserID, 10),
				Err:   fmt.Errorf("%w, first seen on line %d", errDuplicateKey, first),
			}
		}
		seen[key] = line
		records = append(records, record)
	}
	return records, nil
}

// WriteRecords writes records in the canonical layout
func WriteRecords(w io.Writer, records []*models.LedgerRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.GuildID, 10),
			strconv.FormatInt(r.UserID, 10),
			strconv.FormatInt(r.Balance, 10),
			r.LastClaimDate.String(),
			strconv.Itoa(r.Streak),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func parseCanonical(line int, row []string) (*models.LedgerRecord, error) {
	guildID, err := parseInt(line, "server_id", row[0])
	if err != nil {
		return nil, err
	}
	userID, err := parseInt(line, "user_id", row[1])
	if err != nil {
		return nil, err
	}
	balance, err := parseInt(line, "currency", row[2])
	if err != nil {
		return nil, err
	}
	lastClaim, err := models.ParseDate(strings.TrimSpace(row[3]))
	if err != nil {
		return nil, &service.CorruptLedgerError{Line: line, Field: "last_claim_date", Value: row[3], Err: err}
	}
	streak, err := parseInt(line, "streak", row[4])
	if err != nil {
		return nil, err
	}
	if streak < 0 {
		return nil, &service.CorruptLedgerError{Line: line, Field: "streak", Value: row[4], Err: errNegativeStreak}
	}

	return &models.LedgerRecord{
		GuildID:       guildID,
		UserID:        userID,
		Balance:       balance,
		LastClaimDate: lastClaim,
		Streak:        int(streak),
	}, nil
}

func parseLegacy(line int, row []string, guildID int64, loc *time.Location) (*models.LedgerRecord, error) {
	userID, err := parseInt(line, "user_id", row[0])
	if err != nil {
		return nil, err
	}
	balance, err := parseInt(line, "currency", row[1])
	if err != nil {
		return nil, err
	}
	lastClaim, err := parseInstant(strings.TrimSpace(row[2]), loc)
	if err != nil {
		return nil, &service.CorruptLedgerError{Line: line, Field: "last_daily", Value: row[2], Err: err}
	}

	return &models.LedgerRecord{
		GuildID:       guildID,
		UserID:        userID,
		Balance:       balance,
		LastClaimDate: lastClaim,
	}, nil
}

// parseInstant reads an ISO-8601 instant and returns its calendar day in loc.
// Instants without an offset are taken as UTC.
func parseInstant(s string, loc *time.Location) (models.Date, error) {
	if s == "" || s == models.NoClaimDate {
		return models.Date{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		naive, naiveErr := time.ParseInLocation("2006-01-02T15:04:05.999999999", s, time.UTC)
		if naiveErr != nil {
			return models.Date{}, err
		}
		t = naive
	}
	return models.DateOf(t.In(loc)), nil
}

func parseInt(line int, field, value string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, &service.CorruptLedgerError{Line: line, Field: field, Value: value, Err: err}
	}
	return n, nil
}

func trimHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return out
}
