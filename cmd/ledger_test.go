package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dotabot/infrastructure/csvledger"
	"dotabot/models"
	"dotabot/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSnapshotter struct {
	mock.Mock
}

func (m *mockSnapshotter) Snapshot(ctx context.Context) ([]*models.LedgerRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerRecord), args.Error(1)
}

func (m *mockSnapshotter) Restore(ctx context.Context, records []*models.LedgerRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func TestImportLedger_Legacy(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	input := "user_id,currency,last_daily\n" +
		"10,40,2024-05-02T03:00:00+00:00\n" +
		"11,5,none\n"

	dst := new(mockSnapshotter)
	dst.On("Restore", mock.Anything, mock.MatchedBy(func(records []*models.LedgerRecord) bool {
		return len(records) == 2 &&
			records[0].GuildID == 1001 &&
			records[0].LastClaimDate == models.Date{Year: 2024, Month: time.May, Day: 1} &&
			records[0].Streak == 0 &&
			records[1].LastClaimDate.IsZero()
	})).Return(nil)

	n, err := importLedger(context.Background(), strings.NewReader(input), csvledger.ReadOptions{
		LegacyGuildID: 1001,
		Location:      la,
	}, dst)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	dst.AssertExpectations(t)
}

func TestImportLedger_CorruptWritesNothing(t *testing.T) {
	input := "server_id,user_id,currency,last_claim_date,streak\n1,10,abc,none,0\n"
	dst := new(mockSnapshotter)

	_, err := importLedger(context.Background(), strings.NewReader(input), csvledger.ReadOptions{}, dst)

	var corrupt *service.CorruptLedgerError
	require.ErrorAs(t, err, &corrupt)
	dst.AssertNotCalled(t, "Restore", mock.Anything, mock.Anything)
}

func TestExportLedger(t *testing.T) {
	src := new(mockSnapshotter)
	src.On("Snapshot", mock.Anything).Return([]*models.LedgerRecord{
		{GuildID: 1, UserID: 10, Balance: 75, LastClaimDate: models.Date{Year: 2024, Month: time.May, Day: 1}, Streak: 2},
		{GuildID: 2, UserID: 10, Balance: -5},
	}, nil)

	var buf bytes.Buffer
	n, err := exportLedger(context.Background(), &buf, src)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t,
		"server_id,user_id,currency,last_claim_date,streak\n1,10,75,2024-05-01,2\n2,10,-5,none,0\n",
		buf.String())
}

func TestExportLedger_SnapshotError(t *testing.T) {
	src := new(mockSnapshotter)
	src.On("Snapshot", mock.Anything).Return(nil, errors.New("connection reset"))

	_, err := exportLedger(context.Background(), &bytes.Buffer{}, src)

	assert.ErrorContains(t, err, "connection reset")
}
