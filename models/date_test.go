package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Date
		wantErr bool
	}{
		{input: "2024-01-31", want: Date{2024, time.January, 31}},
		{input: "none", want: Date{}},
		{input: "", want: Date{}},
		{input: "2024-13-01", wantErr: true},
		{input: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDate_StringRoundTrip(t *testing.T) {
	t.Parallel()

	d := Date{2023, time.December, 5}
	assert.Equal(t, "2023-12-05", d.String())
	assert.Equal(t, "none", Date{}.String())

	parsed, err := ParseDate(d.String())
	require.NoError(t, err)
	assert.Equal(t, d, parsed)
}

func TestDate_DaysUntil(t *testing.T) {
	t.Parallel()

	d := Date{2023, time.December, 31}
	assert.Equal(t, 1, d.DaysUntil(Date{2024, time.January, 1}))
	assert.Equal(t, 0, d.DaysUntil(d))
	assert.Equal(t, -1, d.DaysUntil(Date{2023, time.December, 30}))
	assert.Equal(t, Date{2024, time.March, 1}, Date{2024, time.February, 28}.AddDays(2))
}

func TestDateOf_UsesLocation(t *testing.T) {
	t.Parallel()

	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	instant := time.Date(2024, 6, 2, 5, 0, 0, 0, time.UTC)
	assert.Equal(t, Date{2024, time.June, 1}, DateOf(instant.In(la)))
	assert.Equal(t, Date{2024, time.June, 2}, DateOf(instant))
}
