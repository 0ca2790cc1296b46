package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructDatabaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		baseURL  string
		dbName   string
		expected string
	}{
		{
			name:     "empty name returns base",
			baseURL:  "postgres://u:p@localhost:5432/existing",
			dbName:   "",
			expected: "postgres://u:p@localhost:5432/existing",
		},
		{
			name:     "appends name and sslmode",
			baseURL:  "postgres://u:p@localhost:5432",
			dbName:   "dotabot",
			expected: "postgres://u:p@localhost:5432/dotabot?sslmode=disable",
		},
		{
			name:     "trailing slash trimmed",
			baseURL:  "postgres://u:p@localhost:5432/",
			dbName:   "dotabot",
			expected: "postgres://u:p@localhost:5432/dotabot?sslmode=disable",
		},
		{
			name:     "keeps query parameters",
			baseURL:  "postgres://u:p@localhost:5432?connect_timeout=5",
			dbName:   "dotabot",
			expected: "postgres://u:p@localhost:5432/dotabot?connect_timeout=5&sslmode=disable",
		},
		{
			name:     "explicit sslmode preserved",
			baseURL:  "postgres://u:p@db:5432?sslmode=require",
			dbName:   "dotabot",
			expected: "postgres://u:p@db:5432/dotabot?sslmode=require",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, ConstructDatabaseURL(tt.baseURL, tt.dbName))
		})
	}
}
