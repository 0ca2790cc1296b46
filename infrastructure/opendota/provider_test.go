package opendota

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"dotabot/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const heroStatsJSON = `[
	{"id": 1, "localized_name": "Anti-Mage", "img": "/apps/dota2/images/heroes/antimage.png", "base_health": 120, "move_speed": 310, "attack_rate": 1.4},
	{"id": 2, "localized_name": "Axe", "base_armor": -1},
	{"id": 3, "localized_name": "Statless"}
]`

func team(ids ...int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func publicMatchesJSON(startID int64, count int) string {
	var entries []string
	for i := 0; i < count; i++ {
		entries = append(entries, fmt.Sprintf(
			`{"match_id": %d, "radiant_win": %t, "duration": 1800, "radiant_team": %s, "dire_team": %s}`,
			startID+int64(i), i%2 == 0, team(1, 2, 4, 5, 6), team(7, 8, 9, 10, 11)))
	}
	// not 5v5
	entries = append(entries, fmt.Sprintf(`{"match_id": %d, "radiant_win": true, "duration": 900, "radiant_team": %s, "dire_team": %s}`,
		startID+1000, team(1, 2), team(3)))
	// missing winner
	entries = append(entries, fmt.Sprintf(`{"match_id": %d, "duration": 900, "radiant_team": %s, "dire_team": %s}`,
		startID+2000, team(1, 2, 4, 5, 6), team(7, 8, 9, 10, 11)))
	return "[" + strings.Join(entries, ",") + "]"
}

type fakeOpenDota struct {
	server        *httptest.Server
	heroCalls     atomic.Int32
	matchCalls    atomic.Int32
	matchesStatus int
	matchesBody   func(call int32) string
	matchesGate   chan struct{} // when set, /publicMatches waits for it to close
}

func newFakeOpenDota(t *testing.T, opts ...func(*fakeOpenDota)) *fakeOpenDota {
	t.Helper()
	f := &fakeOpenDota{matchesStatus: http.StatusOK}
	f.matchesBody = func(int32) string { return publicMatchesJSON(100, 3) }
	for _, opt := range opts {
		opt(f)
	}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/heroStats":
			f.heroCalls.Add(1)
			fmt.Fprint(w, heroStatsJSON)
		case "/api/publicMatches":
			call := f.matchCalls.Add(1)
			if f.matchesGate != nil {
				<-f.matchesGate
			}
			if f.matchesStatus != http.StatusOK {
				w.WriteHeader(f.matchesStatus)
				return
			}
			fmt.Fprint(w, f.matchesBody(call))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeOpenDota) provider(t *testing.T, cacheDir string) *Provider {
	t.Helper()
	return NewProvider(NewClient(f.server.URL+"/api", 0), cacheDir, DefaultImageBaseURL)
}

func TestProvider_InitCachesHeroStats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := newFakeOpenDota(t)
	cacheDir := filepath.Join(t.TempDir(), "cache")

	require.NoError(t, api.provider(t, cacheDir).Init(ctx))
	assert.Equal(t, int32(1), api.heroCalls.Load())

	cached, err := os.ReadFile(filepath.Join(cacheDir, heroStatsFile))
	require.NoError(t, err)
	assert.JSONEq(t, heroStatsJSON, string(cached))

	require.NoError(t, api.provider(t, cacheDir).Init(ctx))
	assert.Equal(t, int32(1), api.heroCalls.Load(), "second init reads the cache")
}

func TestProvider_RandomHeroWithStat(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := newFakeOpenDota(t)
	p := api.provider(t, "")
	require.NoError(t, p.Init(ctx))

	// first candidate, third of its stats in table order
	p.intN = func(n int) int {
		if n == 2 {
			return 0
		}
		return 2
	}
	stat, err := p.RandomHeroWithStat(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Anti-Mage", stat.HeroName)
	assert.Equal(t, "move_speed", stat.StatName)
	assert.Equal(t, 310.0, stat.RealValue)
	assert.Equal(t, DefaultImageBaseURL+"/apps/dota2/images/heroes/antimage.png", stat.ImageURL)

	p.intN = func(n int) int { return n - 1 }
	stat, err = p.RandomHeroWithStat(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Axe", stat.HeroName)
	assert.Equal(t, "base_armor", stat.StatName)
	assert.Equal(t, -1.0, stat.RealValue)
	assert.Empty(t, stat.ImageURL)
}

func TestProvider_RandomHeroWithoutTable(t *testing.T) {
	t.Parallel()
	api := newFakeOpenDota(t)
	_, err := api.provider(t, "").RandomHeroWithStat(context.Background())
	assert.ErrorIs(t, err, service.ErrContentUnavailable)
}

func TestProvider_NextMatchNeverRepeats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := newFakeOpenDota(t)
	// every fetch returns the same three matches
	p := api.provider(t, "")
	require.NoError(t, p.Init(ctx))

	seen := map[int64]bool{}
	for i := 0; i < 3; i++ {
		match, err := p.NextMatch(ctx)
		require.NoError(t, err)
		assert.False(t, seen[match.MatchID], "match %d served twice", match.MatchID)
		seen[match.MatchID] = true
		assert.True(t, match.IsFiveVersusFive())
	}

	_, err := p.NextMatch(ctx)
	assert.ErrorIs(t, err, service.ErrContentUnavailable)
}

func TestProvider_NextMatchResolvesHeroNames(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := newFakeOpenDota(t)
	p := api.provider(t, "")
	require.NoError(t, p.Init(ctx))

	match, err := p.NextMatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100), match.MatchID)
	assert.True(t, match.RadiantWin)
	assert.Equal(t, 1800, match.DurationSeconds)
	assert.Equal(t, []string{"Anti-Mage", "Axe", "HeroID 4", "HeroID 5", "HeroID 6"}, match.RadiantHeroes)
	assert.Len(t, match.DireHeroes, 5)
}

func TestProvider_RefillsWhenLow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := newFakeOpenDota(t, func(f *fakeOpenDota) {
		f.matchesBody = func(call int32) string { return publicMatchesJSON(int64(call)*100, 5) }
	})
	p := api.provider(t, "")

	for i := 0; i < 3; i++ {
		_, err := p.NextMatch(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), api.matchCalls.Load(), "pool of five serves three without refilling")

	_, err := p.NextMatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), api.matchCalls.Load(), "two left is below the refill mark")
}

func TestProvider_FetchFailureIsUnavailable(t *testing.T) {
	t.Parallel()
	api := newFakeOpenDota(t, func(f *fakeOpenDota) {
		f.matchesStatus = http.StatusServiceUnavailable
	})

	_, err := api.provider(t, "").NextMatch(context.Background())
	assert.ErrorIs(t, err, service.ErrContentUnavailable)
}

func TestClient_HTTPErrors(t *testing.T) {
	t.Parallel()
	api := newFakeOpenDota(t)
	client := NewClient(api.server.URL+"/missing", 60)

	_, err := client.HeroStats(context.Background())
	assert.ErrorContains(t, err, "unexpected status 404")
}

func TestProvider_SlowRefillDoesNotBlockHeroStats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gate := make(chan struct{})
	api := newFakeOpenDota(t, func(f *fakeOpenDota) {
		f.matchesGate = gate
		// five matches keep the pool above the refill mark for both players
		f.matchesBody = func(int32) string { return publicMatchesJSON(100, 5) }
	})
	p := api.provider(t, "")
	require.NoError(t, p.Init(ctx))

	const players = 2
	matches := make(chan int64, players)
	for i := 0; i < players; i++ {
		go func() {
			match, err := p.NextMatch(ctx)
			if err != nil {
				matches <- 0
				return
			}
			matches <- match.MatchID
		}()
	}
	require.Eventually(t, func() bool { return api.matchCalls.Load() == 1 }, time.Second, 5*time.Millisecond)

	heroes := make(chan error, 1)
	go func() {
		_, err := p.RandomHeroWithStat(ctx)
		heroes <- err
	}()
	select {
	case err := <-heroes:
		require.NoError(t, err)
	case <-time.After(time.Second):
		close(gate)
		t.Fatal("RandomHeroWithStat waited for the match refill")
	}

	close(gate)
	first, second := <-matches, <-matches
	assert.NotZero(t, first)
	assert.NotZero(t, second)
	assert.NotEqual(t, first, second)
	assert.Equal(t, int32(1), api.matchCalls.Load(), "concurrent refills share one request")
}
