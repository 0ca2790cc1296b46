package opendota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"

	"dotabot/models"
	"dotabot/service"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	heroStatsFile = "heroStats.json"
	refillBelow   = 3
)

// Hero is one entry of the hero table
type Hero struct {
	ID    int
	Name  string
	Image string
	Stats map[string]float64 // only the trivia-relevant numeric stats
}

// Provider implements service.ContentProvider. The hero table is loaded once by
// Init; the match pool refills from the API when it runs low and never serves
// the same match twice. Fetches run without holding mu, and concurrent refills
// share one request.
type Provider struct {
	client       *Client
	cacheDir     string
	imageBaseURL string
	intN         func(n int) int
	refills      singleflight.Group

	mu        sync.Mutex
	heroes    []Hero
	heroNames map[int]string
	pool      []models.MatchRecord
	served    map[int64]struct{}
}

var _ service.ContentProvider = (*Provider)(nil)

// NewProvider creates a provider. cacheDir may be empty to disable the hero cache.
func NewProvider(client *Client, cacheDir, imageBaseURL string) *Provider {
	return &Provider{
		client:       client,
		cacheDir:     cacheDir,
		imageBaseURL: imageBaseURL,
		intN:         rand.Intn,
		heroNames:    make(map[int]string),
		served:       make(map[int64]struct{}),
	}
}

// Init loads the hero table from the cache directory, fetching and caching it
// when the file is missing
func (p *Provider) Init(ctx context.Context) error {
	data, err := p.loadHeroStats(ctx)
	if err != nil {
		return err
	}
	heroes, err := parseHeroes(data)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.heroes = heroes
	for _, h := range heroes {
		p.heroNames[h.ID] = h.Name
	}

	log.WithField("heroes", len(heroes)).Info("Loaded hero table")
	return nil
}

// NextMatch returns a 5v5 match not served before
func (p *Provider) NextMatch(ctx context.Context) (*models.MatchRecord, error) {
	p.mu.Lock()
	low := len(p.pool) < refillBelow
	p.mu.Unlock()

	if low {
		p.refill(ctx)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.pool) > 0 {
		match := p.pool[0]
		p.pool = p.pool[1:]
		if _, seen := p.served[match.MatchID]; seen {
			continue
		}
		p.served[match.MatchID] = struct{}{}
		match.RadiantHeroes = p.heroNamesLocked(match.RadiantTeam)
		match.DireHeroes = p.heroNamesLocked(match.DireTeam)
		return &match, nil
	}
	return nil, service.ErrContentUnavailable
}

// RandomHeroWithStat picks a hero uniformly among those with a relevant stat,
// then one of its stats uniformly
func (p *Provider) RandomHeroWithStat(_ context.Context) (*models.HeroStat, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var candidates []Hero
	for _, h := range p.heroes {
		if len(h.Stats) > 0 {
			candidates = append(candidates, h)
		}
	}
	if len(candidates) == 0 {
		return nil, service.ErrContentUnavailable
	}

	hero := candidates[p.intN(len(candidates))]
	var stats []string
	for _, name := range models.RelevantHeroStats {
		if _, ok := hero.Stats[name]; ok {
			stats = append(stats, name)
		}
	}
	stat := stats[p.intN(len(stats))]

	result := &models.HeroStat{
		HeroName:  hero.Name,
		StatName:  stat,
		RealValue: hero.Stats[stat],
	}
	if hero.Image != "" {
		result.ImageURL = p.imageBaseURL + hero.Image
	}
	return result, nil
}

// refill replaces the pool with fresh 5v5 matches that were not served yet.
// Fetch errors leave the pool as is.
func (p *Provider) refill(ctx context.Context) {
	p.refills.Do("publicMatches", func() (any, error) {
		matches, err := p.client.PublicMatches(ctx)
		if err != nil {
			log.WithError(err).Warn("Failed to fetch public matches")
			return nil, nil
		}
		p.swapPool(matches)
		return nil, nil
	})
}

func (p *Provider) swapPool(matches []PublicMatch) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var pool []models.MatchRecord
	for _, m := range matches {
		record, ok := toMatchRecord(m)
		if !ok || !record.IsFiveVersusFive() {
			continue
		}
		if _, seen := p.served[record.MatchID]; seen {
			continue
		}
		pool = append(pool, record)
	}
	p.pool = pool

	log.WithFields(log.Fields{
		"fetched": len(matches),
		"pooled":  len(pool),
	}).Debug("Refilled match pool")
}

func (p *Provider) heroNamesLocked(ids []int) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		if name, ok := p.heroNames[id]; ok {
			names[i] = name
		} else {
			names[i] = fmt.Sprintf("HeroID %d", id)
		}
	}
	return names
}

func (p *Provider) loadHeroStats(ctx context.Context) ([]byte, error) {
	if p.cacheDir == "" {
		return p.client.HeroStats(ctx)
	}

	path := filepath.Join(p.cacheDir, heroStatsFile)
	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read hero cache: %w", err)
	}

	log.WithField("path", path).Info("Hero cache not found, fetching from OpenDota")
	data, err = p.client.HeroStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("hero cache missing and fetch failed: %w", err)
	}
	if err := os.MkdirAll(p.cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write hero cache: %w", err)
	}
	return data, nil
}

func parseHeroes(data []byte) ([]Hero, error) {
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode hero stats: %w", err)
	}

	heroes := make([]Hero, 0, len(raw))
	for _, entry := range raw {
		id, ok := entry["id"].(float64)
		if !ok {
			continue
		}
		hero := Hero{ID: int(id), Stats: make(map[string]float64)}
		if name, ok := entry["localized_name"].(string); ok {
			hero.Name = name
		} else {
			hero.Name = fmt.Sprintf("HeroID_%d", hero.ID)
		}
		if img, ok := entry["img"].(string); ok {
			hero.Image = img
		}
		for _, stat := range models.RelevantHeroStats {
			if v, ok := entry[stat].(float64); ok {
				hero.Stats[stat] = v
			}
		}
		heroes = append(heroes, hero)
	}
	return heroes, nil
}

func toMatchRecord(m PublicMatch) (models.MatchRecord, bool) {
	if m.MatchID == 0 || m.RadiantWin == nil || m.Duration == nil {
		return models.MatchRecord{}, false
	}
	radiant, ok := decodeTeam(m.RadiantTeam)
	if !ok {
		return models.MatchRecord{}, false
	}
	dire, ok := decodeTeam(m.DireTeam)
	if !ok {
		return models.MatchRecord{}, false
	}
	return models.MatchRecord{
		MatchID:         m.MatchID,
		RadiantWin:      *m.RadiantWin,
		DurationSeconds: *m.Duration,
		RadiantTeam:     radiant,
		DireTeam:        dire,
	}, true
}

// decodeTeam accepts a JSON array of hero ids
func decodeTeam(raw json.RawMessage) ([]int, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var ids []int
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, false
	}
	return ids, true
}
