package collector

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EarningsRadar/internal/model"
)

// memProfileStore is an in-memory ProfileStore that counts flushes.
type memProfileStore struct {
	mu      sync.Mutex
	records map[string]model.ProfileRecord
	flushes int
}

func newMemProfileStore() *memProfileStore {
	return &memProfileStore{records: make(map[string]model.ProfileRecord)}
}

func (s *memProfileStore) All() map[string]model.ProfileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]model.ProfileRecord, len(s.records))
	for sym, rec := range s.records {
		out[sym] = rec
	}
	return out
}

func (s *memProfileStore) Get(symbol string) (model.ProfileRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[symbol]
	return rec, ok
}

func (s *memProfileStore) Put(symbol string, rec model.ProfileRecord) {
	s.mu.Lock()
	s.records[symbol] = rec
	s.mu.Unlock()
}

func (s *memProfileStore) Flush() error {
	s.mu.Lock()
	s.flushes++
	s.mu.Unlock()
	return nil
}

func newTestProfileCollector(p Provider, store ProfileStore, now time.Time) *ProfileCollector {
	c := NewProfileCollector(p, store, zerolog.Nop())
	c.Delay = 0
	c.Now = func() time.Time { return now }
	return c
}

func TestProfileRefreshHonorsTTL(t *testing.T) {
	now := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	store := newMemProfileStore()
	store.Put("FRESH", model.ProfileRecord{Sector: "Energy", Industry: "Oil", LastUpdated: now.Add(-24 * time.Hour).UnixMilli()})
	store.Put("STALE", model.ProfileRecord{Sector: "Energy", Industry: "Oil", LastUpdated: now.Add(-31 * 24 * time.Hour).UnixMilli()})

	var mu sync.Mutex
	var fetched []string
	provider := &MockProvider{
		AssetProfileFunc: func(_ context.Context, symbol string) (string, string, error) {
			mu.Lock()
			fetched = append(fetched, symbol)
			mu.Unlock()
			return "Technology", "Semiconductors", nil
		},
	}

	c := newTestProfileCollector(provider, store, now)
	c.Refresh(context.Background(), []string{"FRESH", "STALE", "NEW"})

	// A fresh record is excluded even though it was explicitly requested.
	assert.Equal(t, []string{"STALE", "NEW"}, fetched)

	rec, ok := store.Get("STALE")
	require.True(t, ok)
	assert.Equal(t, "Technology", rec.Sector)
	assert.Equal(t, now.UnixMilli(), rec.LastUpdated)

	fresh, _ := store.Get("FRESH")
	assert.Equal(t, "Energy", fresh.Sector)
}

func TestProfileRefreshFailureDegradesToPlaceholder(t *testing.T) {
	now := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	store := newMemProfileStore()
	provider := &MockProvider{
		AssetProfileFunc: func(_ context.Context, symbol string) (string, string, error) {
			return "", "", assert.AnError
		},
	}

	c := newTestProfileCollector(provider, store, now)
	c.Refresh(context.Background(), []string{"BAD"})

	rec, ok := store.Get("BAD")
	require.True(t, ok)
	assert.Equal(t, "Unknown", rec.Sector)
	assert.Equal(t, "Unknown", rec.Industry)
	assert.Equal(t, now.UnixMilli(), rec.LastUpdated)
}

func TestProfileRefreshFlushCadence(t *testing.T) {
	now := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	store := newMemProfileStore()
	c := newTestProfileCollector(&MockProvider{}, store, now)
	c.FlushEvery = 2

	c.Refresh(context.Background(), []string{"A", "B", "C", "D", "E"})

	// Two periodic flushes (after 2 and 4 updates) plus the final one.
	assert.Equal(t, 3, store.flushes)
	assert.Len(t, store.All(), 5)
}

func TestProfileRefreshAllFresh(t *testing.T) {
	now := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	store := newMemProfileStore()
	store.Put("A", model.ProfileRecord{Sector: "X", Industry: "Y", LastUpdated: now.UnixMilli()})

	called := false
	provider := &MockProvider{
		AssetProfileFunc: func(_ context.Context, symbol string) (string, string, error) {
			called = true
			return "", "", nil
		},
	}

	c := newTestProfileCollector(provider, store, now)
	c.Refresh(context.Background(), []string{"A"})

	assert.False(t, called)
	assert.Zero(t, store.flushes)
	assert.False(t, c.Updating())
}
