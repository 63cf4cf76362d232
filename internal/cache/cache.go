package cache

import (
	"sort"
	"sync"

	"EarningsRadar/internal/model"
)

// EarningsCache is the authoritative in-memory map of symbol to latest known
// earnings snapshot. A refresh cycle builds a complete replacement map and
// installs it with Swap, so readers always observe a single generation, never
// a mix of two.
type EarningsCache struct {
	mu   sync.RWMutex
	data map[string]model.EarningsSnapshot
}

// NewEarnings creates an empty cache.
func NewEarnings() *EarningsCache {
	return &EarningsCache{data: make(map[string]model.EarningsSnapshot)}
}

// Swap replaces the entire cache contents with next.
func (c *EarningsCache) Swap(next map[string]model.EarningsSnapshot) {
	if next == nil {
		next = make(map[string]model.EarningsSnapshot)
	}
	c.mu.Lock()
	c.data = next
	c.mu.Unlock()
}

// Get returns the snapshot for one symbol.
func (c *EarningsCache) Get(symbol string) (model.EarningsSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.data[symbol]
	return snap, ok
}

// Snapshot returns all cached snapshots sorted by symbol. The slice is a copy
// and safe to hold across a concurrent Swap.
func (c *EarningsCache) Snapshot() []model.EarningsSnapshot {
	c.mu.RLock()
	data := c.data
	c.mu.RUnlock()

	out := make([]model.EarningsSnapshot, 0, len(data))
	for _, snap := range data {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Len returns the number of cached symbols.
func (c *EarningsCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// TrackedSet is the set of ticker symbols the daily refresh re-fetches.
// Refresh requests union new symbols in; explicit saves replace the whole set.
type TrackedSet struct {
	mu      sync.Mutex
	symbols map[string]struct{}
}

// NewTrackedSet creates a set seeded with the given symbols.
func NewTrackedSet(symbols ...string) *TrackedSet {
	s := &TrackedSet{symbols: make(map[string]struct{}, len(symbols))}
	for _, sym := range symbols {
		s.symbols[sym] = struct{}{}
	}
	return s
}

// Union adds the given symbols and returns the resulting full set.
func (s *TrackedSet) Union(symbols []string) []string {
	s.mu.Lock()
	for _, sym := range symbols {
		if sym != "" {
			s.symbols[sym] = struct{}{}
		}
	}
	out := s.snapshotLocked()
	s.mu.Unlock()
	return out
}

// Replace swaps the whole set for the given symbols.
func (s *TrackedSet) Replace(symbols []string) {
	next := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		if sym != "" {
			next[sym] = struct{}{}
		}
	}
	s.mu.Lock()
	s.symbols = next
	s.mu.Unlock()
}

// Snapshot returns the current symbols sorted ascending.
func (s *TrackedSet) Snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Len returns the set size.
func (s *TrackedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.symbols)
}

func (s *TrackedSet) snapshotLocked() []string {
	out := make([]string, 0, len(s.symbols))
	for sym := range s.symbols {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}
