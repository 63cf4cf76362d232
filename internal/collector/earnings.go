package collector

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"EarningsRadar/internal/cache"
	"EarningsRadar/internal/model"
)

const (
	defaultBatchSize  = 50
	defaultBatchDelay = 500 * time.Millisecond
)

// EarningsCollector rebuilds the earnings cache from bulk quote lookups,
// batch by batch, with a fixed delay between batches to respect provider
// rate limits.
type EarningsCollector struct {
	// BatchSize is the number of symbols per bulk quote request.
	BatchSize int
	// BatchDelay is the minimum spacing between batch requests.
	BatchDelay time.Duration

	provider Provider
	cache    *cache.EarningsCache
	tracked  *cache.TrackedSet
	log      zerolog.Logger
	running  atomic.Bool
}

// NewEarningsCollector creates a collector with default batching.
func NewEarningsCollector(p Provider, ec *cache.EarningsCache, ts *cache.TrackedSet, log zerolog.Logger) *EarningsCollector {
	return &EarningsCollector{
		BatchSize:  defaultBatchSize,
		BatchDelay: defaultBatchDelay,
		provider:   p,
		cache:      ec,
		tracked:    ts,
		log:        log.With().Str("component", "earnings_collector").Logger(),
	}
}

// Updating reports whether a refresh cycle is currently in flight.
func (c *EarningsCollector) Updating() bool {
	return c.running.Load()
}

// Refresh rebuilds the earnings cache for the given symbols and replaces the
// tracked set with them. A call while a cycle is already in flight is dropped
// silently; callers observe progress through Updating. A failed batch is
// logged and skipped, so its symbols are simply absent from the new cache
// generation.
func (c *EarningsCollector) Refresh(ctx context.Context, symbols []string) {
	if len(symbols) == 0 {
		return
	}
	if !c.running.CompareAndSwap(false, true) {
		c.log.Debug().Msg("earnings refresh already in flight, dropping request")
		return
	}
	defer c.running.Store(false)

	log := c.log.With().Str("cycle", uuid.NewString()).Logger()
	c.tracked.Replace(symbols)
	log.Info().Int("symbols", len(symbols)).Msg("fetching earnings dates")

	limiter := rate.NewLimiter(rate.Every(c.BatchDelay), 1)
	batches := (len(symbols) + c.BatchSize - 1) / c.BatchSize
	next := make(map[string]model.EarningsSnapshot, len(symbols))

	for i := 0; i < len(symbols); i += c.BatchSize {
		if err := limiter.Wait(ctx); err != nil {
			log.Warn().Err(err).Msg("refresh cycle interrupted")
			break
		}
		end := i + c.BatchSize
		if end > len(symbols) {
			end = len(symbols)
		}
		batch := i/c.BatchSize + 1

		quotes, err := c.provider.Quotes(ctx, symbols[i:end])
		if err != nil {
			log.Error().Err(err).Int("batch", batch).Msg("batch fetch failed")
			continue
		}
		for _, q := range quotes {
			if q.Symbol == "" {
				continue
			}
			next[q.Symbol] = q
		}
		log.Info().Int("batch", batch).Int("batches", batches).Msg("fetched batch")
	}

	c.cache.Swap(next)
	log.Info().Int("cached", len(next)).Msg("finished fetching earnings data")
}
