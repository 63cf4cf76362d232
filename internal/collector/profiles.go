package collector

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"EarningsRadar/internal/model"
)

const (
	defaultProfileTTL   = 30 * 24 * time.Hour
	defaultProfileDelay = 800 * time.Millisecond
	defaultFlushEvery   = 10

	unknownSector = "Unknown"
)

// ProfileCollector enriches symbols with sector/industry metadata. The
// summary endpoint is more rate-limit-sensitive upstream than bulk quotes, so
// symbols are fetched one at a time with a longer delay, and the store is
// flushed periodically so a crash loses at most a handful of updates.
type ProfileCollector struct {
	// TTL is how long a fetched record stays fresh.
	TTL time.Duration
	// Delay is the minimum spacing between per-symbol requests.
	Delay time.Duration
	// FlushEvery persists the store after this many successful updates.
	FlushEvery int
	// Now is the clock; overridable in tests.
	Now func() time.Time

	provider Provider
	store    ProfileStore
	log      zerolog.Logger
	running  atomic.Bool
}

// NewProfileCollector creates a collector with default TTL and pacing.
func NewProfileCollector(p Provider, store ProfileStore, log zerolog.Logger) *ProfileCollector {
	return &ProfileCollector{
		TTL:        defaultProfileTTL,
		Delay:      defaultProfileDelay,
		FlushEvery: defaultFlushEvery,
		Now:        time.Now,
		provider:   p,
		store:      store,
		log:        log.With().Str("component", "profile_collector").Logger(),
	}
}

// Updating reports whether an enrichment cycle is currently in flight.
func (c *ProfileCollector) Updating() bool {
	return c.running.Load()
}

// Refresh fetches profiles for symbols with no record or a record older than
// the TTL. Runs independently of the earnings refresh under its own
// single-flight guard; a concurrent call is dropped silently. Per-symbol
// failures degrade to an Unknown/Unknown placeholder record.
func (c *ProfileCollector) Refresh(ctx context.Context, symbols []string) {
	if len(symbols) == 0 {
		return
	}
	if !c.running.CompareAndSwap(false, true) {
		c.log.Debug().Msg("profile refresh already in flight, dropping request")
		return
	}
	defer c.running.Store(false)

	toFetch := c.eligible(symbols)
	if len(toFetch) == 0 {
		c.log.Info().Msg("all profiles are up to date")
		return
	}

	log := c.log.With().Str("cycle", uuid.NewString()).Logger()
	log.Info().Int("symbols", len(toFetch)).Msg("fetching profiles")

	limiter := rate.NewLimiter(rate.Every(c.Delay), 1)
	updated := 0
	for _, sym := range toFetch {
		if err := limiter.Wait(ctx); err != nil {
			log.Warn().Err(err).Msg("profile cycle interrupted")
			break
		}

		sector, industry, err := c.provider.AssetProfile(ctx, sym)
		if err != nil {
			log.Warn().Err(err).Str("symbol", sym).Msg("profile fetch failed")
			sector, industry = "", ""
		}
		if sector == "" {
			sector = unknownSector
		}
		if industry == "" {
			industry = unknownSector
		}

		c.store.Put(sym, model.ProfileRecord{
			Sector:      sector,
			Industry:    industry,
			LastUpdated: c.Now().UnixMilli(),
		})
		updated++
		if updated%c.FlushEvery == 0 {
			c.flush(log)
		}
	}

	c.flush(log)
	log.Info().Int("updated", updated).Msg("finished fetching profile data")
}

// eligible filters to symbols with no record or a stale one.
func (c *ProfileCollector) eligible(symbols []string) []string {
	now := c.Now()
	var out []string
	for _, sym := range symbols {
		rec, ok := c.store.Get(sym)
		if !ok || now.Sub(time.UnixMilli(rec.LastUpdated)) > c.TTL {
			out = append(out, sym)
		}
	}
	return out
}

func (c *ProfileCollector) flush(log zerolog.Logger) {
	if err := c.store.Flush(); err != nil {
		log.Error().Err(err).Msg("persist profiles failed")
	}
}
