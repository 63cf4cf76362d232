package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"EarningsRadar/internal/cache"
	"EarningsRadar/internal/calculator"
	"EarningsRadar/internal/model"
)

const defaultBarWindow = 7 * 24 * time.Hour

// FinancialsCollector computes the on-demand day-1 reaction payload for one
// symbol. Results are never cached and concurrent requests for the same
// symbol are not deduplicated; each performs its own upstream calls.
type FinancialsCollector struct {
	// Window is how far before and after the report instant price bars are
	// fetched.
	Window time.Duration
	// Now is the clock; overridable in tests.
	Now func() time.Time

	provider Provider
	cache    *cache.EarningsCache
	log      zerolog.Logger
}

// NewFinancialsCollector creates a collector with the default price window.
func NewFinancialsCollector(p Provider, ec *cache.EarningsCache, log zerolog.Logger) *FinancialsCollector {
	return &FinancialsCollector{
		Window:   defaultBarWindow,
		Now:      time.Now,
		provider: p,
		cache:    ec,
		log:      log.With().Str("component", "financials_collector").Logger(),
	}
}

// Collect returns actual EPS, surprise, revenue and the day-1 price move for
// the symbol's most recent past earnings report. Missing upstream data leaves
// the corresponding fields nil; only an outright provider failure on the
// summary fetch returns an error.
func (c *FinancialsCollector) Collect(ctx context.Context, symbol string) (*model.Day1MoveResult, error) {
	sum, err := c.provider.FinancialSummary(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch financial summary for %s: %w", symbol, err)
	}

	res := &model.Day1MoveResult{Symbol: symbol, FinancialCurrency: "USD"}
	if sum.FinancialCurrency != "" {
		res.FinancialCurrency = sum.FinancialCurrency
	}
	res.Revenue = sum.Revenue

	now := c.Now()
	if latest := calculator.LatestActual(sum.History, now); latest != nil {
		res.ActualEps = latest.EpsActual
		res.SurprisePct = latest.SurprisePercent
	}

	reportedAt, ok := calculator.LatestReport(sum.ReportDates, now)
	if !ok {
		return res, nil
	}

	bars, err := c.provider.DailyBars(ctx, symbol, reportedAt.Add(-c.Window), reportedAt.Add(c.Window))
	if err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("price window fetch failed, day-1 move unavailable")
		return res, nil
	}

	market := ""
	if snap, cached := c.cache.Get(symbol); cached {
		market = snap.Market
	}
	session := calculator.ClassifyReport(reportedAt, market)
	reportDate := reportedAt.UTC().Format(calculator.DateLayout)
	res.Day1Move = calculator.Day1Move(bars, reportDate, session)

	c.log.Debug().
		Str("symbol", symbol).
		Str("report_date", reportDate).
		Int("session", int(session)).
		Int("bars", len(bars)).
		Msg("computed day-1 reaction")

	return res, nil
}
