package collector

import (
	"context"
	"time"

	"EarningsRadar/internal/model"
)

// Provider defines the interface for the upstream market-data source.
type Provider interface {
	// Quotes performs one bulk quote lookup for a batch of symbols.
	Quotes(ctx context.Context, symbols []string) ([]model.EarningsSnapshot, error)
	// AssetProfile fetches sector/industry metadata for one symbol.
	AssetProfile(ctx context.Context, symbol string) (sector, industry string, err error)
	// FinancialSummary fetches reported-quarter history, report timestamps and
	// revenue for one symbol.
	FinancialSummary(ctx context.Context, symbol string) (*model.FinancialSummary, error)
	// DailyBars fetches daily closing bars over [from, to].
	DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error)
	Name() string
}

// ProfileStore is the durable store backing profile enrichment. Put only
// stages a record; Flush persists everything staged since the last flush.
type ProfileStore interface {
	All() map[string]model.ProfileRecord
	Get(symbol string) (model.ProfileRecord, bool)
	Put(symbol string, rec model.ProfileRecord)
	Flush() error
}

// MockProvider returns controllable fixed data for development and testing.
// Unset funcs fall back to minimal synthetic responses.
type MockProvider struct {
	QuotesFunc           func(ctx context.Context, symbols []string) ([]model.EarningsSnapshot, error)
	AssetProfileFunc     func(ctx context.Context, symbol string) (string, string, error)
	FinancialSummaryFunc func(ctx context.Context, symbol string) (*model.FinancialSummary, error)
	DailyBarsFunc        func(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error)
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Quotes(ctx context.Context, symbols []string) ([]model.EarningsSnapshot, error) {
	if m.QuotesFunc != nil {
		return m.QuotesFunc(ctx, symbols)
	}
	out := make([]model.EarningsSnapshot, 0, len(symbols))
	for _, sym := range symbols {
		out = append(out, model.EarningsSnapshot{Symbol: sym, ShortName: sym, Market: "us_market"})
	}
	return out, nil
}

func (m *MockProvider) AssetProfile(ctx context.Context, symbol string) (string, string, error) {
	if m.AssetProfileFunc != nil {
		return m.AssetProfileFunc(ctx, symbol)
	}
	return "Technology", "Software - Application", nil
}

func (m *MockProvider) FinancialSummary(ctx context.Context, symbol string) (*model.FinancialSummary, error) {
	if m.FinancialSummaryFunc != nil {
		return m.FinancialSummaryFunc(ctx, symbol)
	}
	return &model.FinancialSummary{FinancialCurrency: "USD"}, nil
}

func (m *MockProvider) DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error) {
	if m.DailyBarsFunc != nil {
		return m.DailyBarsFunc(ctx, symbol, from, to)
	}
	return nil, nil
}
