package model

import "time"

// EarningsSnapshot is the latest known quote and earnings-date state for one
// symbol. JSON field names mirror the upstream quote payload so existing
// calendar consumers keep working unchanged.
type EarningsSnapshot struct {
	Symbol                     string   `json:"symbol"`
	ShortName                  string   `json:"shortName"`
	Exchange                   string   `json:"exchange"`
	Market                     string   `json:"market"`
	EarningsTimestamp          *int64   `json:"earningsTimestamp,omitempty"`
	EarningsTimestampStart     *int64   `json:"earningsTimestampStart,omitempty"`
	EarningsTimestampEnd       *int64   `json:"earningsTimestampEnd,omitempty"`
	EpsCurrentYear             *float64 `json:"epsCurrentYear,omitempty"`
	EpsForward                 *float64 `json:"epsForward,omitempty"`
	EpsTrailingTwelveMonths    *float64 `json:"epsTrailingTwelveMonths,omitempty"`
	TrailingPE                 *float64 `json:"trailingPE,omitempty"`
	ForwardPE                  *float64 `json:"forwardPE,omitempty"`
	MarketCap                  *float64 `json:"marketCap,omitempty"`
	FinancialCurrency          string   `json:"financialCurrency,omitempty"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice,omitempty"`
	RegularMarketChangePercent *float64 `json:"regularMarketChangePercent,omitempty"`
}

// ProfileRecord holds slow-moving sector/industry metadata for one symbol.
// LastUpdated is a millisecond epoch; records older than the profile TTL are
// eligible for re-fetch.
type ProfileRecord struct {
	Sector      string `json:"sector"`
	Industry    string `json:"industry"`
	LastUpdated int64  `json:"lastUpdated"`
}

// EarningsHistoryEvent is one reported quarter. EpsActual stays nil until the
// quarter has actually been reported; upstream occasionally ships future
// quarters with placeholder actuals, so consumers must also check Quarter.
type EarningsHistoryEvent struct {
	Quarter         time.Time
	EpsActual       *float64
	SurprisePercent *float64
}

// PriceBar is one trading-day observation. Date is the exchange-local trading
// day as an ISO date string, not an instant; non-trading days are simply
// absent from a series.
type PriceBar struct {
	Date  string
	Close float64
}

// FinancialSummary bundles the per-symbol modules returned by the provider's
// summary endpoint: reported-quarter history, report timestamps, and revenue.
type FinancialSummary struct {
	History           []EarningsHistoryEvent
	ReportDates       []time.Time
	Revenue           *float64
	FinancialCurrency string
}

// Day1MoveResult is the derived earnings-reaction payload. It is computed
// fresh on every request and never cached; missing upstream data degrades to
// nil fields rather than an error.
type Day1MoveResult struct {
	Symbol            string   `json:"symbol"`
	ActualEps         *float64 `json:"actualEps"`
	SurprisePct       *float64 `json:"surprisePct"`
	Revenue           *float64 `json:"revenue"`
	Day1Move          *float64 `json:"day1Move"`
	FinancialCurrency string   `json:"financialCurrency"`
}
