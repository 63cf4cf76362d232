package calculator

import (
	"time"

	"EarningsRadar/internal/model"
)

// DateLayout is the ISO calendar-date format used to match a report instant
// against daily price bars.
const DateLayout = "2006-01-02"

// Session says when an earnings report was disclosed relative to the trading
// session of its report day.
type Session int

const (
	// BeforeMarketOpen means the reaction is the gap into the report day.
	BeforeMarketOpen Session = iota
	// AfterMarketClose means the reaction is the gap into the next trading day.
	AfterMarketClose
)

// marketCutoffUTC maps a provider market code to the UTC hour-of-day that
// separates "reported before the local session opened" from "reported after
// it closed". The values are empirical per-region approximations and are kept
// literal rather than derived from exchange calendars.
var marketCutoffUTC = map[string]int{
	"us_market": 15,
	"hk_market": 4,
	"cn_market": 4,
	"jp_market": 3,
}

const defaultCutoffUTC = 15 // US

// ClassifyReport classifies a report instant as before-market-open or
// after-market-close for the given market code. Unknown markets fall back to
// the US cutoff.
func ClassifyReport(reportedAt time.Time, market string) Session {
	cutoff, ok := marketCutoffUTC[market]
	if !ok {
		cutoff = defaultCutoffUTC
	}
	if reportedAt.UTC().Hour() < cutoff {
		return BeforeMarketOpen
	}
	return AfterMarketClose
}

// LatestActual returns the chronologically last reported quarter whose
// quarter-end date is not in the future and whose actual EPS is populated.
// Future quarters can arrive with placeholder actuals and must never win.
func LatestActual(history []model.EarningsHistoryEvent, now time.Time) *model.EarningsHistoryEvent {
	var latest *model.EarningsHistoryEvent
	for i := range history {
		e := &history[i]
		if e.EpsActual == nil || e.Quarter.After(now) {
			continue
		}
		if latest == nil || e.Quarter.After(latest.Quarter) {
			latest = e
		}
	}
	return latest
}

// LatestReport returns the most recent report timestamp that is not in the
// future. ok is false when no past report exists.
func LatestReport(reports []time.Time, now time.Time) (reportedAt time.Time, ok bool) {
	for _, r := range reports {
		if r.After(now) {
			continue
		}
		if !ok || r.After(reportedAt) {
			reportedAt = r
			ok = true
		}
	}
	return reportedAt, ok
}

// Day1Move computes the signed fractional price gap attributable to an
// announcement on reportDate, given daily bars ascending by date. For a
// before-open report the gap runs into the report day; for an after-close
// report it runs into the next trading day. Returns nil when the report day
// or the required neighboring bar is absent from the window.
func Day1Move(bars []model.PriceBar, reportDate string, session Session) *float64 {
	idx := -1
	for i, b := range bars {
		if b.Date == reportDate {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	switch session {
	case BeforeMarketOpen:
		if idx == 0 || bars[idx-1].Close == 0 {
			return nil
		}
		move := (bars[idx].Close - bars[idx-1].Close) / bars[idx-1].Close
		return &move
	default:
		if idx+1 >= len(bars) || bars[idx].Close == 0 {
			return nil
		}
		move := (bars[idx+1].Close - bars[idx].Close) / bars[idx].Close
		return &move
	}
}
