package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EarningsRadar/internal/model"
)

func fptr(v float64) *float64 { return &v }

func TestClassifyReport(t *testing.T) {
	tests := []struct {
		name       string
		reportedAt string
		market     string
		want       Session
	}{
		{
			name:       "US evening report is after close",
			reportedAt: "2026-01-29T21:00:00Z",
			market:     "us_market",
			want:       AfterMarketClose,
		},
		{
			name:       "US pre-open report is before open",
			reportedAt: "2026-01-29T13:00:00Z",
			market:     "us_market",
			want:       BeforeMarketOpen,
		},
		{
			name:       "US report exactly at cutoff is after close",
			reportedAt: "2026-01-29T15:00:00Z",
			market:     "us_market",
			want:       AfterMarketClose,
		},
		{
			name:       "HK early morning report is before open",
			reportedAt: "2026-01-29T03:00:00Z",
			market:     "hk_market",
			want:       BeforeMarketOpen,
		},
		{
			name:       "HK mid-morning report is after close",
			reportedAt: "2026-01-29T05:00:00Z",
			market:     "hk_market",
			want:       AfterMarketClose,
		},
		{
			name:       "JP report before its cutoff",
			reportedAt: "2026-01-29T02:00:00Z",
			market:     "jp_market",
			want:       BeforeMarketOpen,
		},
		{
			name:       "unknown market falls back to US cutoff",
			reportedAt: "2026-01-29T13:00:00Z",
			market:     "de_market",
			want:       BeforeMarketOpen,
		},
		{
			name:       "empty market falls back to US cutoff",
			reportedAt: "2026-01-29T21:00:00Z",
			market:     "",
			want:       AfterMarketClose,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reportedAt, err := time.Parse(time.RFC3339, tt.reportedAt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ClassifyReport(reportedAt, tt.market))
		})
	}
}

func TestDay1Move(t *testing.T) {
	bars := []model.PriceBar{
		{Date: "2026-01-27", Close: 100},
		{Date: "2026-01-28", Close: 102},
		{Date: "2026-01-29", Close: 101},
		{Date: "2026-01-30", Close: 108},
	}

	t.Run("before open uses gap into the report day", func(t *testing.T) {
		move := Day1Move(bars, "2026-01-29", BeforeMarketOpen)
		require.NotNil(t, move)
		assert.InDelta(t, (101.0-102.0)/102.0, *move, 1e-9)
	})

	t.Run("after close uses gap into the next trading day", func(t *testing.T) {
		move := Day1Move(bars, "2026-01-29", AfterMarketClose)
		require.NotNil(t, move)
		assert.InDelta(t, (108.0-101.0)/101.0, *move, 1e-9)
	})

	t.Run("report day missing from window", func(t *testing.T) {
		assert.Nil(t, Day1Move(bars, "2026-02-02", BeforeMarketOpen))
	})

	t.Run("before open with no prior bar", func(t *testing.T) {
		assert.Nil(t, Day1Move(bars, "2026-01-27", BeforeMarketOpen))
	})

	t.Run("after close with no following bar", func(t *testing.T) {
		assert.Nil(t, Day1Move(bars, "2026-01-30", AfterMarketClose))
	})

	t.Run("empty series", func(t *testing.T) {
		assert.Nil(t, Day1Move(nil, "2026-01-29", AfterMarketClose))
	})
}

func TestLatestActual(t *testing.T) {
	now := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	q4 := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	q3 := time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)
	future := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	t.Run("picks the most recent past reported quarter", func(t *testing.T) {
		history := []model.EarningsHistoryEvent{
			{Quarter: q3, EpsActual: fptr(2.1), SurprisePercent: fptr(1.5)},
			{Quarter: q4, EpsActual: fptr(2.5), SurprisePercent: fptr(4.1)},
		}
		latest := LatestActual(history, now)
		require.NotNil(t, latest)
		assert.Equal(t, q4, latest.Quarter)
		assert.Equal(t, 2.5, *latest.EpsActual)
	})

	t.Run("future quarter with placeholder actual never wins", func(t *testing.T) {
		history := []model.EarningsHistoryEvent{
			{Quarter: q4, EpsActual: fptr(2.5)},
			{Quarter: future, EpsActual: fptr(9.9)},
		}
		latest := LatestActual(history, now)
		require.NotNil(t, latest)
		assert.Equal(t, q4, latest.Quarter)
	})

	t.Run("quarters without actuals are skipped", func(t *testing.T) {
		history := []model.EarningsHistoryEvent{
			{Quarter: q3, EpsActual: fptr(2.1)},
			{Quarter: q4, EpsActual: nil},
		}
		latest := LatestActual(history, now)
		require.NotNil(t, latest)
		assert.Equal(t, q3, latest.Quarter)
	})

	t.Run("no eligible quarter", func(t *testing.T) {
		history := []model.EarningsHistoryEvent{
			{Quarter: future, EpsActual: fptr(1.0)},
			{Quarter: q4, EpsActual: nil},
		}
		assert.Nil(t, LatestActual(history, now))
	})
}

func TestLatestReport(t *testing.T) {
	now := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	older := time.Date(2025, 10, 28, 21, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 1, 29, 21, 0, 0, 0, time.UTC)
	future := time.Date(2026, 4, 28, 21, 0, 0, 0, time.UTC)

	t.Run("picks most recent past report", func(t *testing.T) {
		got, ok := LatestReport([]time.Time{older, recent, future}, now)
		require.True(t, ok)
		assert.Equal(t, recent, got)
	})

	t.Run("only future reports", func(t *testing.T) {
		_, ok := LatestReport([]time.Time{future}, now)
		assert.False(t, ok)
	})

	t.Run("empty input", func(t *testing.T) {
		_, ok := LatestReport(nil, now)
		assert.False(t, ok)
	})
}
