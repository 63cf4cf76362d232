package watchlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "US tickers",
			content: "31#AAPL\n31#MSFT",
			want:    []string{"AAPL", "MSFT"},
		},
		{
			name:    "US export suffixes stripped",
			content: "31#TSLAmain\n31#NVDAQ",
			want:    []string{"TSLA", "NVDA"},
		},
		{
			name:    "US ticker with class suffix",
			content: "31#BRK.B",
			want:    []string{"BRK.B"},
		},
		{
			name:    "US ticker too long is skipped",
			content: "31#TOOLONG",
			want:    nil,
		},
		{
			name:    "Hong Kong tickers",
			content: "74#00700\n74#09988",
			want:    []string{"0700.HK", "9988.HK"},
		},
		{
			name:    "Hong Kong wrong length skipped",
			content: "74#0700",
			want:    nil,
		},
		{
			name:    "Japanese tickers",
			content: "JP#7203\nJP#6758",
			want:    []string{"7203.T", "6758.T"},
		},
		{
			name:    "unknown prefixes and blank lines skipped",
			content: "\n99#FOO\nplain text\n31#AAPL\n",
			want:    []string{"AAPL"},
		},
		{
			name:    "duplicates removed",
			content: "31#AAPL\n31#AAPL\n74#00700\n74#00700",
			want:    []string{"AAPL", "0700.HK"},
		},
		{
			name:    "mixed markets keep first-seen order",
			content: "31#MSFT\r\n74#00700\r\nJP#7203",
			want:    []string{"MSFT", "0700.HK", "7203.T"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.content))
		})
	}
}
