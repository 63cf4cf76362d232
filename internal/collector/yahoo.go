package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"EarningsRadar/internal/calculator"
	"EarningsRadar/internal/model"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

var quoteFields = strings.Join([]string{
	"symbol", "shortName", "longName", "exchange", "market",
	"earningsTimestamp", "earningsTimestampStart", "earningsTimestampEnd",
	"epsCurrentYear", "epsForward", "epsTrailingTwelveMonths",
	"trailingPE", "forwardPE", "marketCap", "financialCurrency",
	"regularMarketPrice", "regularMarketChangePercent",
}, ",")

// YahooProvider implements Provider against the Yahoo Finance public API.
type YahooProvider struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

// NewYahooProvider creates a new Yahoo Finance provider. baseURL is optional
// and exists for tests and self-hosted proxies.
func NewYahooProvider(baseURL, proxyURL string, log zerolog.Logger) *YahooProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = defaultYahooBaseURL
	}
	return &YahooProvider{
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log.With().Str("provider", "yahoo").Logger(),
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

func (p *YahooProvider) get(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("yahoo decode: %w", err)
	}
	return nil
}

// yahooQuote is one entry of the bulk quote response.
type yahooQuote struct {
	Symbol                     string   `json:"symbol"`
	ShortName                  string   `json:"shortName"`
	LongName                   string   `json:"longName"`
	Exchange                   string   `json:"exchange"`
	Market                     string   `json:"market"`
	EarningsTimestamp          *int64   `json:"earningsTimestamp"`
	EarningsTimestampStart     *int64   `json:"earningsTimestampStart"`
	EarningsTimestampEnd       *int64   `json:"earningsTimestampEnd"`
	EpsCurrentYear             *float64 `json:"epsCurrentYear"`
	EpsForward                 *float64 `json:"epsForward"`
	EpsTrailingTwelveMonths    *float64 `json:"epsTrailingTwelveMonths"`
	TrailingPE                 *float64 `json:"trailingPE"`
	ForwardPE                  *float64 `json:"forwardPE"`
	MarketCap                  *float64 `json:"marketCap"`
	FinancialCurrency          string   `json:"financialCurrency"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	RegularMarketChangePercent *float64 `json:"regularMarketChangePercent"`
}

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []yahooQuote `json:"result"`
		Error  *yahooError  `json:"error"`
	} `json:"quoteResponse"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (p *YahooProvider) Quotes(ctx context.Context, symbols []string) ([]model.EarningsSnapshot, error) {
	params := url.Values{}
	params.Set("symbols", strings.Join(symbols, ","))
	params.Set("fields", quoteFields)
	u := p.baseURL + "/v7/finance/quote?" + params.Encode()

	var resp yahooQuoteResponse
	if err := p.get(ctx, u, &resp); err != nil {
		return nil, err
	}
	if resp.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", resp.QuoteResponse.Error.Description)
	}

	out := make([]model.EarningsSnapshot, 0, len(resp.QuoteResponse.Result))
	for _, q := range resp.QuoteResponse.Result {
		if q.Symbol == "" {
			continue
		}
		name := q.ShortName
		if name == "" {
			name = q.LongName
		}
		if name == "" {
			name = q.Symbol
		}
		out = append(out, model.EarningsSnapshot{
			Symbol:                     q.Symbol,
			ShortName:                  name,
			Exchange:                   q.Exchange,
			Market:                     q.Market,
			EarningsTimestamp:          q.EarningsTimestamp,
			EarningsTimestampStart:     q.EarningsTimestampStart,
			EarningsTimestampEnd:       q.EarningsTimestampEnd,
			EpsCurrentYear:             q.EpsCurrentYear,
			EpsForward:                 q.EpsForward,
			EpsTrailingTwelveMonths:    q.EpsTrailingTwelveMonths,
			TrailingPE:                 q.TrailingPE,
			ForwardPE:                  q.ForwardPE,
			MarketCap:                  q.MarketCap,
			FinancialCurrency:          q.FinancialCurrency,
			RegularMarketPrice:         q.RegularMarketPrice,
			RegularMarketChangePercent: q.RegularMarketChangePercent,
		})
	}
	return out, nil
}

// rawValue is Yahoo's number wrapper: {"raw": 2.41, "fmt": "2.41"}.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

func (v rawValue) seconds() (time.Time, bool) {
	if v.Raw == nil {
		return time.Time{}, false
	}
	return time.Unix(int64(*v.Raw), 0).UTC(), true
}

type yahooSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile *struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"assetProfile"`
			EarningsHistory *struct {
				History []struct {
					Quarter         rawValue `json:"quarter"`
					EpsActual       rawValue `json:"epsActual"`
					SurprisePercent rawValue `json:"surprisePercent"`
				} `json:"history"`
			} `json:"earningsHistory"`
			Earnings *struct {
				EarningsChart struct {
					Quarterly []struct {
						ReportedDate rawValue `json:"reportedDate"`
					} `json:"quarterly"`
				} `json:"earningsChart"`
			} `json:"earnings"`
			FinancialData *struct {
				TotalRevenue      rawValue `json:"totalRevenue"`
				FinancialCurrency string   `json:"financialCurrency"`
			} `json:"financialData"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

func (p *YahooProvider) quoteSummary(ctx context.Context, symbol, modules string) (*yahooSummaryResponse, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		p.baseURL, url.PathEscape(symbol), url.QueryEscape(modules))

	var resp yahooSummaryResponse
	if err := p.get(ctx, u, &resp); err != nil {
		return nil, err
	}
	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("yahoo: no summary data for %s", symbol)
	}
	return &resp, nil
}

func (p *YahooProvider) AssetProfile(ctx context.Context, symbol string) (string, string, error) {
	resp, err := p.quoteSummary(ctx, symbol, "assetProfile")
	if err != nil {
		return "", "", err
	}
	profile := resp.QuoteSummary.Result[0].AssetProfile
	if profile == nil {
		return "", "", nil
	}
	return profile.Sector, profile.Industry, nil
}

func (p *YahooProvider) FinancialSummary(ctx context.Context, symbol string) (*model.FinancialSummary, error) {
	resp, err := p.quoteSummary(ctx, symbol, "earningsHistory,earnings,financialData")
	if err != nil {
		return nil, err
	}
	result := resp.QuoteSummary.Result[0]

	sum := &model.FinancialSummary{FinancialCurrency: "USD"}
	if result.EarningsHistory != nil {
		for _, h := range result.EarningsHistory.History {
			quarter, ok := h.Quarter.seconds()
			if !ok {
				continue
			}
			sum.History = append(sum.History, model.EarningsHistoryEvent{
				Quarter:         quarter,
				EpsActual:       h.EpsActual.Raw,
				SurprisePercent: h.SurprisePercent.Raw,
			})
		}
	}
	if result.Earnings != nil {
		for _, q := range result.Earnings.EarningsChart.Quarterly {
			if reported, ok := q.ReportedDate.seconds(); ok {
				sum.ReportDates = append(sum.ReportDates, reported)
			}
		}
	}
	if result.FinancialData != nil {
		sum.Revenue = result.FinancialData.TotalRevenue.Raw
		if result.FinancialData.FinancialCurrency != "" {
			sum.FinancialCurrency = result.FinancialData.FinancialCurrency
		}
	}
	return sum, nil
}

// yahooChart is the response structure from the chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

func (p *YahooProvider) DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("period1", fmt.Sprintf("%d", from.Unix()))
	params.Set("period2", fmt.Sprintf("%d", to.Unix()))
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", p.baseURL, url.PathEscape(symbol), params.Encode())

	var chart yahooChart
	if err := p.get(ctx, u, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no chart data for %s", symbol)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue // null bars: holidays, halted sessions
		}
		bars = append(bars, model.PriceBar{
			Date:  time.Unix(ts, 0).UTC().Format(calculator.DateLayout),
			Close: *quote.Close[i],
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })
	return bars, nil
}
