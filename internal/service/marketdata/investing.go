package marketdata

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"FinBoard/internal/domain/models"
	drepo "FinBoard/internal/domain/repository"
	pkghttp "FinBoard/pkg/http"
)

// investingEarliest is the default start of history requests (oldest data the
// endpoint serves reliably).
const investingEarliest = "1996-01-01"

// InvestingSource fetches index history from the Investing.com historical
// API. Instruments are addressed by numeric id (the S&P 500 is 166), mapped
// from dashboard symbols via the configured instrument table.
type InvestingSource struct {
	baseURL     string
	instruments map[string]string // symbol -> instrument id
	client      *pkghttp.Client
}

func NewInvestingSource(baseURL string, instruments map[string]string, client *pkghttp.Client) *InvestingSource {
	return &InvestingSource{baseURL: baseURL, instruments: instruments, client: client}
}

type investingHistory struct {
	Data []investingRow `json:"data"`
}

type investingRow struct {
	RowDate      string `json:"rowDate"`
	RowTimestamp string `json:"rowDateTimestamp"`
	Close        string `json:"last_close"`
	CloseRaw     string `json:"last_closeRaw"`
	Open         string `json:"last_open"`
	OpenRaw      string `json:"last_openRaw"`
	High         string `json:"last_max"`
	HighRaw      string `json:"last_maxRaw"`
	Low          string `json:"last_min"`
	LowRaw       string `json:"last_minRaw"`
	Volume       string `json:"volume"`
}

func (s *InvestingSource) FetchDaily(ctx context.Context, symbol string, since time.Time) ([]models.Bar, error) {
	id, ok := s.instruments[strings.ToUpper(symbol)]
	if !ok {
		return nil, fmt.Errorf("investing: no instrument id for %q", symbol)
	}

	startDate := investingEarliest
	if !since.IsZero() {
		startDate = since.AddDate(0, 0, 1).Format("2006-01-02")
	}

	headers := map[string]string{
		"Origin":  "https://www.investing.com",
		"Referer": "https://www.investing.com/",
	}
	for k, v := range browserHeaders {
		headers[k] = v
	}

	var hist investingHistory
	err := s.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:  pkghttp.MethodGet,
		URL:     fmt.Sprintf("%s/api/financialdata/historical/%s", s.baseURL, id),
		Headers: headers,
		QueryParams: map[string][]string{
			"start-date":       {startDate},
			"end-date":         {time.Now().UTC().Format("2006-01-02")},
			"time-frame":       {"Daily"},
			"add-missing-rows": {"false"},
		},
	}, &hist)
	if err != nil {
		return nil, fmt.Errorf("investing history %s: %w", symbol, err)
	}

	out := make([]models.Bar, 0, len(hist.Data))
	for _, row := range hist.Data {
		dateStr := row.RowTimestamp
		if dateStr == "" {
			dateStr = row.RowDate
		}
		date, err := parseDay(dateStr)
		if err != nil {
			continue
		}
		if !since.IsZero() && !date.After(since) {
			continue
		}
		closePx, ok := parseFormattedNumber(row.Close, row.CloseRaw)
		if !ok {
			continue
		}
		open, _ := parseFormattedNumber(row.Open, row.OpenRaw)
		high, _ := parseFormattedNumber(row.High, row.HighRaw)
		low, _ := parseFormattedNumber(row.Low, row.LowRaw)
		volume, _ := parseAbbrevVolume(row.Volume)
		out = append(out, models.Bar{
			Symbol: strings.ToUpper(symbol),
			Date:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePx,
			Volume: volume,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// parseFormattedNumber prefers the raw numeric field, falling back to the
// comma-formatted display value ("2,067.56").
func parseFormattedNumber(formatted, raw string) (float64, bool) {
	if raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v, true
		}
	}
	cleaned := strings.TrimSpace(strings.ReplaceAll(formatted, ",", ""))
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseAbbrevVolume handles abbreviated volumes ("2.5B", "350M", "12K").
func parseAbbrevVolume(s string) (float64, bool) {
	cleaned := strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(s, ",", "")))
	if cleaned == "" {
		return 0, false
	}
	mult := 1.0
	switch {
	case strings.HasSuffix(cleaned, "B"):
		mult = 1e9
		cleaned = strings.TrimSuffix(cleaned, "B")
	case strings.HasSuffix(cleaned, "M"):
		mult = 1e6
		cleaned = strings.TrimSuffix(cleaned, "M")
	case strings.HasSuffix(cleaned, "K"):
		mult = 1e3
		cleaned = strings.TrimSuffix(cleaned, "K")
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v * mult, true
}

var _ drepo.BarSource = (*InvestingSource)(nil)
