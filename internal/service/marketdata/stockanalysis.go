package marketdata

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"FinBoard/internal/domain/models"
	drepo "FinBoard/internal/domain/repository"
	pkghttp "FinBoard/pkg/http"
)

// browserHeaders make the scraped history endpoints treat us as a browser.
var browserHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/138.0.0.0 Safari/537.36",
	"Accept": "*/*",
}

// StockAnalysisSource fetches PSX equity history from the stockanalysis.com
// API. The endpoint always returns the full history; FetchDaily filters to
// bars after since.
type StockAnalysisSource struct {
	baseURL string
	client  *pkghttp.Client
}

func NewStockAnalysisSource(baseURL string, client *pkghttp.Client) *StockAnalysisSource {
	return &StockAnalysisSource{baseURL: baseURL, client: client}
}

type saHistory struct {
	Status string  `json:"status"`
	Data   []saRow `json:"data"`
}

type saRow struct {
	Date   string  `json:"t"`
	Open   float64 `json:"o"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Close  float64 `json:"c"`
	Volume float64 `json:"v"`
}

func (s *StockAnalysisSource) FetchDaily(ctx context.Context, symbol string, since time.Time) ([]models.Bar, error) {
	ticker := strings.ToUpper(symbol)
	url := fmt.Sprintf("%s/api/symbol/a/PSX-%s/history", s.baseURL, ticker)

	headers := map[string]string{"Referer": "https://stockanalysis.com/"}
	for k, v := range browserHeaders {
		headers[k] = v
	}

	var hist saHistory
	err := s.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:  pkghttp.MethodGet,
		URL:     url,
		Headers: headers,
	}, &hist)
	if err != nil {
		return nil, fmt.Errorf("stockanalysis history %s: %w", ticker, err)
	}
	if hist.Status != "" && hist.Status != "success" {
		return nil, fmt.Errorf("stockanalysis history %s: status %q", ticker, hist.Status)
	}

	out := make([]models.Bar, 0, len(hist.Data))
	for _, row := range hist.Data {
		date, err := parseDay(row.Date)
		if err != nil {
			continue
		}
		if !since.IsZero() && !date.After(since) {
			continue
		}
		out = append(out, models.Bar{
			Symbol: ticker,
			Date:   date,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// parseDay handles the date formats the history endpoints emit.
func parseDay(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "Jan 2, 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(24 * time.Hour), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

var _ drepo.BarSource = (*StockAnalysisSource)(nil)
