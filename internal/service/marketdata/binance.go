package marketdata

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"FinBoard/internal/domain/models"
	drepo "FinBoard/internal/domain/repository"
	pkghttp "FinBoard/pkg/http"
)

const (
	binanceKlinesPath = "/api/v3/klines"
	binancePageLimit  = 1000
)

// NormalizeCryptoSymbol uppercases a crypto symbol, strips separators, and
// ensures the USDT quote suffix ("btc-usdt" and "BTC" both become "BTCUSDT").
func NormalizeCryptoSymbol(symbol string) string {
	r := strings.NewReplacer("-", "", "_", "", "/", "")
	normalized := r.Replace(strings.ToUpper(symbol))
	if !strings.HasSuffix(normalized, "USDT") {
		normalized += "USDT"
	}
	return normalized
}

// BinanceSource fetches daily klines from the Binance REST API.
type BinanceSource struct {
	baseURL string
	client  *pkghttp.Client
}

func NewBinanceSource(baseURL string, client *pkghttp.Client) *BinanceSource {
	return &BinanceSource{baseURL: baseURL, client: client}
}

// FetchDaily pages through daily klines, 1000 bars per request, returning
// bars strictly after since (zero since fetches the full available history).
func (s *BinanceSource) FetchDaily(ctx context.Context, symbol string, since time.Time) ([]models.Bar, error) {
	normalized := NormalizeCryptoSymbol(symbol)

	var (
		out       []models.Bar
		startTime int64
	)
	if !since.IsZero() {
		// since is exclusive: begin at the next day's open.
		startTime = since.AddDate(0, 0, 1).UnixMilli()
	}

	for {
		params := map[string][]string{
			"symbol":   {normalized},
			"interval": {"1d"},
			"limit":    {strconv.Itoa(binancePageLimit)},
		}
		if startTime > 0 {
			params["startTime"] = []string{strconv.FormatInt(startTime, 10)}
		}

		// Kline rows are heterogeneous arrays:
		// [openTime, open, high, low, close, volume, closeTime, ...]
		var rows [][]interface{}
		err := s.client.SendAndParse(ctx, &pkghttp.RequestOptions{
			Method:      pkghttp.MethodGet,
			URL:         s.baseURL + binanceKlinesPath,
			QueryParams: params,
		}, &rows)
		if err != nil {
			return nil, fmt.Errorf("binance klines %s: %w", normalized, err)
		}
		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			bar, err := parseKline(normalized, row)
			if err != nil {
				return nil, fmt.Errorf("binance klines %s: %w", normalized, err)
			}
			out = append(out, bar)
		}

		if len(rows) < binancePageLimit {
			break
		}
		last := out[len(out)-1]
		startTime = last.Date.AddDate(0, 0, 1).UnixMilli()
	}
	return out, nil
}

func parseKline(symbol string, row []interface{}) (models.Bar, error) {
	if len(row) < 6 {
		return models.Bar{}, fmt.Errorf("kline row has %d fields", len(row))
	}
	openMs, ok := row[0].(float64)
	if !ok {
		return models.Bar{}, fmt.Errorf("kline open time is %T", row[0])
	}
	vals := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		s, ok := row[i].(string)
		if !ok {
			return models.Bar{}, fmt.Errorf("kline field %d is %T", i, row[i])
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Bar{}, fmt.Errorf("kline field %d: %w", i, err)
		}
		vals[i-1] = v
	}
	date := time.UnixMilli(int64(openMs)).UTC().Truncate(24 * time.Hour)
	return models.Bar{
		Symbol: symbol,
		Date:   date,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}

var _ drepo.BarSource = (*BinanceSource)(nil)
