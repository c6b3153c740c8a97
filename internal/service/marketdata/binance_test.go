package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	pkghttp "FinBoard/pkg/http"
)

func TestNormalizeCryptoSymbol(t *testing.T) {
	cases := map[string]string{
		"BTC":      "BTCUSDT",
		"btc-usdt": "BTCUSDT",
		"eth_usdt": "ETHUSDT",
		"BTC/USDT": "BTCUSDT",
		"BTCUSDT":  "BTCUSDT",
	}
	for in, want := range cases {
		if got := NormalizeCryptoSymbol(in); got != want {
			t.Errorf("NormalizeCryptoSymbol(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDashboardSymbol(t *testing.T) {
	if got := DashboardSymbol("BTCUSDT"); got != "BTC" {
		t.Fatalf("expected BTC, got %q", got)
	}
	if got := DashboardSymbol("ethusdt"); got != "ETH" {
		t.Fatalf("expected ETH, got %q", got)
	}
}

func TestParseKline(t *testing.T) {
	openMs := float64(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).UnixMilli())
	row := []interface{}{openMs, "100.5", "110.0", "99.0", "105.25", "1234.5", float64(0)}
	bar, err := parseKline("BTCUSDT", row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bar.Date.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", bar.Date)
	}
	if bar.Open != 100.5 || bar.High != 110 || bar.Low != 99 || bar.Close != 105.25 || bar.Volume != 1234.5 {
		t.Fatalf("unexpected bar %+v", bar)
	}
}

func TestParseKlineRejectsMalformed(t *testing.T) {
	if _, err := parseKline("BTCUSDT", []interface{}{float64(0), "1", "2"}); err == nil {
		t.Fatalf("expected error for short row")
	}
	if _, err := parseKline("BTCUSDT", []interface{}{"not-a-number", "1", "2", "3", "4", "5"}); err == nil {
		t.Fatalf("expected error for bad open time")
	}
	if _, err := parseKline("BTCUSDT", []interface{}{float64(0), "1", "x", "3", "4", "5"}); err == nil {
		t.Fatalf("expected error for bad price")
	}
}

func TestBinanceFetchDaily(t *testing.T) {
	day := func(offset int) time.Time {
		return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != binanceKlinesPath {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Errorf("expected normalized symbol, got %q", got)
		}
		if got := r.URL.Query().Get("interval"); got != "1d" {
			t.Errorf("expected 1d interval, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			[` + formatMs(day(0)) + `, "100", "110", "95", "105", "10", 0],
			[` + formatMs(day(1)) + `, "105", "120", "100", "118", "12", 0]
		]`))
	}))
	defer srv.Close()

	src := NewBinanceSource(srv.URL, pkghttp.NewClient())
	bars, err := src.FetchDaily(context.Background(), "btc", time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Close != 105 || bars[1].Close != 118 {
		t.Fatalf("unexpected closes: %v %v", bars[0].Close, bars[1].Close)
	}
	if bars[0].Symbol != "BTCUSDT" {
		t.Fatalf("unexpected symbol %q", bars[0].Symbol)
	}
}

func TestBinanceFetchDailySinceExclusive(t *testing.T) {
	since := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	var gotStart string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStart = r.URL.Query().Get("startTime")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	src := NewBinanceSource(srv.URL, pkghttp.NewClient())
	bars, err := src.FetchDaily(context.Background(), "BTC", since)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 0 {
		t.Fatalf("expected no bars, got %d", len(bars))
	}
	want := formatMs(since.AddDate(0, 0, 1))
	if gotStart != want {
		t.Fatalf("expected startTime %s, got %s", want, gotStart)
	}
}

func formatMs(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
