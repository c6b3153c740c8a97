package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkghttp "FinBoard/pkg/http"
)

func TestParseFormattedNumber(t *testing.T) {
	if v, ok := parseFormattedNumber("2,067.56", "2067.56"); !ok || v != 2067.56 {
		t.Fatalf("raw field must win: %v %v", v, ok)
	}
	if v, ok := parseFormattedNumber("2,067.56", ""); !ok || v != 2067.56 {
		t.Fatalf("comma fallback failed: %v %v", v, ok)
	}
	if _, ok := parseFormattedNumber("", ""); ok {
		t.Fatalf("empty input must fail")
	}
	if _, ok := parseFormattedNumber("n/a", ""); ok {
		t.Fatalf("garbage input must fail")
	}
}

func TestParseAbbrevVolume(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"2.5B", 2.5e9},
		{"350M", 3.5e8},
		{"12K", 12000},
		{"1,234", 1234},
	}
	for _, c := range cases {
		got, ok := parseAbbrevVolume(c.in)
		if !ok || got != c.want {
			t.Errorf("parseAbbrevVolume(%q) = %v,%v want %v", c.in, got, ok, c.want)
		}
	}
	if _, ok := parseAbbrevVolume(""); ok {
		t.Errorf("empty volume must fail")
	}
}

func TestInvestingFetchDaily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/financialdata/historical/166" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("time-frame") != "Daily" || q.Get("add-missing-rows") != "false" {
			t.Errorf("unexpected query: %v", q)
		}
		if q.Get("start-date") != investingEarliest {
			t.Errorf("expected default start date %s, got %s", investingEarliest, q.Get("start-date"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"rowDate":"Jun 16, 2023","last_close":"4,425.84","last_closeRaw":"4425.84",
			 "last_open":"4,400.00","last_openRaw":"4400","last_max":"4,430.00","last_maxRaw":"4430",
			 "last_min":"4,395.00","last_minRaw":"4395","volume":"2.1B"},
			{"rowDate":"Jun 15, 2023","last_close":"4,410.10","last_closeRaw":"4410.10",
			 "last_open":"4,390.00","last_openRaw":"4390","last_max":"4,415.00","last_maxRaw":"4415",
			 "last_min":"4,380.00","last_minRaw":"4380","volume":"1.9B"},
			{"rowDate":"Jun 14, 2023","last_close":"","last_closeRaw":"","volume":""}
		]}`))
	}))
	defer srv.Close()

	src := NewInvestingSource(srv.URL, map[string]string{"SPX500": "166"}, pkghttp.NewClient())
	bars, err := src.FetchDaily(context.Background(), "spx500", time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The row without a close is dropped.
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if !bars[0].Date.Before(bars[1].Date) {
		t.Fatalf("bars must be sorted ascending")
	}
	if bars[1].Close != 4425.84 || bars[1].Volume != 2.1e9 {
		t.Fatalf("unexpected parse: %+v", bars[1])
	}
}

func TestInvestingFetchDailyUnknownInstrument(t *testing.T) {
	src := NewInvestingSource("http://unused", map[string]string{}, pkghttp.NewClient())
	if _, err := src.FetchDaily(context.Background(), "SPX500", time.Time{}); err == nil {
		t.Fatalf("expected error for unmapped symbol")
	}
}

func TestInvestingFetchDailySinceStartDate(t *testing.T) {
	var gotStart string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStart = r.URL.Query().Get("start-date")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	src := NewInvestingSource(srv.URL, map[string]string{"SPX500": "166"}, pkghttp.NewClient())
	since := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	if _, err := src.FetchDaily(context.Background(), "SPX500", since); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotStart != "2024-01-11" {
		t.Fatalf("expected start-date 2024-01-11, got %s", gotStart)
	}
}
