package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkghttp "FinBoard/pkg/http"
)

func TestParseDay(t *testing.T) {
	want := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2023-06-15", "2023-06-15T00:00:00Z", "Jun 15, 2023"} {
		got, err := parseDay(in)
		if err != nil {
			t.Errorf("parseDay(%q): %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("parseDay(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := parseDay("15/06/2023"); err == nil {
		t.Errorf("expected error for unknown format")
	}
}

func TestStockAnalysisFetchDaily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/symbol/a/PSX-HBL/history" {
			http.NotFound(w, r)
			return
		}
		if ua := r.Header.Get("User-Agent"); ua == "" || ua == "Go-http-client/1.1" {
			t.Errorf("expected browser user agent, got %q", ua)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","data":[
			{"t":"2023-06-16","o":101,"h":106,"l":100,"c":104,"v":2000},
			{"t":"2023-06-15","o":100,"h":105,"l":99,"c":102,"v":1500}
		]}`))
	}))
	defer srv.Close()

	src := NewStockAnalysisSource(srv.URL, pkghttp.NewClient())
	bars, err := src.FetchDaily(context.Background(), "hbl", time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if !bars[0].Date.Before(bars[1].Date) {
		t.Fatalf("bars must be sorted ascending")
	}
	if bars[0].Close != 102 || bars[1].Close != 104 {
		t.Fatalf("unexpected closes: %v %v", bars[0].Close, bars[1].Close)
	}
}

func TestStockAnalysisFetchDailyFiltersSince(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","data":[
			{"t":"2023-06-15","o":100,"h":105,"l":99,"c":102,"v":1500},
			{"t":"2023-06-16","o":101,"h":106,"l":100,"c":104,"v":2000}
		]}`))
	}))
	defer srv.Close()

	src := NewStockAnalysisSource(srv.URL, pkghttp.NewClient())
	since := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)
	bars, err := src.FetchDaily(context.Background(), "HBL", since)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 1 || !bars[0].Date.Equal(since.AddDate(0, 0, 1)) {
		t.Fatalf("since must be exclusive, got %+v", bars)
	}
}

func TestStockAnalysisFetchDailyRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"error","data":[]}`))
	}))
	defer srv.Close()

	src := NewStockAnalysisSource(srv.URL, pkghttp.NewClient())
	if _, err := src.FetchDaily(context.Background(), "HBL", time.Time{}); err == nil {
		t.Fatalf("expected error for non-success status")
	}
}
