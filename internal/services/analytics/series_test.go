package analytics

import (
	"errors"
	"testing"
	"time"

	"FinBoard/internal/domain/models"
)

func dayAt(offset int) time.Time {
	return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func mkSeries(closes ...float64) []models.PricePoint {
	out := make([]models.PricePoint, len(closes))
	for i, c := range closes {
		out[i] = models.PricePoint{Date: dayAt(i), Close: c}
	}
	return out
}

func TestNormalizeSortsAndDedups(t *testing.T) {
	in := []models.PricePoint{
		{Date: dayAt(2), Close: 30},
		{Date: dayAt(0), Close: 10},
		{Date: dayAt(1), Close: 20},
		{Date: dayAt(0), Close: 11}, // duplicate date, last seen wins
	}
	got, err := Normalize(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 points, got %d", len(got))
	}
	if got[0].Close != 11 {
		t.Fatalf("expected last-seen value for duplicate date, got %v", got[0].Close)
	}
	for i := 1; i < len(got); i++ {
		if !got[i-1].Date.Before(got[i].Date) {
			t.Fatalf("dates not strictly increasing at %d", i)
		}
	}
}

func TestNormalizeDropsBadPrices(t *testing.T) {
	in := []models.PricePoint{
		{Date: dayAt(0), Close: -5},
		{Date: dayAt(1), Close: 0},
		{Date: dayAt(2), Close: 42},
		{Date: dayAt(3), Close: 43},
	}
	got, err := Normalize(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 points after cleaning, got %d", len(got))
	}
}

func TestNormalizeInsufficientData(t *testing.T) {
	_, err := Normalize([]models.PricePoint{{Date: dayAt(0), Close: 1}})
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestRatioSeriesJoinsOnDate(t *testing.T) {
	asset := mkSeries(10, 20, 30)
	bench := []models.PricePoint{
		{Date: dayAt(0), Close: 5},
		{Date: dayAt(2), Close: 10},
		{Date: dayAt(5), Close: 99}, // no matching asset date
	}
	got, err := RatioSeries(asset, bench)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 overlapping dates, got %d", len(got))
	}
	if got[0].Close != 2 || got[1].Close != 3 {
		t.Fatalf("unexpected ratios: %v %v", got[0].Close, got[1].Close)
	}
}

func TestRatioSeriesNoOverlap(t *testing.T) {
	asset := mkSeries(10, 20)
	bench := []models.PricePoint{
		{Date: dayAt(10), Close: 5},
		{Date: dayAt(11), Close: 6},
	}
	_, err := RatioSeries(asset, bench)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}
