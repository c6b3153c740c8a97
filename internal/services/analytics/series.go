package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"FinBoard/internal/domain/models"
)

// day truncates a timestamp to its UTC calendar date.
func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Normalize turns a raw point list into a clean series: dates truncated to
// UTC days and sorted ascending, duplicate dates collapsed keeping the
// last-seen value, and non-positive or non-finite closes dropped.
// Fails with ErrInsufficientData when fewer than 2 points remain.
func Normalize(points []models.PricePoint) ([]models.PricePoint, error) {
	byDay := make(map[time.Time]float64, len(points))
	for _, p := range points {
		if p.Close <= 0 || math.IsNaN(p.Close) || math.IsInf(p.Close, 0) {
			continue
		}
		byDay[day(p.Date)] = p.Close
	}
	if len(byDay) < 2 {
		return nil, fmt.Errorf("normalize: %d usable points: %w", len(byDay), ErrInsufficientData)
	}
	out := make([]models.PricePoint, 0, len(byDay))
	for d, c := range byDay {
		out = append(out, models.PricePoint{Date: d, Close: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// validateSeries checks the normalized-series invariant: strictly increasing
// dates and positive closes.
func validateSeries(series []models.PricePoint) error {
	for i, p := range series {
		if p.Close <= 0 || math.IsNaN(p.Close) || math.IsInf(p.Close, 0) {
			return fmt.Errorf("series[%d]: close %v: %w", i, p.Close, ErrInvalidInput)
		}
		if i > 0 && !series[i-1].Date.Before(p.Date) {
			return fmt.Errorf("series[%d]: dates not strictly increasing: %w", i, ErrInvalidInput)
		}
	}
	return nil
}

// RatioSeries divides an asset series by a benchmark series, joined on date.
// Only dates present in both inputs appear in the result.
func RatioSeries(asset, benchmark []models.PricePoint) ([]models.PricePoint, error) {
	if err := validateSeries(asset); err != nil {
		return nil, err
	}
	if err := validateSeries(benchmark); err != nil {
		return nil, err
	}
	bench := make(map[time.Time]float64, len(benchmark))
	for _, p := range benchmark {
		bench[p.Date] = p.Close
	}
	out := make([]models.PricePoint, 0, len(asset))
	for _, p := range asset {
		if b, ok := bench[p.Date]; ok {
			out = append(out, models.PricePoint{Date: p.Date, Close: p.Close / b})
		}
	}
	if len(out) < 2 {
		return nil, fmt.Errorf("ratio series: %d overlapping dates: %w", len(out), ErrInsufficientData)
	}
	return out, nil
}

// searchDate returns the index of the first observation on or after t.
func searchDate(series []models.PricePoint, t time.Time) int {
	return sort.Search(len(series), func(i int) bool {
		return !series[i].Date.Before(t)
	})
}
