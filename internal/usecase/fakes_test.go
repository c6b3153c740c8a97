package usecase

import (
	"context"
	"fmt"
	"time"

	"FinBoard/internal/domain/models"
	domrepo "FinBoard/internal/domain/repository"
)

func dayAt(offset int) time.Time {
	return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func barsOf(closes ...float64) []models.Bar {
	out := make([]models.Bar, len(closes))
	for i, c := range closes {
		out[i] = models.Bar{Date: dayAt(i), Open: c, High: c, Low: c, Close: c}
	}
	return out
}

type memBarStore struct {
	bars   map[string][]models.Bar
	stores int
}

func newMemBarStore() *memBarStore {
	return &memBarStore{bars: make(map[string][]models.Bar)}
}

func barKey(asset domrepo.AssetType, symbol string) string {
	return string(asset) + ":" + symbol
}

func (s *memBarStore) Init(ctx context.Context) error { return nil }

func (s *memBarStore) StoreBars(ctx context.Context, asset domrepo.AssetType, symbol string, bars []models.Bar) error {
	s.bars[barKey(asset, symbol)] = append(s.bars[barKey(asset, symbol)], bars...)
	s.stores++
	return nil
}

func (s *memBarStore) Bars(ctx context.Context, asset domrepo.AssetType, symbol string, from, to time.Time) ([]models.Bar, error) {
	var out []models.Bar
	for _, b := range s.bars[barKey(asset, symbol)] {
		if b.Date.Before(from) || b.Date.After(to) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *memBarStore) LatestBar(ctx context.Context, asset domrepo.AssetType, symbol string) (*models.Bar, error) {
	all := s.bars[barKey(asset, symbol)]
	if len(all) == 0 {
		return nil, nil
	}
	last := all[len(all)-1]
	return &last, nil
}

func (s *memBarStore) Health(ctx context.Context) error { return nil }
func (s *memBarStore) Close() error                     { return nil }

type memCycleStore struct {
	saved map[string][]models.MarketCycle
}

func newMemCycleStore() *memCycleStore {
	return &memCycleStore{saved: make(map[string][]models.MarketCycle)}
}

func (s *memCycleStore) SavedCycles(ctx context.Context, asset domrepo.AssetType, symbol string) ([]models.MarketCycle, error) {
	out := make([]models.MarketCycle, len(s.saved[barKey(asset, symbol)]))
	copy(out, s.saved[barKey(asset, symbol)])
	return out, nil
}

func (s *memCycleStore) LastCycleEnd(ctx context.Context, asset domrepo.AssetType, symbol string) (time.Time, bool, error) {
	all := s.saved[barKey(asset, symbol)]
	if len(all) == 0 {
		return time.Time{}, false, nil
	}
	return all[len(all)-1].EndDate, true, nil
}

func (s *memCycleStore) SaveCycle(ctx context.Context, asset domrepo.AssetType, symbol string, c models.MarketCycle) error {
	if c.Current {
		return fmt.Errorf("refusing to save ongoing cycle")
	}
	for _, prev := range s.saved[barKey(asset, symbol)] {
		if prev.StartDate.Equal(c.StartDate) && prev.EndDate.Equal(c.EndDate) {
			return fmt.Errorf("cycle already saved")
		}
	}
	s.saved[barKey(asset, symbol)] = append(s.saved[barKey(asset, symbol)], c)
	return nil
}

type noopMetrics struct{}

func (noopMetrics) RecordMessageSent(backend, symbol string)     {}
func (noopMetrics) RecordError(kind string)                      {}
func (noopMetrics) RecordLastPrice(symbol string, price float64) {}
func (noopMetrics) RecordLatency(op string, seconds float64)     {}

type fakeBarSource struct {
	bars  []models.Bar
	calls []time.Time
	err   error
}

func (f *fakeBarSource) FetchDaily(ctx context.Context, symbol string, since time.Time) ([]models.Bar, error) {
	f.calls = append(f.calls, since)
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Bar
	for _, b := range f.bars {
		if !since.IsZero() && !b.Date.After(since) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}
