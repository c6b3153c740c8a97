package usecase

import (
	"context"
	"errors"
	"testing"

	"FinBoard/internal/domain/models"
	domrepo "FinBoard/internal/domain/repository"
	"FinBoard/internal/services/analytics"
)

func newCycleSync(bars *memBarStore, cycles *memCycleStore) *CycleSyncUseCase {
	return NewCycleSyncUseCase(bars, cycles, analytics.NewEngine(), noopMetrics{})
}

func TestSyncCyclesRequiresSymbol(t *testing.T) {
	uc := newCycleSync(newMemBarStore(), newMemCycleStore())
	_, err := uc.SyncCycles(context.Background(), SyncCyclesParams{Asset: domrepo.AssetCrypto})
	if !errors.Is(err, analytics.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestSyncCyclesPersistsConfirmed(t *testing.T) {
	bars := newMemBarStore()
	cycles := newMemCycleStore()
	// 120-peak confirmed by the drop to 80; the recovery then runs long
	// enough past the peak for a short confirmation window.
	series := barsOf(100, 120, 80, 150, 160, 170, 180, 190, 200, 210)
	_ = bars.StoreBars(context.Background(), domrepo.AssetCrypto, "BTC", series)
	uc := newCycleSync(bars, cycles)

	got, err := uc.SyncCycles(context.Background(), SyncCyclesParams{
		Asset:         domrepo.AssetCrypto,
		Symbol:        "BTC",
		Drawdown:      0.20,
		ConfirmWindow: 5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 cycles, got %d", len(got))
	}
	if got[0].Current || !got[1].Current {
		t.Fatalf("expected one confirmed and one ongoing cycle")
	}

	saved, _ := cycles.SavedCycles(context.Background(), domrepo.AssetCrypto, "BTC")
	if len(saved) != 1 {
		t.Fatalf("expected 1 persisted cycle, got %d", len(saved))
	}
	if saved[0].ID != 1 || !saved[0].EndDate.Equal(dayAt(1)) {
		t.Fatalf("unexpected persisted cycle: %+v", saved[0])
	}
}

func TestSyncCyclesSkipsUnconfirmed(t *testing.T) {
	bars := newMemBarStore()
	cycles := newMemCycleStore()
	series := barsOf(100, 120, 80, 150, 160, 170, 180, 190, 200, 210)
	_ = bars.StoreBars(context.Background(), domrepo.AssetCrypto, "BTC", series)
	uc := newCycleSync(bars, cycles)

	// Only 8 observations follow the first peak; a full trading year has not.
	got, err := uc.SyncCycles(context.Background(), SyncCyclesParams{
		Asset:    domrepo.AssetCrypto,
		Symbol:   "BTC",
		Drawdown: 0.20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 detected cycles, got %d", len(got))
	}
	saved, _ := cycles.SavedCycles(context.Background(), domrepo.AssetCrypto, "BTC")
	if len(saved) != 0 {
		t.Fatalf("expected nothing persisted before confirmation, got %d", len(saved))
	}
}

func TestSyncCyclesResumesAfterSaved(t *testing.T) {
	bars := newMemBarStore()
	cycles := newMemCycleStore()
	series := barsOf(100, 120, 80, 150, 160, 170, 180, 190, 200, 210)
	_ = bars.StoreBars(context.Background(), domrepo.AssetCrypto, "BTC", series)

	prior := models.MarketCycle{
		ID:         1,
		Name:       "Cycle 1",
		StartDate:  dayAt(0),
		EndDate:    dayAt(1),
		StartPrice: 100,
		EndPrice:   120,
		ROI:        20,
		Duration:   1,
	}
	if err := cycles.SaveCycle(context.Background(), domrepo.AssetCrypto, "BTC", prior); err != nil {
		t.Fatalf("seed: %v", err)
	}

	uc := newCycleSync(bars, cycles)
	got, err := uc.SyncCycles(context.Background(), SyncCyclesParams{
		Asset:         domrepo.AssetCrypto,
		Symbol:        "BTC",
		Drawdown:      0.20,
		ConfirmWindow: 5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected saved + ongoing, got %d cycles", len(got))
	}
	if got[0] != prior {
		t.Fatalf("saved cycle must be returned unchanged: %+v", got[0])
	}
	cur := got[1]
	if !cur.Current || cur.ID != 2 {
		t.Fatalf("expected ongoing cycle with id 2, got %+v", cur)
	}
	if !cur.StartDate.Equal(dayAt(2)) || cur.StartPrice != 80 {
		t.Fatalf("expected resume from the 80 trough, got %v@%v", cur.StartPrice, cur.StartDate)
	}
	// Re-running must not duplicate the persisted cycle.
	saved, _ := cycles.SavedCycles(context.Background(), domrepo.AssetCrypto, "BTC")
	if len(saved) != 1 {
		t.Fatalf("expected no new persists, got %d", len(saved))
	}
}

func TestSyncCyclesNoObservationsBeyondSaved(t *testing.T) {
	bars := newMemBarStore()
	cycles := newMemCycleStore()
	series := barsOf(100, 120)
	_ = bars.StoreBars(context.Background(), domrepo.AssetCrypto, "BTC", series)

	prior := models.MarketCycle{
		ID: 1, Name: "Cycle 1",
		StartDate: dayAt(0), EndDate: dayAt(1),
		StartPrice: 100, EndPrice: 120, ROI: 20, Duration: 1,
	}
	if err := cycles.SaveCycle(context.Background(), domrepo.AssetCrypto, "BTC", prior); err != nil {
		t.Fatalf("seed: %v", err)
	}

	uc := newCycleSync(bars, cycles)
	got, err := uc.SyncCycles(context.Background(), SyncCyclesParams{
		Asset:    domrepo.AssetCrypto,
		Symbol:   "BTC",
		Drawdown: 0.20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != prior {
		t.Fatalf("expected only the saved cycle back, got %+v", got)
	}
}

func TestSyncCyclesAnchorSkipsEarlyHistory(t *testing.T) {
	bars := newMemBarStore()
	cycles := newMemCycleStore()
	series := barsOf(50, 40, 100, 120, 80, 150, 160, 170, 180, 190)
	_ = bars.StoreBars(context.Background(), domrepo.AssetCrypto, "BTC", series)
	uc := newCycleSync(bars, cycles)

	got, err := uc.SyncCycles(context.Background(), SyncCyclesParams{
		Asset:         domrepo.AssetCrypto,
		Symbol:        "BTC",
		Drawdown:      0.20,
		Anchor:        dayAt(2),
		ConfirmWindow: 4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) == 0 {
		t.Fatalf("expected cycles")
	}
	for _, c := range got {
		if c.StartDate.Before(dayAt(2)) {
			t.Fatalf("cycle %d starts before anchor: %v", c.ID, c.StartDate)
		}
	}
}
