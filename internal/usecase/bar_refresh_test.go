package usecase

import (
	"context"
	"fmt"
	"testing"

	domrepo "FinBoard/internal/domain/repository"
	"FinBoard/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func TestRefreshSymbolFullBackfill(t *testing.T) {
	bars := newMemBarStore()
	src := &fakeBarSource{bars: barsOf(100, 110, 120)}
	uc := NewBarRefreshUseCase(bars, map[domrepo.AssetType]domrepo.BarSource{
		domrepo.AssetCrypto: src,
	}, noopMetrics{}, testLogger(t))

	n, err := uc.RefreshSymbol(context.Background(), RefreshTarget{Asset: domrepo.AssetCrypto, Symbol: "BTC"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 bars stored, got %d", n)
	}
	if len(src.calls) != 1 || !src.calls[0].IsZero() {
		t.Fatalf("empty store must request full history, got %v", src.calls)
	}
}

func TestRefreshSymbolIncremental(t *testing.T) {
	bars := newMemBarStore()
	_ = bars.StoreBars(context.Background(), domrepo.AssetCrypto, "BTC", barsOf(100, 110))
	src := &fakeBarSource{bars: barsOf(100, 110, 120, 130)}
	uc := NewBarRefreshUseCase(bars, map[domrepo.AssetType]domrepo.BarSource{
		domrepo.AssetCrypto: src,
	}, noopMetrics{}, testLogger(t))

	n, err := uc.RefreshSymbol(context.Background(), RefreshTarget{Asset: domrepo.AssetCrypto, Symbol: "BTC"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected only bars after the stored date, got %d", n)
	}
	if len(src.calls) != 1 || !src.calls[0].Equal(dayAt(1)) {
		t.Fatalf("expected fetch since %v, got %v", dayAt(1), src.calls)
	}
}

func TestRefreshSymbolUnknownAsset(t *testing.T) {
	uc := NewBarRefreshUseCase(newMemBarStore(), map[domrepo.AssetType]domrepo.BarSource{}, noopMetrics{}, testLogger(t))
	_, err := uc.RefreshSymbol(context.Background(), RefreshTarget{Asset: domrepo.AssetMetal, Symbol: "XAUUSD"})
	if err == nil {
		t.Fatalf("expected error for unmapped asset type")
	}
}

func TestRefreshAllContinuesPastFailures(t *testing.T) {
	bars := newMemBarStore()
	good := &fakeBarSource{bars: barsOf(100, 110)}
	bad := &fakeBarSource{err: fmt.Errorf("upstream down")}
	uc := NewBarRefreshUseCase(bars, map[domrepo.AssetType]domrepo.BarSource{
		domrepo.AssetCrypto: good,
		domrepo.AssetEquity: bad,
	}, noopMetrics{}, testLogger(t))

	updated := uc.RefreshAll(context.Background(), []RefreshTarget{
		{Asset: domrepo.AssetEquity, Symbol: "HBL"},
		{Asset: domrepo.AssetCrypto, Symbol: "BTC"},
	})
	if updated != 1 {
		t.Fatalf("expected 1 updated symbol, got %d", updated)
	}
	if stored, _ := bars.Bars(context.Background(), domrepo.AssetCrypto, "BTC", dayAt(0), dayAt(10)); len(stored) != 2 {
		t.Fatalf("expected BTC bars stored despite HBL failure, got %d", len(stored))
	}
}
