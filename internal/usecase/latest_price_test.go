package usecase

import (
	"context"
	"errors"
	"testing"

	"FinBoard/internal/domain/models"
	domrepo "FinBoard/internal/domain/repository"
	"FinBoard/internal/services/analytics"
)

func TestGetLatestPriceFromBar(t *testing.T) {
	bars := newMemBarStore()
	_ = bars.StoreBars(context.Background(), domrepo.AssetCrypto, "BTC", barsOf(100, 110, 120))
	uc := NewLatestPriceUseCase(bars, NewPriceBoard())

	lp, err := uc.GetLatestPrice(context.Background(), domrepo.AssetCrypto, "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lp.Close != 120 || !lp.Date.Equal(dayAt(2)) {
		t.Fatalf("unexpected snapshot: %+v", lp)
	}
	if lp.Live {
		t.Fatalf("no tick seen, must not be live")
	}
}

func TestGetLatestPriceLiveOverlay(t *testing.T) {
	bars := newMemBarStore()
	_ = bars.StoreBars(context.Background(), domrepo.AssetCrypto, "BTC", barsOf(100, 110, 120))
	board := NewPriceBoard()
	board.Update(&models.Tick{Symbol: "BTC", Timestamp: dayAt(3).Unix(), Price: 125.5, Volume: 10})
	uc := NewLatestPriceUseCase(bars, board)

	lp, err := uc.GetLatestPrice(context.Background(), domrepo.AssetCrypto, "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lp.Live || lp.Close != 125.5 {
		t.Fatalf("expected live overlay, got %+v", lp)
	}
	if lp.Open != 120 {
		t.Fatalf("bar fields must survive the overlay, got open %v", lp.Open)
	}
}

func TestGetLatestPriceStaleTickIgnored(t *testing.T) {
	bars := newMemBarStore()
	_ = bars.StoreBars(context.Background(), domrepo.AssetCrypto, "BTC", barsOf(100, 110, 120))
	board := NewPriceBoard()
	// Tick older than the last stored bar.
	board.Update(&models.Tick{Symbol: "BTC", Timestamp: dayAt(1).Unix(), Price: 90})
	uc := NewLatestPriceUseCase(bars, board)

	lp, err := uc.GetLatestPrice(context.Background(), domrepo.AssetCrypto, "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lp.Live || lp.Close != 120 {
		t.Fatalf("stale tick must not overlay, got %+v", lp)
	}
}

func TestGetLatestPriceNoHistory(t *testing.T) {
	uc := NewLatestPriceUseCase(newMemBarStore(), NewPriceBoard())
	_, err := uc.GetLatestPrice(context.Background(), domrepo.AssetCrypto, "BTC")
	if !errors.Is(err, analytics.ErrInsufficientData) {
		t.Fatalf("expected insufficient data, got %v", err)
	}
}

func TestPriceBoardIgnoresEmptySymbol(t *testing.T) {
	board := NewPriceBoard()
	board.Update(&models.Tick{Timestamp: 1})
	board.Update(nil)
	if _, ok := board.Last(""); ok {
		t.Fatalf("empty symbol must not be stored")
	}
}
