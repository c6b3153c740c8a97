package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FinBoard/internal/domain/models"
	domrepo "FinBoard/internal/domain/repository"
	"FinBoard/internal/services/analytics"
)

// PriceBoard keeps the most recent live tick per symbol. The tick collector
// writes it; the latest-price lookup reads it.
type PriceBoard struct {
	mu sync.RWMutex
	m  map[string]models.Tick
}

func NewPriceBoard() *PriceBoard {
	return &PriceBoard{m: make(map[string]models.Tick)}
}

func (b *PriceBoard) Update(t *models.Tick) {
	if t == nil || t.Symbol == "" {
		return
	}
	b.mu.Lock()
	b.m[t.Symbol] = *t
	b.mu.Unlock()
}

func (b *PriceBoard) Last(symbol string) (models.Tick, bool) {
	b.mu.RLock()
	t, ok := b.m[symbol]
	b.mu.RUnlock()
	return t, ok
}

// LatestPriceUseCase serves the last known price per symbol: the last stored
// daily bar, overlaid by a live tick when one is fresher.
type LatestPriceUseCase struct {
	bars  domrepo.BarStore
	board *PriceBoard
}

func NewLatestPriceUseCase(bars domrepo.BarStore, board *PriceBoard) *LatestPriceUseCase {
	return &LatestPriceUseCase{bars: bars, board: board}
}

func (uc *LatestPriceUseCase) GetLatestPrice(ctx context.Context, asset domrepo.AssetType, symbol string) (*models.LatestPrice, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required: %w", analytics.ErrInvalidInput)
	}
	bar, err := uc.bars.LatestBar(ctx, asset, symbol)
	if err != nil {
		return nil, fmt.Errorf("latest bar %s: %w", symbol, err)
	}
	if bar == nil {
		return nil, fmt.Errorf("no stored bars for %s: %w", symbol, analytics.ErrInsufficientData)
	}

	lp := &models.LatestPrice{
		Symbol: symbol,
		Date:   bar.Date,
		Close:  bar.Close,
		Open:   bar.Open,
		High:   bar.High,
		Low:    bar.Low,
		Volume: bar.Volume,
	}
	if uc.board != nil {
		if t, ok := uc.board.Last(symbol); ok {
			at := time.Unix(t.Timestamp, 0).UTC()
			if at.After(bar.Date) {
				lp.Date = at
				lp.Close = t.Price
				lp.Live = true
			}
		}
	}
	return lp, nil
}
