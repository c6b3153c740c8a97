package repository

import (
	"context"
	"time"

	"FinBoard/internal/domain/models"
)

// TickStream is a live last-price feed (WebSocket backed).
type TickStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Tick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher fans ticks out to a message broker.
type Publisher interface {
	Publish(ctx context.Context, t *models.Tick) error
	PublishBatch(ctx context.Context, ticks []*models.Tick) error
	Close() error
}

// BarSource fetches daily bars from an upstream market-data API. Since is
// exclusive: only bars strictly after it are returned; a zero Since means
// the full available history.
type BarSource interface {
	FetchDaily(ctx context.Context, symbol string, since time.Time) ([]models.Bar, error)
}

// BarStore persists and serves daily price history.
type BarStore interface {
	Init(ctx context.Context) error
	StoreBars(ctx context.Context, asset AssetType, symbol string, bars []models.Bar) error
	Bars(ctx context.Context, asset AssetType, symbol string, from, to time.Time) ([]models.Bar, error)
	LatestBar(ctx context.Context, asset AssetType, symbol string) (*models.Bar, error)
	Health(ctx context.Context) error
	Close() error
}

// TickSink persists live ticks (the ClickHouse leg of the tick pipeline).
type TickSink interface {
	Store(ctx context.Context, t *models.Tick) error
	StoreBatch(ctx context.Context, ticks []*models.Tick) error
	Close() error
}

// CycleStore persists confirmed market cycles, keyed by (asset, symbol).
// Saves are append-only; the caller assigns IDs that are unique and greater
// than any previously saved ID for the asset, and must not re-save a cycle
// already present (dedup key: start date + end date).
type CycleStore interface {
	SavedCycles(ctx context.Context, asset AssetType, symbol string) ([]models.MarketCycle, error)
	LastCycleEnd(ctx context.Context, asset AssetType, symbol string) (time.Time, bool, error)
	SaveCycle(ctx context.Context, asset AssetType, symbol string, c models.MarketCycle) error
}

type Metrics interface {
	RecordMessageSent(backend, symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
