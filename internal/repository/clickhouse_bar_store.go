package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"FinBoard/internal/domain/models"
	domrepo "FinBoard/internal/domain/repository"
	pkgch "FinBoard/pkg/clickhouse"
	applogger "FinBoard/pkg/logger"
)

// CHBarStore implements BarStore backed by ClickHouse. The bars table is a
// ReplacingMergeTree keyed by (asset, symbol, date), so re-inserting a date
// overwrites it on merge; reads use FINAL to observe last-wins immediately.
type CHBarStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHBarStore(ch *pkgch.Client, table string) *CHBarStore {
	return &CHBarStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHBarStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHBarStore) Init(ctx context.Context) error {
	return nil // Schema init in di
}

func (s *CHBarStore) StoreBars(ctx context.Context, asset domrepo.AssetType, symbol string, bars []models.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	// Chunked multi-row VALUES inserts to reduce round-trips.
	const chunkSize = 2000
	for start := 0; start < len(bars); start += chunkSize {
		end := start + chunkSize
		if end > len(bars) {
			end = len(bars)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*8)
		for _, b := range bars[start:end] {
			if b.Date.IsZero() || b.Close <= 0 {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				string(asset),
				symbol,
				b.Date,
				b.Open,
				b.High,
				b.Low,
				b.Close,
				b.Volume,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (asset, symbol, date, open, high, low, close, volume) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse store_bars insert error",
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
			return fmt.Errorf("store bars: %w", err)
		}
	}
	return nil
}

func (s *CHBarStore) Bars(ctx context.Context, asset domrepo.AssetType, symbol string, from, to time.Time) ([]models.Bar, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT symbol, date, open, high, low, close, volume
        FROM %s FINAL
        WHERE asset = ? AND symbol = ? AND date >= ? AND date <= ?
        ORDER BY date ASC
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, string(asset), symbol, from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_bars query error",
				applogger.String("asset", string(asset)),
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.Bar, 0, 1024)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Symbol, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse get_bars ok",
			applogger.String("asset", string(asset)),
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHBarStore) LatestBar(ctx context.Context, asset domrepo.AssetType, symbol string) (*models.Bar, error) {
	q := fmt.Sprintf(`
        SELECT symbol, date, open, high, low, close, volume
        FROM %s FINAL
        WHERE asset = ? AND symbol = ?
        ORDER BY date DESC
        LIMIT 1
    `, s.table)
	var b models.Bar
	err := s.db.QueryRowContext(ctx, q, string(asset), symbol).
		Scan(&b.Symbol, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest bar: %w", err)
	}
	return &b, nil
}

func (s *CHBarStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHBarStore) Close() error {
	return nil // Managed by pkg
}

var _ domrepo.BarStore = (*CHBarStore)(nil)
