package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"FinBoard/internal/domain/models"
	domrepo "FinBoard/internal/domain/repository"
	pkgch "FinBoard/pkg/clickhouse"
	applogger "FinBoard/pkg/logger"
)

// CHCycleStore implements CycleStore backed by ClickHouse. Cycles are
// append-only: rows are inserted once a cycle's confirmation window has
// elapsed and are never updated.
type CHCycleStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHCycleStore(ch *pkgch.Client, table string) *CHCycleStore {
	return &CHCycleStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHCycleStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHCycleStore) SavedCycles(ctx context.Context, asset domrepo.AssetType, symbol string) ([]models.MarketCycle, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT cycle_id, name, start_date, end_date, start_price, end_price, roi, duration_days
        FROM %s
        WHERE asset = ? AND symbol = ?
        ORDER BY cycle_id ASC
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, string(asset), symbol)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse saved_cycles query error",
				applogger.String("asset", string(asset)),
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("saved cycles: %w", err)
	}
	defer rows.Close()

	var out []models.MarketCycle
	for rows.Next() {
		var (
			c        models.MarketCycle
			id       uint32
			duration uint32
		)
		if err := rows.Scan(&id, &c.Name, &c.StartDate, &c.EndDate, &c.StartPrice, &c.EndPrice, &c.ROI, &duration); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		c.ID = int(id)
		c.Duration = int(duration)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse saved_cycles ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHCycleStore) LastCycleEnd(ctx context.Context, asset domrepo.AssetType, symbol string) (time.Time, bool, error) {
	q := fmt.Sprintf(`
        SELECT end_date
        FROM %s
        WHERE asset = ? AND symbol = ?
        ORDER BY cycle_id DESC
        LIMIT 1
    `, s.table)
	var end time.Time
	err := s.db.QueryRowContext(ctx, q, string(asset), symbol).Scan(&end)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("last cycle end: %w", err)
	}
	return end, true, nil
}

func (s *CHCycleStore) SaveCycle(ctx context.Context, asset domrepo.AssetType, symbol string, c models.MarketCycle) error {
	if c.Current {
		return fmt.Errorf("refusing to save ongoing cycle %d", c.ID)
	}
	q := fmt.Sprintf(`
        INSERT INTO %s (asset, symbol, cycle_id, name, start_date, end_date, start_price, end_price, roi, duration_days, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, s.table)
	_, err := s.db.ExecContext(ctx, q, cycleInsertArgs(asset, symbol, c, time.Now().UTC())...)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse save_cycle insert error",
				applogger.String("symbol", symbol),
				applogger.Int("cycle_id", c.ID),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("save cycle: %w", err)
	}
	return nil
}

// cycleInsertArgs maps a cycle onto the insert column order of the
// market_cycles table.
func cycleInsertArgs(asset domrepo.AssetType, symbol string, c models.MarketCycle, createdAt time.Time) []interface{} {
	return []interface{}{
		string(asset),
		symbol,
		uint32(c.ID),
		c.Name,
		c.StartDate,
		c.EndDate,
		c.StartPrice,
		c.EndPrice,
		c.ROI,
		uint32(c.Duration),
		createdAt,
	}
}

var _ domrepo.CycleStore = (*CHCycleStore)(nil)
