package repository

import (
	"context"
	"testing"
	"time"

	"FinBoard/internal/domain/models"
	domrepo "FinBoard/internal/domain/repository"
)

func TestCycleInsertArgs(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 6, 0)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := models.MarketCycle{
		ID:         3,
		Name:       "Cycle 3",
		StartDate:  start,
		EndDate:    end,
		StartPrice: 100,
		EndPrice:   250,
		ROI:        1.5,
		Duration:   183,
	}

	args := cycleInsertArgs(domrepo.AssetCrypto, "BTC", c, created)
	if len(args) != 11 {
		t.Fatalf("got %d args, want 11", len(args))
	}
	if args[0] != "crypto" || args[1] != "BTC" {
		t.Fatalf("bad asset/symbol: %v %v", args[0], args[1])
	}
	if args[2] != uint32(3) {
		t.Fatalf("bad cycle_id: %v", args[2])
	}
	if args[3] != "Cycle 3" {
		t.Fatalf("bad name: %v", args[3])
	}
	if !args[4].(time.Time).Equal(start) || !args[5].(time.Time).Equal(end) {
		t.Fatalf("bad dates: %v %v", args[4], args[5])
	}
	if args[9] != uint32(183) {
		t.Fatalf("bad duration: %v", args[9])
	}
	if !args[10].(time.Time).Equal(created) {
		t.Fatalf("bad created_at: %v", args[10])
	}
}

func TestSaveCycleRefusesOngoing(t *testing.T) {
	s := &CHCycleStore{table: "finboard.market_cycles"}
	err := s.SaveCycle(context.Background(), domrepo.AssetCrypto, "BTC", models.MarketCycle{ID: 4, Current: true})
	if err == nil {
		t.Fatal("expected error for ongoing cycle")
	}
}
