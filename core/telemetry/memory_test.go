package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/kfadel/gridops/core/model"
)

var base = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

func TestMemoryStoreOrdersOutOfOrderAppends(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for _, h := range []int{3, 1, 2, 0} {
		_ = store.Append(ctx, model.Reading{UnitID: "T-01", Timestamp: base.Add(time.Duration(h) * time.Hour), LoadKW: float64(h)})
	}

	rs, err := store.Readings(ctx, "T-01", base, base.Add(4*time.Hour))
	if err != nil {
		t.Fatalf("readings: %v", err)
	}
	if len(rs) != 4 {
		t.Fatalf("expected 4 readings, got %d", len(rs))
	}
	for i := 1; i < len(rs); i++ {
		if rs[i].Timestamp.Before(rs[i-1].Timestamp) {
			t.Fatalf("readings not ascending: %v before %v", rs[i].Timestamp, rs[i-1].Timestamp)
		}
	}
}

func TestMemoryStoreWindowFiltering(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for h := 0; h < 10; h++ {
		_ = store.Append(ctx, model.Reading{UnitID: "T-01", Timestamp: base.Add(time.Duration(h) * time.Hour)})
	}

	rs, err := store.Readings(ctx, "T-01", base.Add(2*time.Hour), base.Add(5*time.Hour))
	if err != nil {
		t.Fatalf("readings: %v", err)
	}
	if len(rs) != 4 {
		t.Fatalf("expected 4 readings in window, got %d", len(rs))
	}
	if rs[0].Timestamp != base.Add(2*time.Hour) || rs[3].Timestamp != base.Add(5*time.Hour) {
		t.Fatalf("window boundaries wrong: %v .. %v", rs[0].Timestamp, rs[3].Timestamp)
	}
}

func TestMemoryStoreLatestReading(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, ok, _ := store.LatestReading(ctx, "T-01"); ok {
		t.Fatal("expected no reading for unknown unit")
	}

	_ = store.Append(ctx, model.Reading{UnitID: "T-01", Timestamp: base, LoadKW: 10})
	_ = store.Append(ctx, model.Reading{UnitID: "T-01", Timestamp: base.Add(2 * time.Hour), LoadKW: 30})
	_ = store.Append(ctx, model.Reading{UnitID: "T-01", Timestamp: base.Add(time.Hour), LoadKW: 20})

	r, ok, err := store.LatestReading(ctx, "T-01")
	if err != nil || !ok {
		t.Fatalf("latest: ok=%v err=%v", ok, err)
	}
	if r.LoadKW != 30 {
		t.Fatalf("latest reading = %v, want the 2h one", r.LoadKW)
	}
}

func TestMemoryStoreLatestTemperature(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	temp := 34.5
	_ = store.Append(ctx, model.Reading{UnitID: "T-01", Timestamp: base, TempC: &temp})
	_ = store.Append(ctx, model.Reading{UnitID: "T-01", Timestamp: base.Add(time.Hour)})

	r, ok, err := store.LatestTemperature(ctx, "T-01")
	if err != nil || !ok {
		t.Fatalf("latest temperature: ok=%v err=%v", ok, err)
	}
	// the newer reading has no sample, so the older one wins
	if *r.TempC != 34.5 {
		t.Fatalf("temperature = %v", *r.TempC)
	}

	if _, ok, _ := store.LatestTemperature(ctx, "T-02"); ok {
		t.Fatal("expected no temperature for unknown unit")
	}
}
