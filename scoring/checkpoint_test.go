package scoring

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"stockradar/dataset"
)

func openTestCheckpoint(t *testing.T) *Checkpoint {
	t.Helper()
	cp, err := OpenCheckpoint(filepath.Join(t.TempDir(), "progress.db"))
	if err != nil {
		t.Fatalf("OpenCheckpoint: %v", err)
	}
	t.Cleanup(func() { cp.Close() })
	return cp
}

func TestCheckpointSaveLoad(t *testing.T) {
	cp := openTestCheckpoint(t)

	r := TechResult{Code: "510300", Name: "沪深300ETF", Status: "观察", BaseScore: 2.0, ChangePct: 0.3}
	if err := cp.Save("2024-05-06", r); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// 同键覆盖
	r.Status = "强势加速上涨"
	r.BaseScore = 2.5
	if err := cp.Save("2024-05-06", r); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}

	loaded, err := cp.Load("2024-05-06")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 record, got %d", len(loaded))
	}
	got := loaded["510300"]
	if got.Status != "强势加速上涨" || got.BaseScore != 2.5 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// 不同日期互不可见
	other, err := cp.Load("2024-05-07")
	if err != nil {
		t.Fatalf("Load other date: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected empty for other date, got %d", len(other))
	}
}

func TestScanResumesFromCheckpoint(t *testing.T) {
	cp := openTestCheckpoint(t)
	if err := cp.Save("2024-05-06", TechResult{
		Code: "510300", Name: "沪深300ETF", Status: "观察", BaseScore: 2.0,
	}); err != nil {
		t.Fatal(err)
	}

	var fetches int32
	history := func(_ context.Context, code string) (*dataset.Table, error) {
		atomic.AddInt32(&fetches, 1)
		closes := make([]float64, 30)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}
		return histFixture(closes, 0.5), nil
	}

	e := NewEngine(history, cp, 2, 0, zap.NewNop())
	universe := []TechResult{
		{Code: "510300", Name: "沪深300ETF"},
		{Code: "516920", Name: "半导体ETF"},
	}

	results := e.Scan(context.Background(), "2024-05-06", universe)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if atomic.LoadInt32(&fetches) != 1 {
		t.Fatalf("checkpointed instrument must be skipped, got %d fetches", fetches)
	}

	// 第二轮全部命中断点，不再取数
	atomic.StoreInt32(&fetches, 0)
	results = e.Scan(context.Background(), "2024-05-06", universe)
	if len(results) != 2 || atomic.LoadInt32(&fetches) != 0 {
		t.Fatalf("rerun should be fully checkpointed, results=%d fetches=%d", len(results), fetches)
	}
}
