package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"stockradar/dataset"
)

func newTestManager(t *testing.T, now time.Time) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	m.now = func() time.Time { return now }
	return m
}

func TestFetchCachesWithinBucket(t *testing.T) {
	m := newTestManager(t, time.Date(2024, 5, 6, 10, 30, 0, 0, time.Local))

	calls := 0
	producer := func(context.Context) (*dataset.Table, error) {
		calls++
		tb := dataset.New("代码", "名称")
		tb.AppendRow("000001", "平安银行")
		return tb, nil
	}

	first := m.Fetch(context.Background(), "stock_spot", nil, Hourly, producer)
	second := m.Fetch(context.Background(), "stock_spot", nil, Hourly, producer)

	if calls != 1 {
		t.Fatalf("expected 1 producer call, got %d", calls)
	}
	if first.Len() != 1 || second.Len() != 1 {
		t.Fatalf("expected cached row back, got %d / %d rows", first.Len(), second.Len())
	}
}

func TestFetchNewBucketRefetches(t *testing.T) {
	now := time.Date(2024, 5, 6, 10, 30, 0, 0, time.Local)
	m := newTestManager(t, now)

	calls := 0
	producer := func(context.Context) (*dataset.Table, error) {
		calls++
		tb := dataset.New("v")
		tb.AppendRow("1")
		return tb, nil
	}

	m.Fetch(context.Background(), "spot", nil, Hourly, producer)
	m.now = func() time.Time { return now.Add(time.Hour) }
	m.Fetch(context.Background(), "spot", nil, Hourly, producer)

	if calls != 2 {
		t.Fatalf("expected refetch in new hour bucket, got %d calls", calls)
	}
}

func TestFetchFailureCachedAsEmpty(t *testing.T) {
	m := newTestManager(t, time.Date(2024, 5, 6, 10, 0, 0, 0, time.Local))

	calls := 0
	producer := func(context.Context) (*dataset.Table, error) {
		calls++
		return nil, errors.New("upstream down")
	}

	first := m.Fetch(context.Background(), "flow", []string{"sh"}, Hourly, producer)
	second := m.Fetch(context.Background(), "flow", []string{"sh"}, Hourly, producer)

	if !first.Empty() || !second.Empty() {
		t.Fatal("expected empty tables on failure")
	}
	if calls != 1 {
		t.Fatalf("failure should be cached within bucket, got %d calls", calls)
	}
}

func TestFetchIncrementalFirstRunFetchesFromEpoch(t *testing.T) {
	m := newTestManager(t, time.Date(2024, 5, 6, 16, 0, 0, 0, time.Local))

	var gotStart string
	producer := func(_ context.Context, start string) (*dataset.Table, error) {
		gotStart = start
		tb := dataset.New("日期", "收盘")
		tb.AppendRow("2024-05-02", "3100")
		tb.AppendRow("2024-05-03", "3110")
		return tb, nil
	}

	got := m.FetchIncremental(context.Background(), "index_sh", "日期", producer)
	if gotStart != "19900101" {
		t.Fatalf("expected first fetch from 19900101, got %s", gotStart)
	}
	if got.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", got.Len())
	}
}

func TestFetchIncrementalMergesDelta(t *testing.T) {
	m := newTestManager(t, time.Date(2024, 5, 7, 16, 0, 0, 0, time.Local))

	full := dataset.New("日期", "收盘")
	full.AppendRow("2024-05-02", "3100")
	full.AppendRow("2024-05-03", "3110")
	m.store("index_sh_base.json", full)

	var gotStart string
	producer := func(_ context.Context, start string) (*dataset.Table, error) {
		gotStart = start
		tb := dataset.New("日期", "收盘")
		tb.AppendRow("2024-05-03", "3111") // 修正值，应覆盖旧行
		tb.AppendRow("2024-05-06", "3120")
		return tb, nil
	}

	got := m.FetchIncremental(context.Background(), "index_sh", "日期", producer)
	if gotStart != "20240504" {
		t.Fatalf("expected delta from 20240504, got %s", gotStart)
	}
	if got.Len() != 3 {
		t.Fatalf("expected 3 rows after merge, got %d", got.Len())
	}
	col := got.ColumnIndex("收盘")
	if got.Cell(1, col) != "3111" {
		t.Fatalf("expected later row to win dedupe, got %s", got.Cell(1, col))
	}
	if got.Cell(2, got.ColumnIndex("日期")) != "2024-05-06" {
		t.Fatal("expected rows sorted by date ascending")
	}
}

func TestFetchIncrementalFailureServesCachedHistory(t *testing.T) {
	m := newTestManager(t, time.Date(2024, 5, 7, 16, 0, 0, 0, time.Local))

	full := dataset.New("日期", "收盘")
	full.AppendRow("2024-05-02", "3100")
	m.store("index_sh_base.json", full)

	producer := func(context.Context, string) (*dataset.Table, error) {
		return nil, errors.New("timeout")
	}

	got := m.FetchIncremental(context.Background(), "index_sh", "日期", producer)
	if got.Len() != 1 {
		t.Fatalf("expected cached base back, got %d rows", got.Len())
	}
}

func TestSweepKeepsBaseAndCurrentBucket(t *testing.T) {
	now := time.Date(2024, 5, 6, 10, 0, 0, 0, time.Local)
	m := newTestManager(t, now)

	files := []string{
		"index_sh_base.json",        // 基线，保留
		"spot_2024050610.json",      // 当前小时桶，保留
		"calendar_20240506.json",    // 当日桶，保留
		"spot_2024050609.json",      // 过期小时桶，清理
		"calendar_20240430.json",    // 过期日桶，清理
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(m.dir, f), []byte(`{"columns":[],"rows":[]}`), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	m.Sweep()

	want := map[string]bool{
		"index_sh_base.json":     true,
		"spot_2024050610.json":   true,
		"calendar_20240506.json": true,
	}
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d files after sweep, got %d", len(want), len(entries))
	}
	for _, e := range entries {
		if !want[e.Name()] {
			t.Fatalf("unexpected survivor %s", e.Name())
		}
	}
}
