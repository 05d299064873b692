package analysis

import (
	"testing"
	"time"

	"stockradar/dataset"
)

func TestClassifyRunMode(t *testing.T) {
	day := func(hour, min int) time.Time {
		return time.Date(2024, 5, 6, hour, min, 0, 0, time.Local)
	}
	tests := []struct {
		name       string
		now        time.Time
		tradingDay bool
		want       RunMode
	}{
		{"morning session", day(10, 0), true, LiveMorning},
		{"lunch break", day(12, 30), true, MiddaySummary},
		{"afternoon session", day(14, 0), true, LiveAfternoon},
		{"after close", day(16, 0), true, PostMarket},
		{"before open", day(8, 0), true, PostMarket},
		{"non trading day", day(10, 0), false, PostMarket},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyRunMode(tt.now, tt.tradingDay); got != tt.want {
				t.Fatalf("ClassifyRunMode() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestElapsedTradingMinutes(t *testing.T) {
	day := func(hour, min int) time.Time {
		return time.Date(2024, 5, 6, hour, min, 0, 0, time.Local)
	}
	tests := []struct {
		name string
		now  time.Time
		want float64
	}{
		{"before open", day(9, 0), 0},
		{"mid morning", day(10, 30), 60},
		{"morning close", day(11, 30), 120},
		{"lunch frozen", day(12, 15), 120},
		{"mid afternoon", day(14, 0), 180},
		{"after close capped", day(15, 30), 240},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ElapsedTradingMinutes(tt.now, true); got != tt.want {
				t.Fatalf("ElapsedTradingMinutes() = %v, want %v", got, tt.want)
			}
		})
	}
	if got := ElapsedTradingMinutes(day(10, 0), false); got != 0 {
		t.Fatalf("non trading day should yield 0, got %v", got)
	}
}

func TestIsTradingDay(t *testing.T) {
	cal := dataset.New("trade_date")
	cal.AppendRow("2024-05-06")
	cal.AppendRow("2024-05-07")

	if !IsTradingDay(cal, time.Date(2024, 5, 6, 10, 0, 0, 0, time.Local)) {
		t.Fatal("2024-05-06 should be a trading day")
	}
	if IsTradingDay(cal, time.Date(2024, 5, 8, 10, 0, 0, 0, time.Local)) {
		t.Fatal("2024-05-08 is not in the calendar")
	}

	// 日历缺失时退化为工作日判断
	if !IsTradingDay(&dataset.Table{}, time.Date(2024, 5, 8, 10, 0, 0, 0, time.Local)) {
		t.Fatal("weekday fallback should treat Wednesday as trading day")
	}
	if IsTradingDay(&dataset.Table{}, time.Date(2024, 5, 11, 10, 0, 0, 0, time.Local)) {
		t.Fatal("weekday fallback should reject Saturday")
	}
}
