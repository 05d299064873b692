package engine

import (
	"testing"
	"time"
)

func TestLastTradeDay(t *testing.T) {
	tests := []struct {
		name       string
		now        time.Time
		tradingDay bool
		want       string
	}{
		{"交易日直接用当天", time.Date(2024, 5, 6, 10, 0, 0, 0, time.Local), true, "20240506"},
		{"周六回退到周五", time.Date(2024, 5, 11, 10, 0, 0, 0, time.Local), false, "20240510"},
		{"周日回退到周五", time.Date(2024, 5, 12, 10, 0, 0, 0, time.Local), false, "20240510"},
		{"周内假日回退到前一个周内日", time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local), false, "20240430"},
		{"周一假日跨过周末", time.Date(2024, 4, 29, 10, 0, 0, 0, time.Local), false, "20240426"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lastTradeDay(tt.now, tt.tradingDay).Format("20060102")
			if got != tt.want {
				t.Fatalf("lastTradeDay = %s, want %s", got, tt.want)
			}
		})
	}
}
