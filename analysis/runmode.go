// Package analysis 实现市场多维度分析流水线
package analysis

import (
	"time"

	"stockradar/dataset"
)

// RunMode 运行模式，决定是否做盘中外推以及报告标题
type RunMode string

const (
	LiveMorning   RunMode = "LIVE_MORNING"
	MiddaySummary RunMode = "MIDDAY_SUMMARY"
	LiveAfternoon RunMode = "LIVE_AFTERNOON"
	PostMarket    RunMode = "POST_MARKET"
)

// ClassifyRunMode 根据是否交易日与当前小时确定运行模式
func ClassifyRunMode(now time.Time, tradingDay bool) RunMode {
	if !tradingDay {
		return PostMarket
	}
	switch h := now.Hour(); {
	case h >= 9 && h < 12:
		return LiveMorning
	case h == 12:
		return MiddaySummary
	case h >= 13 && h < 15:
		return LiveAfternoon
	default:
		return PostMarket
	}
}

// IsTradingDay 用交易日历判断指定日期是否交易日。
// 日历为空时退化为工作日判断。
func IsTradingDay(calendar *dataset.Table, day time.Time) bool {
	if calendar.Empty() {
		return day.Weekday() != time.Saturday && day.Weekday() != time.Sunday
	}
	col, ok := dataset.PickColumn(calendar, "trade_date", "日期")
	if !ok {
		return day.Weekday() != time.Saturday && day.Weekday() != time.Sunday
	}
	for i := 0; i < calendar.Len(); i++ {
		d := dataset.ParseDate(calendar.Cell(i, col))
		if !d.IsZero() && d.Year() == day.Year() && d.YearDay() == day.YearDay() {
			return true
		}
	}
	return false
}

// ElapsedTradingMinutes 当天已过的交易分钟数。
// 交易时段为 9:30-11:30 与 13:00-15:00，午休冻结在 120，收盘后封顶 240。
func ElapsedTradingMinutes(now time.Time, tradingDay bool) float64 {
	if !tradingDay {
		return 0
	}
	minuteOfDay := now.Hour()*60 + now.Minute()
	switch {
	case minuteOfDay < 9*60+30:
		return 0
	case minuteOfDay <= 11*60+30:
		return float64(minuteOfDay - (9*60 + 30))
	case minuteOfDay < 13*60:
		return 120
	case minuteOfDay <= 15*60:
		return 120 + float64(minuteOfDay-13*60)
	default:
		return 240
	}
}
