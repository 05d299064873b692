package analysis

import (
	"fmt"
	"math"

	"stockradar/config"
	"stockradar/dataset"
)

// analyzeSentiment 市场情绪温度。消费涨跌停结构的结果，必须在其之后运行。
func analyzeSentiment(cfg config.Analysis, snap *Snapshot, limitup *LimitUpResult) (*SentimentResult, error) {
	if snap.MarketActivity.Empty() {
		return nil, fmt.Errorf("market activity data missing")
	}

	up := activityValue(snap.MarketActivity, "上涨")
	down := activityValue(snap.MarketActivity, "下跌")
	if math.IsNaN(up) || math.IsNaN(down) {
		return nil, fmt.Errorf("rise/fall counts missing from activity data")
	}
	profitEffect := 50.0
	if up+down > 0 {
		profitEffect = round2(up / (up + down) * 100)
	}

	if limitup == nil {
		limitup = &LimitUpResult{BreakRate: math.NaN()}
	}

	congestion := math.NaN()
	if !snap.Congestion.Empty() {
		if col, ok := dataset.PickColumn(snap.Congestion, "congestion", "拥挤度"); ok {
			// 接口按 0-1 返回，统一到百分比
			congestion = snap.Congestion.Float(snap.Congestion.Len()-1, col) * 100
		}
	}

	label := "中性"
	var reasons []string
	switch {
	case profitEffect > 65 && limitup.LimitUp > 80:
		label = "贪婪"
		reasons = append(reasons, fmt.Sprintf("赚钱效应强(%.2f%%)", profitEffect))
	case profitEffect > 50:
		label = "乐观"
		reasons = append(reasons, fmt.Sprintf("赚钱效应较好(%.2f%%)", profitEffect))
	case profitEffect >= 40:
		label = "中性偏冷"
		reasons = append(reasons, fmt.Sprintf("赚钱效应一般(%.2f%%)", profitEffect))
	default:
		label = "恐慌"
		reasons = append(reasons, fmt.Sprintf("赚钱效应差(%.2f%%)", profitEffect))
	}

	if limitup.LimitUp >= 60 {
		reasons = append(reasons, fmt.Sprintf("涨停家数活跃(%d)", limitup.LimitUp))
	}
	if limitup.LimitDown >= 20 {
		reasons = append(reasons, fmt.Sprintf("跌停家数偏多(%d)", limitup.LimitDown))
	}
	if limitup.HasStreak {
		reasons = append(reasons, fmt.Sprintf("连板高度%d", limitup.StreakHigh))
	}
	if !math.IsNaN(limitup.BreakRate) && limitup.BreakRate >= cfg.BreakRateWarn {
		reasons = append(reasons, fmt.Sprintf("炸板率偏高(%.2f%%)", limitup.BreakRate))
	}
	if congestion > 90 {
		reasons = append(reasons, fmt.Sprintf("拥挤度过高(%.1f%%),警惕回调", congestion))
	} else if congestion < 20 {
		reasons = append(reasons, fmt.Sprintf("拥挤度较低(%.1f%%),或存机会", congestion))
	}

	return &SentimentResult{
		Label:                label,
		Reasons:              reasons,
		ProfitEffect:         profitEffect,
		VolumePriceRiseCount: snap.VolumePriceRise.Len(),
		LimitUp:              limitup.LimitUp,
		LimitDown:            limitup.LimitDown,
		BreakRate:            limitup.BreakRate,
		StreakHigh:           limitup.StreakHigh,
		HasStreak:            limitup.HasStreak,
		Congestion:           congestion,
	}, nil
}

// activityValue 从 item/value 两列表中取指定条目的数值
func activityValue(t *dataset.Table, item string) float64 {
	itemCol := t.ColumnIndex("item")
	valueCol := t.ColumnIndex("value")
	if itemCol == dataset.ColNotFound || valueCol == dataset.ColNotFound {
		return math.NaN()
	}
	for i := 0; i < t.Len(); i++ {
		if t.Cell(i, itemCol) == item {
			return t.Float(i, valueCol)
		}
	}
	return math.NaN()
}
