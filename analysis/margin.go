package analysis

import (
	"fmt"
	"math"

	"stockradar/config"
	"stockradar/dataset"
)

// analyzeMargin 市场杠杆率 = 两市融资余额 / 总流通市值 × 100
func analyzeMargin(cfg config.Analysis, snap *Snapshot) (*MarginResult, error) {
	if snap.MarginSH.Empty() || snap.MarginSZ.Empty() || snap.StockSpot.Empty() {
		return nil, fmt.Errorf("margin balance or stock spot data missing")
	}

	latest := lastFloat(snap.MarginSH, "融资余额", 0) + lastFloat(snap.MarginSZ, "融资余额", 0)
	prev := lastFloat(snap.MarginSH, "融资余额", 1) + lastFloat(snap.MarginSZ, "融资余额", 1)
	if math.IsNaN(latest) {
		return nil, fmt.Errorf("margin balance column missing")
	}

	change := (latest - prev) / 1e8
	changeDesc := fmt.Sprintf("净买入 %.2f亿元", change)
	if change <= 0 {
		changeDesc = fmt.Sprintf("净偿还 %.2f亿元", math.Abs(change))
	}

	capCol := snap.StockSpot.ColumnIndex("流通市值")
	if capCol == dataset.ColNotFound {
		return nil, fmt.Errorf("float cap column missing")
	}
	totalCap := sumColumn(snap.StockSpot, capCol)

	ratio := 0.0
	if totalCap > 0 {
		ratio = latest / totalCap * 100
	}

	var level string
	switch {
	case ratio < cfg.LeverageMedium:
		level = "较低"
	case ratio < cfg.LeverageElevated:
		level = "中等"
	case ratio < cfg.LeverageRisk:
		level = "偏高"
	default:
		level = "风险区"
	}

	return &MarginResult{
		TotalBalance:  latest / 1e8,
		ChangeDesc:    changeDesc,
		LeverageRatio: ratio,
		Level:         level,
	}, nil
}
