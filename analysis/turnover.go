package analysis

import (
	"fmt"
	"math"

	"stockradar/dataset"
)

// analyzeTurnover 全市场换手率：按流通市值加权
func analyzeTurnover(snap *Snapshot) (*TurnoverResult, error) {
	if snap.StockSpot.Empty() {
		return nil, fmt.Errorf("stock spot data missing")
	}
	rateCol := snap.StockSpot.ColumnIndex("换手率")
	capCol := snap.StockSpot.ColumnIndex("流通市值")
	if rateCol == dataset.ColNotFound || capCol == dataset.ColNotFound {
		return nil, fmt.Errorf("turnover rate or float cap column missing")
	}

	var weightedSum, capSum float64
	for i := 0; i < snap.StockSpot.Len(); i++ {
		rate := snap.StockSpot.Float(i, rateCol)
		cap := snap.StockSpot.Float(i, capCol)
		if math.IsNaN(rate) || math.IsNaN(cap) || rate <= 0 || cap <= 0 {
			continue
		}
		weightedSum += rate * cap
		capSum += cap
	}
	if capSum == 0 {
		return nil, fmt.Errorf("no valid turnover samples")
	}

	weighted := weightedSum / capSum
	var level string
	switch {
	case weighted > 3.5:
		level = "极高(过热)"
	case weighted > 2.0:
		level = "较高(活跃)"
	case weighted > 1.0:
		level = "中等(温和)"
	default:
		level = "较低(谨慎)"
	}
	return &TurnoverResult{WeightedRate: weighted, Level: level}, nil
}
