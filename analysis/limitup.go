package analysis

import (
	"math"

	"stockradar/dataset"
)

// analyzeLimitUp 涨跌停结构与连板高度。
// 池子取数失败时对应计数为 0，不视为分析失败。
func analyzeLimitUp(snap *Snapshot) (*LimitUpResult, error) {
	result := &LimitUpResult{
		LimitUp:   snap.LimitUpPool.Len(),
		LimitDown: snap.LimitDownPool.Len(),
		Broken:    snap.BrokenPool.Len(),
		BreakRate: math.NaN(),
	}

	// 连板高度优先从涨停池取，池子缺列时退到强势股池
	streak := maxStreak(snap.LimitUpPool)
	if math.IsNaN(streak) {
		streak = maxStreak(snap.StrongPool)
	}
	if !math.IsNaN(streak) {
		result.StreakHigh = int(streak)
		result.HasStreak = true
	}

	if denom := result.LimitUp + result.Broken; denom > 0 {
		result.BreakRate = round2(float64(result.Broken) / float64(denom) * 100)
	}
	return result, nil
}

func maxStreak(pool *dataset.Table) float64 {
	if pool.Empty() {
		return math.NaN()
	}
	col, ok := dataset.PickColumn(pool, "连板数", "连续涨停天数", "连板高度", "连板")
	if !ok {
		return math.NaN()
	}
	best := math.NaN()
	for i := 0; i < pool.Len(); i++ {
		if v := pool.Float(i, col); !math.IsNaN(v) && (math.IsNaN(best) || v > best) {
			best = v
		}
	}
	return best
}
