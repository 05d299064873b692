package analysis

import (
	"math"

	"stockradar/dataset"
)

// lastFloat 取某列倒数第 back+1 行的数值，取不到返回 NaN
func lastFloat(t *dataset.Table, col string, back int) float64 {
	idx := t.ColumnIndex(col)
	if idx == dataset.ColNotFound {
		return math.NaN()
	}
	row := t.Len() - 1 - back
	if row < 0 {
		return math.NaN()
	}
	return t.Float(row, idx)
}

// sumColumn 列求和，NaN 按 0 计
func sumColumn(t *dataset.Table, col int) float64 {
	var sum float64
	for i := 0; i < t.Len(); i++ {
		if v := t.Float(i, col); !math.IsNaN(v) {
			sum += v
		}
	}
	return sum
}

// meanTail 某列末尾 n 行（不含最后 skipLast 行）的均值，样本不足返回 NaN
func meanTail(t *dataset.Table, col string, n, skipLast int) float64 {
	idx := t.ColumnIndex(col)
	if idx == dataset.ColNotFound {
		return math.NaN()
	}
	end := t.Len() - skipLast
	start := end - n
	if start < 0 || end <= start {
		return math.NaN()
	}
	var sum float64
	var count int
	for i := start; i < end; i++ {
		if v := t.Float(i, idx); !math.IsNaN(v) {
			sum += v
			count++
		}
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}

// columnValidFloats 某列全部可解析的数值，保持原行序
func columnValidFloats(t *dataset.Table, col int) []float64 {
	var out []float64
	for i := 0; i < t.Len(); i++ {
		if v := t.Float(i, col); !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
