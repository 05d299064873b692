package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"stockradar/dataset"
)

// 风格指数的展示名，StyleIndexes 的键
const (
	StyleCSI300 = "沪深300"
	StyleZZ1000 = "中证1000"
	StyleChiNxt = "创业板指"
	StyleKC50   = "科创50"
	StyleBJ50   = "北证50"
)

// analyzeStyle 分市场与风格强弱
func analyzeStyle(snap *Snapshot) (*StyleResult, error) {
	if len(snap.StyleIndexes) == 0 {
		return nil, fmt.Errorf("style index data missing")
	}

	perf := make(map[string]IndexPerf)
	for name, table := range snap.StyleIndexes {
		if table.Empty() {
			continue
		}
		day := lastFloat(table, "涨跌幅", 0)
		if math.IsNaN(day) {
			day = calcReturn(table, 1)
		}
		perf[name] = IndexPerf{Day: day, Week: calcReturn(table, 5)}
	}
	if len(perf) == 0 {
		return nil, fmt.Errorf("no usable style index history")
	}

	dayRet := func(name string) float64 {
		p, ok := perf[name]
		if !ok {
			return math.NaN()
		}
		return p.Day
	}
	large := dayRet(StyleCSI300)
	small := dayRet(StyleZZ1000)
	growth := dayRet(StyleChiNxt)
	tech := dayRet(StyleKC50)
	bj := dayRet(StyleBJ50)

	summary := []string{
		compareStyles(small, large, "小盘", "大盘"),
		compareStyles(growth, large, "成长", "权重"),
	}
	if !math.IsNaN(tech) && !math.IsNaN(large) {
		summary = append(summary, compareStyles(tech, large, "科创", "权重"))
	}
	if !math.IsNaN(bj) && !math.IsNaN(small) {
		summary = append(summary, compareStyles(bj, small, "北证", "中小盘"))
	}

	type entry struct {
		name string
		ret  float64
	}
	ranked := make([]entry, 0, len(perf))
	for name, p := range perf {
		if !math.IsNaN(p.Day) {
			ranked = append(ranked, entry{name, p.Day})
		}
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].ret > ranked[j].ret })
	rank := make([]string, 0, len(ranked))
	for _, e := range ranked {
		rank = append(rank, fmt.Sprintf("%s(%+.2f%%)", e.name, e.ret))
	}

	return &StyleResult{
		Perf:    perf,
		Summary: strings.Join(summary, " | "),
		Rank:    rank,
	}, nil
}

// calcReturn 最近 days 个交易日的区间涨幅（%），样本不足返回 NaN
func calcReturn(t *dataset.Table, days int) float64 {
	col, ok := dataset.PickColumn(t, "收盘", "close")
	if !ok || t.Len() <= days {
		return math.NaN()
	}
	start := t.Float(t.Len()-1-days, col)
	end := t.Float(t.Len()-1, col)
	if math.IsNaN(start) || math.IsNaN(end) || start == 0 {
		return math.NaN()
	}
	return round2((end/start - 1) * 100)
}

func compareStyles(a, b float64, labelA, labelB string) string {
	if math.IsNaN(a) || math.IsNaN(b) {
		return "对比不足"
	}
	if a > b {
		return labelA + "强于" + labelB
	}
	return labelB + "强于" + labelA
}
