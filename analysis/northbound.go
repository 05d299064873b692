package analysis

import (
	"fmt"
	"math"
	"sort"

	"stockradar/dataset"
)

// analyzeNorthbound 北向资金流与行业集中度
func analyzeNorthbound(snap *Snapshot) (*NorthboundResult, error) {
	result := &NorthboundResult{
		TotalNetInflow: math.NaN(),
		FiveDayAvg:     math.NaN(),
		SHNetInflow:    math.NaN(),
		SZNetInflow:    math.NaN(),
		TrendDesc:      "方向不明",
	}
	if snap.NorthboundFlow.Empty() && snap.NorthboundTop.Empty() {
		return nil, fmt.Errorf("northbound data missing")
	}

	if !snap.NorthboundFlow.Empty() {
		totalCol, ok := dataset.PickColumn(snap.NorthboundFlow,
			"北向资金", "北向资金净流入", "北向资金净买入", "北向资金今日净买入",
			"当日买入成交净额", "净流入", "净买入")
		if ok {
			series := columnValidFloats(snap.NorthboundFlow, totalCol)
			if len(series) > 0 {
				result.TotalNetInflow = NormalizeFlowValue(series[len(series)-1])
				if len(series) >= 2 {
					tail := series
					if len(tail) > 5 {
						tail = tail[len(tail)-5:]
					}
					var sum float64
					for _, v := range tail {
						sum += v
					}
					result.FiveDayAvg = NormalizeFlowValue(sum / float64(len(tail)))
				}

				// 从最新一天往回数连续同向天数，正为净流入
				streak := 0
				for i := len(series) - 1; i >= 0; i-- {
					if series[i] >= 0 {
						if streak >= 0 {
							streak++
						} else {
							break
						}
					} else {
						if streak <= 0 {
							streak--
						} else {
							break
						}
					}
				}
				result.Streak = streak
				switch {
				case streak > 0:
					result.TrendDesc = fmt.Sprintf("连续净流入%d日", streak)
				case streak < 0:
					result.TrendDesc = fmt.Sprintf("连续净流出%d日", -streak)
				}
			}
		}

		if shCol, ok := dataset.PickColumn(snap.NorthboundFlow, "沪股通", "沪股通净流入", "沪股通净买入"); ok {
			if series := columnValidFloats(snap.NorthboundFlow, shCol); len(series) > 0 {
				result.SHNetInflow = NormalizeFlowValue(series[len(series)-1])
			}
		}
		if szCol, ok := dataset.PickColumn(snap.NorthboundFlow, "深股通", "深股通净流入", "深股通净买入"); ok {
			if series := columnValidFloats(snap.NorthboundFlow, szCol); len(series) > 0 {
				result.SZNetInflow = NormalizeFlowValue(series[len(series)-1])
			}
		}
	}

	if !snap.NorthboundTop.Empty() && len(snap.IndustryMap) > 0 {
		fillNorthboundConcentration(snap, result)
	}
	return result, nil
}

// fillNorthboundConcentration 北向净买入的行业集中度与代表个股
func fillNorthboundConcentration(snap *Snapshot, result *NorthboundResult) {
	top := snap.NorthboundTop
	codeCol, hasCode := dataset.PickColumn(top, "代码", "股票代码", "证券代码")
	nameCol, hasName := dataset.PickColumn(top, "名称", "股票简称", "证券简称")
	valueCol, hasValue := dataset.PickColumn(top,
		"今日净买入", "净买入", "净流入", "当日净买入", "今日净流入",
		"买入成交净额", "持股市值", "持仓市值", "持股数量")

	type row struct {
		code, name string
		weight     float64
	}
	rows := make([]row, 0, top.Len())
	industryWeight := make(map[string]float64)

	for i := 0; i < top.Len(); i++ {
		r := row{weight: 1.0}
		if hasCode {
			r.code = top.Cell(i, codeCol)
			for len(r.code) < 6 {
				r.code = "0" + r.code
			}
		}
		if hasName {
			r.name = top.Cell(i, nameCol)
		}
		if hasValue {
			if v := top.Float(i, valueCol); !math.IsNaN(v) {
				r.weight = v
			} else {
				r.weight = 0
			}
		}
		rows = append(rows, r)
		if industry, ok := snap.IndustryMap[r.code]; ok && industry != "" {
			industryWeight[industry] += r.weight
		}
	}

	type pair struct {
		name   string
		weight float64
	}
	industries := make([]pair, 0, len(industryWeight))
	for name, w := range industryWeight {
		industries = append(industries, pair{name, w})
	}
	sort.Slice(industries, func(i, j int) bool { return industries[i].weight > industries[j].weight })
	for i := 0; i < len(industries) && i < 5; i++ {
		result.TopIndustries = append(result.TopIndustries,
			fmt.Sprintf("%s(%.2f)", industries[i].name, industries[i].weight))
	}

	if hasCode && hasName {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].weight > rows[j].weight })
		for i := 0; i < len(rows) && i < 5; i++ {
			result.TopStocks = append(result.TopStocks,
				fmt.Sprintf("%s(%s)", rows[i].name, rows[i].code))
		}
	}
}
