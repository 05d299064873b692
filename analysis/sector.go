package analysis

import (
	"fmt"
	"math"
	"sort"

	"stockradar/dataset"
)

// analyzeSectorHeat 板块相对强弱度。
// 热力值 = 0.7×人气强度分 + 0.3×资金强度分，均为板块间百分位排名。
func analyzeSectorHeat(snap *Snapshot) ([]SectorRecord, error) {
	if snap.SectorFundFlow.Empty() {
		return nil, fmt.Errorf("sector fund flow data missing")
	}

	nameCol, ok := dataset.PickColumn(snap.SectorFundFlow, "名称", "板块名称")
	if !ok {
		return nil, fmt.Errorf("sector name column missing")
	}
	pctCol, _ := dataset.PickColumn(snap.SectorFundFlow, "涨跌幅", "板块涨跌幅")
	fundCol, hasFund := dataset.PickColumn(snap.SectorFundFlow, "今日主力净流入-净额", "主力净流入")

	// 量价齐升个股按行业归集，作为板块人气
	riseCounts := make(map[string]float64)
	if !snap.VolumePriceRise.Empty() && len(snap.IndustryMap) > 0 {
		if codeCol, ok := dataset.PickColumn(snap.VolumePriceRise, "股票代码", "代码"); ok {
			for i := 0; i < snap.VolumePriceRise.Len(); i++ {
				code := snap.VolumePriceRise.Cell(i, codeCol)
				for len(code) < 6 {
					code = "0" + code
				}
				if industry, found := snap.IndustryMap[code]; found {
					riseCounts[industry]++
				}
			}
		}
	}

	n := snap.SectorFundFlow.Len()
	records := make([]SectorRecord, n)
	rises := make([]float64, n)
	funds := make([]float64, n)
	for i := 0; i < n; i++ {
		name := snap.SectorFundFlow.Cell(i, nameCol)
		records[i] = SectorRecord{
			Name:       name,
			PctChg:     snap.SectorFundFlow.Float(i, pctCol),
			RiseCount:  riseCounts[name],
			FundInflow: math.NaN(),
		}
		rises[i] = records[i].RiseCount
		funds[i] = math.NaN()
		if hasFund {
			funds[i] = snap.SectorFundFlow.Float(i, fundCol)
			records[i].FundInflow = funds[i]
		}
	}

	popularity := dataset.PercentileRank(rises)

	// 资金列偶尔整列缺失，此时给中性分，避免热力值整列 NaN
	allNaN := true
	for _, v := range funds {
		if !math.IsNaN(v) {
			allNaN = false
			break
		}
	}
	var fundScores []float64
	if allNaN {
		fundScores = make([]float64, n)
		for i := range fundScores {
			fundScores[i] = 50.0
		}
	} else {
		fundScores = dataset.PercentileRank(funds)
	}

	for i := range records {
		records[i].PopularityScore = popularity[i]
		records[i].FundScore = fundScores[i]
		records[i].Heat = round2(0.7*popularity[i] + 0.3*fundScores[i])
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].Heat > records[j].Heat })
	return records, nil
}
