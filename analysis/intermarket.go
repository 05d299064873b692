package analysis

import (
	"fmt"
	"math"

	"stockradar/dataset"
)

// analyzeIntermarket 股债关系与大盘趋势
func analyzeIntermarket(snap *Snapshot) (*IntermarketResult, error) {
	if snap.IndexSH.Empty() || snap.BondETF.Empty() {
		return nil, fmt.Errorf("index or bond history missing")
	}

	closeVal := lastFloat(snap.IndexSH, "收盘", 0)
	pctChg := lastFloat(snap.IndexSH, "涨跌幅", 0)
	ma5 := meanTail(snap.IndexSH, "收盘", 5, 0)
	if math.IsNaN(closeVal) || math.IsNaN(ma5) {
		return nil, fmt.Errorf("index close history insufficient")
	}

	trend := "跌破5日线"
	if closeVal > ma5 {
		trend = "站上5日线"
	}

	// 60日区间位置
	highCol := snap.IndexSH.ColumnIndex("最高")
	lowCol := snap.IndexSH.ColumnIndex("最低")
	high60, low60 := math.Inf(-1), math.Inf(1)
	start := snap.IndexSH.Len() - 60
	if start < 0 {
		start = 0
	}
	for i := start; i < snap.IndexSH.Len(); i++ {
		if h := snap.IndexSH.Float(i, highCol); !math.IsNaN(h) && h > high60 {
			high60 = h
		}
		if l := snap.IndexSH.Float(i, lowCol); !math.IsNaN(l) && l < low60 {
			low60 = l
		}
	}
	position := 0.5
	if high60 > low60 {
		position = (closeVal - low60) / (high60 - low60)
	}
	positionDesc := "震荡中枢"
	if position > 0.8 {
		positionDesc = "高位区域"
	} else if position < 0.2 {
		positionDesc = "低位区域"
	}

	bondPct := math.NaN()
	if col, ok := dataset.PickColumn(snap.BondETF, "涨跌幅", "pct_chg"); ok {
		if snap.BondETF.Len() > 0 {
			bondPct = snap.BondETF.Float(snap.BondETF.Len()-1, col)
		}
	}

	relation := "分歧"
	switch {
	case pctChg > 0.2 && bondPct < -0.05:
		relation = "股强债弱 (Risk-On)"
	case pctChg < -0.2 && bondPct > 0.05:
		relation = "股弱债强 (Risk-Off)"
	case pctChg < -0.2 && bondPct < -0.05:
		relation = "股债双杀 (流动性收紧)"
	case pctChg > 0.2 && bondPct > 0.05:
		relation = "股债双强 (流动性宽松)"
	}

	return &IntermarketResult{
		Trend:        trend,
		Relation:     relation,
		Close:        closeVal,
		PctChg:       pctChg,
		PositionDesc: positionDesc,
	}, nil
}
