package analysis

import (
	"fmt"
	"math"
	"strings"

	"stockradar/config"
	"stockradar/dataset"
)

// analyzeLiquidity 市场流动性与主力行为。
// 成交额来源优先级：实时全市场汇总 > 指数实时汇总 > 指数日线；
// 盘中按 240/已过交易分钟 外推到全天再做定性分档。
func analyzeLiquidity(cfg config.Analysis, snap *Snapshot) (*LiquidityResult, error) {
	if snap.MarketFundFlow.Empty() || snap.IndexSH.Empty() || snap.IndexSZ.Empty() {
		return nil, fmt.Errorf("market fund flow or index history missing")
	}

	result := &LiquidityResult{}

	totalTurnover := (lastFloat(snap.IndexSH, "成交额", 0) + lastFloat(snap.IndexSZ, "成交额", 0)) / 1e8
	if math.IsNaN(totalTurnover) {
		return nil, fmt.Errorf("index turnover column missing")
	}
	source := "指数日线"

	if snap.Mode != PostMarket && !snap.StockSpot.Empty() {
		if col := snap.StockSpot.ColumnIndex("成交额"); col != dataset.ColNotFound {
			if spot := sumColumn(snap.StockSpot, col) / 1e8; spot > 0 {
				totalTurnover = spot
				source = "实时汇总"
			}
		}
	}
	if snap.Mode != PostMarket && source == "指数日线" && !snap.IndexSpot.Empty() {
		amountCol, amountOK := dataset.PickColumn(snap.IndexSpot, "成交额", "成交金额", "成交额(元)")
		if amountOK {
			if idxTurnover := sumColumn(snap.IndexSpot, amountCol) / 1e8; idxTurnover > 0 {
				totalTurnover = idxTurnover
				source = "指数实时汇总"
			}
			if nameCol, ok := dataset.PickColumn(snap.IndexSpot, "名称", "指数名称", "index_name"); ok {
				sh := sumByName(snap.IndexSpot, nameCol, amountCol, []string{"上证", "上证综合", "上证指数", "沪指"})
				sz := sumByName(snap.IndexSpot, nameCol, amountCol, []string{"深证", "深成指", "深证成指", "深指"})
				if !math.IsNaN(sh) && !math.IsNaN(sz) {
					result.Breakdown = &IndexTurnoverBreakdown{SH: sh, SZ: sz}
				}
			}
		}
	}

	yesterdayTurnover := (lastFloat(snap.IndexSH, "成交额", 1) + lastFloat(snap.IndexSZ, "成交额", 1)) / 1e8

	analysisTurnover := totalTurnover
	descPrefix := ""
	if snap.Mode != PostMarket {
		if elapsed := ElapsedTradingMinutes(snap.Now, snap.TradingDay); elapsed > 0 {
			result.EstimatedTurnover = totalTurnover * (240 / elapsed)
			analysisTurnover = result.EstimatedTurnover
			descPrefix = "预估"
		}
	}

	mainNet := lastFloat(snap.MarketFundFlow, "主力净流入-净额", 0) / 1e8
	retailNet := lastFloat(snap.MarketFundFlow, "小单净流入-净额", 0) / 1e8

	avg5d := (meanTail(snap.IndexSH, "成交额", 5, 1) + meanTail(snap.IndexSZ, "成交额", 5, 1)) / 1e8
	volumeLevel := "低于5日均量"
	if analysisTurnover > avg5d {
		volumeLevel = "高于5日均量"
	}

	volumeChange := analysisTurnover - yesterdayTurnover
	changeDesc := fmt.Sprintf("%s放量 %.2f亿", descPrefix, volumeChange)
	if volumeChange < 0 {
		changeDesc = fmt.Sprintf("%s缩量 %.2f亿", descPrefix, math.Abs(volumeChange))
	}

	var qualitative string
	switch {
	case analysisTurnover < cfg.ReferenceTurnover*cfg.VolumeLowRatio:
		qualitative = "地量水平"
	case analysisTurnover <= cfg.ReferenceTurnover*cfg.VolumeNormalRatio:
		qualitative = "平量水平"
	case analysisTurnover <= cfg.ReferenceTurnover*cfg.VolumeHighRatio:
		qualitative = "天量水平"
	default:
		qualitative = "巨量水平"
	}

	inflowPct := 0.0
	if analysisTurnover > 0 && !math.IsNaN(mainNet) {
		inflowPct = mainNet / analysisTurnover * 100
	}

	result.TotalTurnover = totalTurnover
	result.AnalysisTurnover = analysisTurnover
	result.Source = source
	result.VolumeLevel = volumeLevel
	result.VolumeChangeDesc = changeDesc
	result.QualitativeLevel = qualitative
	result.MainNetInflow = mainNet
	result.RetailNetInflow = retailNet
	result.InflowPercentage = inflowPct
	return result, nil
}

// sumByName 名称列包含任一关键词的行的金额求和（亿元），无匹配返回 NaN
func sumByName(t *dataset.Table, nameCol, amountCol int, keys []string) float64 {
	var sum float64
	matched := false
	for i := 0; i < t.Len(); i++ {
		name := t.Cell(i, nameCol)
		for _, key := range keys {
			if strings.Contains(name, key) {
				if v := t.Float(i, amountCol); !math.IsNaN(v) {
					sum += v
				}
				matched = true
				break
			}
		}
	}
	if !matched {
		return math.NaN()
	}
	return sum / 1e8
}
