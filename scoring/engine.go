// Package scoring 对活跃ETF做技术面扫描与综合评分
package scoring

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"stockradar/analysis"
	"stockradar/dataset"
)

// TechResult 单只标的的技术面状态
type TechResult struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Status    string  `json:"status"`
	BaseScore float64 `json:"base_score"`
	ChangePct float64 `json:"change_pct"`
}

// ScoreRecord 综合评分结果
type ScoreRecord struct {
	Code           string
	Name           string
	Status         string
	BaseScore      float64
	HeatAdjustment float64
	FinalScore     float64
	ChangePct      float64
	Reasons        []string
	Theme          string
}

// HistoryFunc 按代码取日线历史
type HistoryFunc func(ctx context.Context, code string) (*dataset.Table, error)

// 境外资产类ETF不参与本市场评分
var foreignKeywords = []string{
	"纳斯达克", "纳指", "标普", "日经", "德国", "法国", "印度",
	"沙特", "美国", "海外", "全球", "原油", "黄金",
}

// Engine 技术面扫描与评分引擎。
// 扫描用固定大小的协程池并发取数，每只标的成功后立即写断点，
// 中断重跑只处理未完成的标的。
type Engine struct {
	history     HistoryFunc
	checkpoint  *Checkpoint
	log         *zap.Logger
	workers     int
	minTurnover float64
}

// NewEngine 创建评分引擎
func NewEngine(history HistoryFunc, checkpoint *Checkpoint, workers int, minTurnover float64, log *zap.Logger) *Engine {
	if workers <= 0 {
		workers = 5
	}
	return &Engine{
		history:     history,
		checkpoint:  checkpoint,
		log:         log,
		workers:     workers,
		minTurnover: minTurnover,
	}
}

// Universe 从场内基金实时行情筛选参与扫描的标的：
// 剔除境外资产类，保留成交额达标的。
func (e *Engine) Universe(spot *dataset.Table) []TechResult {
	if spot.Empty() {
		return nil
	}
	codeCol := spot.ColumnIndex("代码")
	nameCol := spot.ColumnIndex("名称")
	amountCol := spot.ColumnIndex("成交额")
	if codeCol == dataset.ColNotFound || nameCol == dataset.ColNotFound {
		return nil
	}

	var out []TechResult
	for i := 0; i < spot.Len(); i++ {
		name := spot.Cell(i, nameCol)
		if isForeign(name) {
			continue
		}
		if amountCol != dataset.ColNotFound {
			amount := spot.Float(i, amountCol)
			if math.IsNaN(amount) || amount <= e.minTurnover {
				continue
			}
		}
		out = append(out, TechResult{Code: spot.Cell(i, codeCol), Name: name})
	}
	return out
}

func isForeign(name string) bool {
	for _, kw := range foreignKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// Scan 对标的池做技术面扫描，date 格式 YYYY-MM-DD。
// 已有断点的标的直接复用结果，新标的并发取历史后判状态。
func (e *Engine) Scan(ctx context.Context, date string, universe []TechResult) []TechResult {
	done := map[string]TechResult{}
	if e.checkpoint != nil {
		loaded, err := e.checkpoint.Load(date)
		if err != nil {
			e.log.Warn("load scan checkpoint failed", zap.Error(err))
		} else {
			done = loaded
		}
	}

	var pending []TechResult
	results := make([]TechResult, 0, len(universe))
	for _, item := range universe {
		if prev, ok := done[item.Code]; ok {
			results = append(results, prev)
			continue
		}
		pending = append(pending, item)
	}
	if len(done) > 0 {
		e.log.Info("resuming technical scan",
			zap.Int("completed", len(results)), zap.Int("pending", len(pending)))
	}
	if len(pending) == 0 {
		return results
	}

	jobs := make(chan TechResult)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				res, err := e.analyzeOne(ctx, item)
				if err != nil {
					e.log.Debug("technical scan failed for instrument",
						zap.String("code", item.Code), zap.Error(err))
					continue
				}
				if e.checkpoint != nil {
					if err := e.checkpoint.Save(date, *res); err != nil {
						e.log.Warn("save scan checkpoint failed",
							zap.String("code", item.Code), zap.Error(err))
					}
				}
				mu.Lock()
				results = append(results, *res)
				mu.Unlock()
			}
		}()
	}

	for _, item := range pending {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return results
		case jobs <- item:
		}
	}
	close(jobs)
	wg.Wait()

	e.log.Info("technical scan done", zap.Int("instruments", len(results)))
	return results
}

// analyzeOne 最近30根日线上的 MA5/MA20 状态判定
func (e *Engine) analyzeOne(ctx context.Context, item TechResult) (*TechResult, error) {
	hist, err := e.history(ctx, item.Code)
	if err != nil {
		return nil, err
	}
	closeCol, ok := dataset.PickColumn(hist, "收盘", "close")
	if !ok || hist.Len() < 21 {
		return nil, fmt.Errorf("history too short for %s", item.Code)
	}
	pctCol, _ := dataset.PickColumn(hist, "涨跌幅", "pct_chg")

	n := hist.Len()
	latestClose := hist.Float(n-1, closeCol)
	ma5 := meanClose(hist, closeCol, 5)
	ma20 := meanClose(hist, closeCol, 20)
	changePct := hist.Float(n-1, pctCol)
	if math.IsNaN(latestClose) || math.IsNaN(ma5) || math.IsNaN(ma20) {
		return nil, fmt.Errorf("unparsable close history for %s", item.Code)
	}

	status, base := "观察", 2.0
	switch {
	case latestClose > ma20 && ma5 > ma20:
		if changePct < 0 {
			status, base = "上涨趋势中的回调", 3.0
		} else {
			status, base = "强势加速上涨", 2.5
		}
	case latestClose < ma20:
		status, base = "弱势下跌通道", 1.0
	}

	item.Status = status
	item.BaseScore = base
	item.ChangePct = changePct
	return &item, nil
}

func meanClose(t *dataset.Table, col, window int) float64 {
	if t.Len() < window {
		return math.NaN()
	}
	var sum float64
	for i := t.Len() - window; i < t.Len(); i++ {
		v := t.Float(i, col)
		if math.IsNaN(v) {
			return math.NaN()
		}
		sum += v
	}
	return sum / float64(window)
}

// Score 技术面状态叠加板块热力，输出最终得分与评分依据
func (e *Engine) Score(tech []TechResult, heat []analysis.SectorRecord) []ScoreRecord {
	themeHeat := make(map[string]float64, len(heat))
	for _, r := range heat {
		themeHeat[r.Name] = r.Heat
	}

	out := make([]ScoreRecord, 0, len(tech))
	for _, t := range tech {
		reasons := []string{
			fmt.Sprintf("技术面: %s (基础分: %.1f)", t.Status, t.BaseScore),
		}
		sector, theme := ClassifyTheme(t.Name)
		heatValue, ok := themeHeat[sector]
		if !ok {
			heatValue = 50
		}
		adjustment := (heatValue - 50) / 15
		reasons = append(reasons,
			fmt.Sprintf("板块热力: %.1f (热力值: %v)", adjustment, heatValue))

		final := t.BaseScore + adjustment
		if final < 0 {
			final = 0
		}
		if final > 5 {
			final = 5
		}
		if final >= 3.5 && t.ChangePct < 0 {
			reasons = append(reasons, "回调但趋势未破，或为低吸机会")
		}

		out = append(out, ScoreRecord{
			Code:           t.Code,
			Name:           t.Name,
			Status:         t.Status,
			BaseScore:      t.BaseScore,
			HeatAdjustment: adjustment,
			FinalScore:     final,
			ChangePct:      t.ChangePct,
			Reasons:        reasons,
			Theme:          theme,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].FinalScore > out[j].FinalScore })
	return out
}
