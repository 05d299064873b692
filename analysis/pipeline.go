package analysis

import (
	"math"

	"go.uber.org/zap"

	"stockradar/config"
)

// Pipeline 按固定顺序驱动各分析器。
// 单个分析器失败或 panic 只影响自己的结果键：
// 对应字段保持空记录，其余分析器照常执行。
type Pipeline struct {
	cfg config.Analysis
	log *zap.Logger
}

// NewPipeline 创建分析流水线
func NewPipeline(cfg config.Analysis, log *zap.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, log: log}
}

// emptyState 全部字段填零值记录的初始状态
func emptyState() *State {
	return &State{
		Liquidity: &LiquidityResult{MainNetInflow: math.NaN(), RetailNetInflow: math.NaN()},
		Turnover:  &TurnoverResult{WeightedRate: math.NaN()},
		Margin:    &MarginResult{LeverageRatio: math.NaN()},
		Northbound: &NorthboundResult{
			TotalNetInflow: math.NaN(), FiveDayAvg: math.NaN(),
			SHNetInflow: math.NaN(), SZNetInflow: math.NaN(),
		},
		Intermarket: &IntermarketResult{PctChg: math.NaN()},
		Style:       &StyleResult{},
		LimitUp:     &LimitUpResult{BreakRate: math.NaN()},
		Sentiment:   &SentimentResult{BreakRate: math.NaN(), Congestion: math.NaN(), ProfitEffect: math.NaN()},
		Stage:       &StageResult{},
	}
}

// Run 执行一轮完整分析。顺序有依赖：情绪消费涨跌停结构，
// 阶段定性消费流动性与股债关系，生产者必须先行。
func (p *Pipeline) Run(snap *Snapshot) *State {
	st := emptyState()

	p.step("liquidity", func() error {
		res, err := analyzeLiquidity(p.cfg, snap)
		if err == nil {
			st.Liquidity = res
		}
		return err
	})
	p.step("turnover", func() error {
		res, err := analyzeTurnover(snap)
		if err == nil {
			st.Turnover = res
		}
		return err
	})
	p.step("margin", func() error {
		res, err := analyzeMargin(p.cfg, snap)
		if err == nil {
			st.Margin = res
		}
		return err
	})
	p.step("northbound", func() error {
		res, err := analyzeNorthbound(snap)
		if err == nil {
			st.Northbound = res
		}
		return err
	})
	p.step("intermarket", func() error {
		res, err := analyzeIntermarket(snap)
		if err == nil {
			st.Intermarket = res
		}
		return err
	})
	p.step("style", func() error {
		res, err := analyzeStyle(snap)
		if err == nil {
			st.Style = res
		}
		return err
	})
	p.step("limitup", func() error {
		res, err := analyzeLimitUp(snap)
		if err == nil {
			st.LimitUp = res
		}
		return err
	})
	p.step("sentiment", func() error {
		res, err := analyzeSentiment(p.cfg, snap, st.LimitUp)
		if err == nil {
			st.Sentiment = res
		}
		return err
	})
	p.step("sector_heat", func() error {
		res, err := analyzeSectorHeat(snap)
		if err == nil {
			st.SectorHeat = res
		}
		return err
	})
	p.step("stage", func() error {
		res, err := analyzeStage(st.Liquidity, st.Intermarket)
		if err == nil {
			st.Stage = res
		}
		return err
	})

	return st
}

func (p *Pipeline) step(name string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("analyzer panicked",
				zap.String("analyzer", name), zap.Any("panic", r))
		}
	}()
	if err := fn(); err != nil {
		p.log.Warn("analyzer failed, writing empty result",
			zap.String("analyzer", name), zap.Error(err))
	}
}
