// Package engine 串联取数、分析、评分、叙事与报告落盘的一轮完整流程
package engine

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"stockradar/analysis"
	"stockradar/cache"
	"stockradar/config"
	"stockradar/dataset"
	"stockradar/feed"
	"stockradar/industry"
	"stockradar/llm"
	"stockradar/report"
	"stockradar/scoring"
)

const feedTimeout = 20 * time.Second

// Engine 报告生成引擎。阈值类参数每轮从配置管理器取最新快照，
// 配置热更新无需重建引擎。
type Engine struct {
	cfg *config.Manager
	log *zap.Logger

	cache    *cache.Manager
	em       *feed.EastmoneyClient
	sina     *feed.SinaClient
	legu     *feed.LeguClient
	ths      *feed.ThsClient
	szse     *feed.SzseClient
	resolver *feed.Resolver
	industry *industry.Builder

	checkpoint *scoring.Checkpoint
	store      *report.Store

	mu        sync.Mutex
	broadcast func(*report.Report)
}

// New 创建引擎，按配置准备缓存目录、报告存储与扫描断点库
func New(cfg *config.Manager, log *zap.Logger) (*Engine, error) {
	current := cfg.Current()

	cacheMgr, err := cache.NewManager(current.Dirs.Cache, log)
	if err != nil {
		return nil, err
	}
	store, err := report.NewStore(current.Dirs.Data, current.Dirs.Reports)
	if err != nil {
		return nil, err
	}
	checkpoint, err := scoring.OpenCheckpoint(filepath.Join(current.Dirs.Data, "scan_progress.db"))
	if err != nil {
		return nil, err
	}

	em := feed.NewEastmoneyClient(feedTimeout)
	return &Engine{
		cfg:        cfg,
		log:        log,
		cache:      cacheMgr,
		em:         em,
		sina:       feed.NewSinaClient(feedTimeout),
		legu:       feed.NewLeguClient(feedTimeout),
		ths:        feed.NewThsClient(feedTimeout),
		szse:       feed.NewSzseClient(feedTimeout),
		resolver:   feed.NewResolver(log),
		industry:   industry.NewBuilder(em, cacheMgr, log),
		checkpoint: checkpoint,
		store:      store,
	}, nil
}

// SetBroadcast 注册报告推送回调（WebSocket 等）
func (e *Engine) SetBroadcast(fn func(*report.Report)) {
	e.broadcast = fn
}

// Close 释放引擎持有的资源
func (e *Engine) Close() error {
	return e.checkpoint.Close()
}

// GenerateReport 执行一轮完整的报告生成。
// 同一时刻只允许一轮在跑；数据源故障逐项降级，只有落盘失败才报错。
func (e *Engine) GenerateReport(ctx context.Context, now time.Time) (*report.Report, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg := e.cfg.Current()
	date := now.Format("2006-01-02")

	calendar := e.tradeCalendar(ctx, now)
	tradingDay := analysis.IsTradingDay(calendar, now)
	mode := analysis.ClassifyRunMode(now, tradingDay)
	e.log.Info("report run started",
		zap.String("date", date), zap.String("mode", string(mode)),
		zap.Bool("trading_day", tradingDay))

	e.cache.Sweep()

	snap := e.buildSnapshot(ctx, now, mode, tradingDay)
	state := analysis.NewPipeline(cfg.Analysis, e.log).Run(snap)

	scores := e.runScoring(ctx, cfg, date, state)

	narrativeClient := llm.NewClient(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Endpoint,
		time.Duration(cfg.LLM.Timeout)*time.Second)
	narrative, narrativeErr := narrativeClient.Generate(ctx,
		report.SystemPrompt, report.UserPrompt(state, scores, mode))
	switch {
	case narrativeErr == nil:
	case errors.Is(narrativeErr, llm.ErrNotConfigured):
		e.log.Info("llm not configured, using fallback narrative")
	default:
		e.log.Warn("llm narrative failed, using fallback", zap.Error(narrativeErr))
	}

	rep := report.Build(state, scores, narrative, narrativeErr, now)
	if err := e.store.Write(date, rep); err != nil {
		return nil, err
	}
	if path, err := e.store.WriteText(now,
		report.RenderText(state, scores, narrative, mode, now)); err != nil {
		e.log.Warn("write text report failed", zap.Error(err))
	} else {
		e.log.Info("text report saved", zap.String("path", path))
	}

	if e.broadcast != nil {
		e.broadcast(rep)
	}
	e.log.Info("report run finished", zap.String("date", date))
	return rep, nil
}

// runScoring ETF 技术面扫描加板块热力修正
func (e *Engine) runScoring(ctx context.Context, cfg *config.Config, date string, state *analysis.State) []scoring.ScoreRecord {
	fundSpot := e.cache.Fetch(ctx, "fund_etf_spot", nil, cache.Hourly, e.em.FundSpot)

	scorer := scoring.NewEngine(
		func(ctx context.Context, code string) (*dataset.Table, error) {
			return e.em.FundHistory(ctx, code, 60)
		},
		e.checkpoint, cfg.Analysis.Workers, cfg.Analysis.MinETFTurnover, e.log)

	universe := scorer.Universe(fundSpot)
	tech := scorer.Scan(ctx, date, universe)
	return scorer.Score(tech, state.SectorHeat)
}

// ReadReport 读取指定日期的已生成报告
func (e *Engine) ReadReport(date string) (*report.Report, error) {
	return e.store.Read(date)
}

// ListReports 已生成报告的日期列表
func (e *Engine) ListReports() ([]string, error) {
	return e.store.List()
}
