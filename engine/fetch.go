package engine

import (
	"context"
	"time"

	"stockradar/analysis"
	"stockradar/cache"
	"stockradar/dataset"
	"stockradar/feed"
)

// 指数代码：东方财富 secid 规则见 feed 包
const (
	symbolSHIndex = "000001"
	symbolSZIndex = "399001"
	symbolCSI300  = "000300"
	symbolZZ1000  = "000852"
	symbolChiNxt  = "399006"
	symbolKC50    = "000688"
	symbolBJ50    = "899050"
	bondETFCode   = "511260" // 十年国债ETF，股债关系参照物
)

// styleSymbols 风格指数名称到代码
var styleSymbols = map[string]string{
	analysis.StyleCSI300: symbolCSI300,
	analysis.StyleZZ1000: symbolZZ1000,
	analysis.StyleChiNxt: symbolChiNxt,
	analysis.StyleKC50:   symbolKC50,
	analysis.StyleBJ50:   symbolBJ50,
}

// indexHistory 指数日线走增量基线缓存
func (e *Engine) indexHistory(ctx context.Context, name, symbol string) *dataset.Table {
	return e.cache.FetchIncremental(ctx, name, "日期",
		func(ctx context.Context, startDate string) (*dataset.Table, error) {
			return e.em.IndexHistory(ctx, symbol, startDate)
		})
}

// tradeCalendar 当月交易日历，失败返回空表（下游有周内日兜底）
func (e *Engine) tradeCalendar(ctx context.Context, now time.Time) *dataset.Table {
	return e.cache.Fetch(ctx, "trade_calendar", []string{now.Format("200601")}, cache.Daily,
		func(ctx context.Context) (*dataset.Table, error) {
			return e.szse.TradeCalendar(ctx, now)
		})
}

// buildSnapshot 为一轮分析取齐全部输入。
// 每个数据项独立降级：历史类走增量缓存，行情类走小时桶缓存，
// 有备选数据源的走 Resolver 逐个回退。
func (e *Engine) buildSnapshot(ctx context.Context, now time.Time, mode analysis.RunMode, tradingDay bool) *analysis.Snapshot {
	snap := &analysis.Snapshot{
		Now:          now,
		Mode:         mode,
		TradingDay:   tradingDay,
		StyleIndexes: make(map[string]*dataset.Table, len(styleSymbols)),
	}

	snap.IndexSH = e.indexHistory(ctx, "sh_index", symbolSHIndex)
	snap.IndexSZ = e.indexHistory(ctx, "sz_index", symbolSZIndex)
	for name, symbol := range styleSymbols {
		snap.StyleIndexes[name] = e.indexHistory(ctx, "style_"+symbol, symbol)
	}

	snap.BondETF = e.cache.Fetch(ctx, "bond_etf", []string{bondETFCode}, cache.Daily,
		func(ctx context.Context) (*dataset.Table, error) {
			return e.em.FundHistory(ctx, bondETFCode, 90)
		})

	snap.MarketFundFlow = e.cache.Fetch(ctx, "market_fund_flow", nil, cache.Hourly, e.em.MarketFundFlow)
	snap.SectorFundFlow = e.cache.Fetch(ctx, "sector_fund_flow", nil, cache.Hourly, e.em.SectorFundFlow)

	snap.NorthboundFlow = e.cache.Fetch(ctx, "northbound_flow", nil, cache.Hourly,
		func(ctx context.Context) (*dataset.Table, error) {
			return e.resolver.Resolve(ctx, []feed.Candidate{
				{Name: "em_northbound_kline", Fetch: e.em.NorthboundFlow},
			}), nil
		})
	snap.NorthboundTop = e.cache.Fetch(ctx, "northbound_top", nil, cache.Daily, e.em.NorthboundHoldings)

	snap.MarketActivity = e.cache.Fetch(ctx, "market_activity", nil, cache.Hourly, e.legu.MarketActivity)
	snap.Congestion = e.cache.Fetch(ctx, "congestion", nil, cache.Daily, e.legu.Congestion)
	snap.VolumePriceRise = e.cache.Fetch(ctx, "rank_ljqs", nil, cache.Hourly, e.ths.VolumePriceRise)

	poolDay := lastTradeDay(now, tradingDay)
	snap.LimitUpPool = e.pool(ctx, "pool_zt", poolDay, e.em.LimitUpPool)
	snap.LimitDownPool = e.pool(ctx, "pool_dt", poolDay, e.em.LimitDownPool)
	snap.BrokenPool = e.pool(ctx, "pool_zb", poolDay, e.em.BrokenLimitPool)
	snap.StrongPool = e.pool(ctx, "pool_qs", poolDay, e.em.StrongPool)

	snap.StockSpot = e.cache.Fetch(ctx, "all_a_spot", nil, cache.Hourly, e.em.StockSpot)
	sinaSymbols := e.cfg.Current().Symbols
	snap.IndexSpot = e.cache.Fetch(ctx, "index_spot", nil, cache.Hourly,
		func(ctx context.Context) (*dataset.Table, error) {
			return e.resolver.Resolve(ctx, []feed.Candidate{
				{Name: "em_index_spot", Fetch: e.em.IndexSpot},
				{Name: "sina_index_spot", Fetch: func(ctx context.Context) (*dataset.Table, error) {
					return e.sina.IndexSpot(ctx, sinaSymbols)
				}},
			}), nil
		})

	snap.MarginSH = e.cache.Fetch(ctx, "margin_sh", nil, cache.Daily,
		func(ctx context.Context) (*dataset.Table, error) {
			return e.em.MarginBalance(ctx, "SH")
		})
	snap.MarginSZ = e.cache.Fetch(ctx, "margin_sz", nil, cache.Daily,
		func(ctx context.Context) (*dataset.Table, error) {
			return e.em.MarginBalance(ctx, "SZ")
		})

	snap.IndustryMap = e.industry.Map(ctx)
	return snap
}

func (e *Engine) pool(ctx context.Context, name string, day time.Time, fetch func(context.Context, time.Time) (*dataset.Table, error)) *dataset.Table {
	return e.cache.Fetch(ctx, name, []string{day.Format("20060102")}, cache.Hourly,
		func(ctx context.Context) (*dataset.Table, error) {
			return fetch(ctx, day)
		})
}

// lastTradeDay 涨跌停池要按交易日查询：非交易日回退到最近的周内日
func lastTradeDay(now time.Time, tradingDay bool) time.Time {
	if tradingDay {
		return now
	}
	day := now
	for i := 0; i < 7; i++ {
		day = day.AddDate(0, 0, -1)
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			return day
		}
	}
	return now
}
