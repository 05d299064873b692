package analysis

import (
	"time"

	"stockradar/dataset"
)

// Snapshot 一轮分析所需的全部输入数据。
// 取数阶段填充完毕后只读，各分析器之间不存在共享可变状态。
type Snapshot struct {
	Now        time.Time
	Mode       RunMode
	TradingDay bool

	IndexSH *dataset.Table // 上证指数日线（增量历史）
	IndexSZ *dataset.Table // 深证成指日线
	// 风格指数日线：沪深300 / 中证1000 / 创业板指 / 科创50 / 北证50
	StyleIndexes map[string]*dataset.Table
	BondETF      *dataset.Table // 国债ETF日线，股债关系用

	MarketFundFlow *dataset.Table // 市场整体资金流历史
	SectorFundFlow *dataset.Table // 行业板块当日主力资金流
	NorthboundFlow *dataset.Table // 北向资金净流入历史
	NorthboundTop  *dataset.Table // 北向持仓/净买入明细

	MarketActivity  *dataset.Table // 赚钱效应 item/value
	Congestion      *dataset.Table // 大盘拥挤度历史
	VolumePriceRise *dataset.Table // 量价齐升榜单

	LimitUpPool   *dataset.Table
	LimitDownPool *dataset.Table
	BrokenPool    *dataset.Table
	StrongPool    *dataset.Table

	StockSpot *dataset.Table // A股全体实时行情
	IndexSpot *dataset.Table // 指数实时行情
	MarginSH  *dataset.Table // 沪市融资融券余额
	MarginSZ  *dataset.Table // 深市融资融券余额

	IndustryMap map[string]string // 代码→行业
}

// IndexTurnoverBreakdown 沪深指数成交额拆分（亿元）
type IndexTurnoverBreakdown struct {
	SH float64
	SZ float64
}

// LiquidityResult 流动性与主力行为
type LiquidityResult struct {
	TotalTurnover     float64 // 两市总成交额（亿元）
	EstimatedTurnover float64 // 盘中外推的全天估计，未外推时为 0
	AnalysisTurnover  float64 // 参与定性分档的成交额
	Source            string  // 成交额来源
	VolumeLevel       string  // 相对5日均量
	VolumeChangeDesc  string  // 较昨日放/缩量描述
	QualitativeLevel  string  // 地量/平量/天量/巨量
	MainNetInflow     float64 // 主力净流入（亿元）
	RetailNetInflow   float64 // 小单净流入（亿元）
	InflowPercentage  float64 // 主力净流入占比（%）
	Breakdown         *IndexTurnoverBreakdown
}

// TurnoverResult 市场换手率
type TurnoverResult struct {
	WeightedRate float64 // 流通市值加权换手率（%）
	Level        string
}

// MarginResult 两融杠杆
type MarginResult struct {
	TotalBalance  float64 // 两市融资余额（亿元）
	ChangeDesc    string  // 较前一日净买入/净偿还
	LeverageRatio float64 // 融资余额/流通市值（%）
	Level         string
}

// NorthboundResult 北向资金
type NorthboundResult struct {
	TotalNetInflow float64 // 最新净流入（亿元），NaN 表示未知
	FiveDayAvg     float64
	Streak         int // 连续同向天数，正为净流入
	TrendDesc      string
	SHNetInflow    float64
	SZNetInflow    float64
	TopIndustries  []string
	TopStocks      []string
}

// IntermarketResult 股债关系与大盘趋势
type IntermarketResult struct {
	Trend        string  // 站上/跌破5日线
	Relation     string  // 股债四象限
	Close        float64 // 上证收盘点位
	PctChg       float64
	PositionDesc string // 60日高位/低位/震荡中枢
}

// IndexPerf 单指数涨幅，NaN 表示数据不足
type IndexPerf struct {
	Day  float64
	Week float64
}

// StyleResult 分市场与风格强弱
type StyleResult struct {
	Perf    map[string]IndexPerf
	Summary string
	Rank    []string // 日内强度降序
}

// LimitUpResult 涨跌停结构
type LimitUpResult struct {
	LimitUp    int
	LimitDown  int
	Broken     int
	StreakHigh int
	HasStreak  bool
	BreakRate  float64 // 炸板率（%），NaN 表示分母为 0
}

// SentimentResult 市场情绪温度
type SentimentResult struct {
	Label                string // 贪婪/乐观/中性偏冷/恐慌
	Reasons              []string
	ProfitEffect         float64 // 赚钱效应（%）
	VolumePriceRiseCount int
	LimitUp              int
	LimitDown            int
	BreakRate            float64
	StreakHigh           int
	HasStreak            bool
	Congestion           float64 // 大盘拥挤度（%），NaN 表示未知
}

// SectorRecord 单个板块的热力记录
type SectorRecord struct {
	Name            string
	PctChg          float64
	FundInflow      float64 // 主力净流入（元）
	RiseCount       float64 // 量价齐升家数
	PopularityScore float64 // 人气强度分（0-100）
	FundScore       float64 // 资金强度分（0-100）
	Heat            float64 // 热力值（0-100，两位小数）
}

// StageResult 市场阶段定性
type StageResult struct {
	Description string
	RiskType    string
}

// State 一轮分析的结果集。流水线驱动器保证每个字段都被赋值：
// 分析器失败时写入零值记录，下游永远不用判空到字段级以下。
type State struct {
	Liquidity   *LiquidityResult
	Turnover    *TurnoverResult
	Margin      *MarginResult
	Northbound  *NorthboundResult
	Intermarket *IntermarketResult
	Style       *StyleResult
	LimitUp     *LimitUpResult
	Sentiment   *SentimentResult
	SectorHeat  []SectorRecord
	Stage       *StageResult
}
