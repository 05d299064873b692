package report

import (
	"fmt"
	"math"
	"strings"

	"stockradar/analysis"
	"stockradar/scoring"
)

// 各运行模式对应的报告类型与推演标题
var reportTypeByMode = map[analysis.RunMode]string{
	analysis.LiveMorning:   "盘中实时分析 (早盘)",
	analysis.MiddaySummary: "午间总结",
	analysis.LiveAfternoon: "盘中实时分析 (午盘)",
	analysis.PostMarket:    "盘后复盘",
}

var forecastTitleByMode = map[analysis.RunMode]string{
	analysis.LiveMorning:   "上午收盘推演",
	analysis.MiddaySummary: "下午走势推演",
	analysis.LiveAfternoon: "收盘走势推演",
	analysis.PostMarket:    "明日走势推演",
}

var reportTitleByMode = map[analysis.RunMode]string{
	analysis.LiveMorning:   "A股市场多维度实时分析报告 (早盘)",
	analysis.MiddaySummary: "A股市场午间总结报告",
	analysis.LiveAfternoon: "A股市场多维度实时分析报告 (午盘)",
	analysis.PostMarket:    "A股市场多维度综合复盘报告",
}

// SystemPrompt 叙事生成的系统提示词
const SystemPrompt = `
角色：你是一位顶级的A股市场分析师，风格冷静、客观、一针见血。
任务：根据我提供的结构化数据，生成一份专业的JSON格式分析报告。
严格要求：
1. 返回内容必须是严格的JSON，且必须包含以下三个顶级键: "核心矛盾解读", "操作建议", "情景推演"。
2. "核心矛盾解读"深入分析数据间的背离和矛盾点；"操作建议"必须清晰、可执行、结构化；
   "情景推演"按【报告类型】和【推演标题】生成，包含"基准情景"、"乐观情景"、"悲观情景"三项，
   每项以概率开头（如"60%概率……"）。
3. 语言风格保持冷静、客观、数据驱动。
`

// fmtYi 亿元金额，NaN 显示未知
func fmtYi(v float64) string {
	if math.IsNaN(v) {
		return "未知"
	}
	return fmt.Sprintf("%.2f亿元", v)
}

func fmtPct(v float64) string {
	if math.IsNaN(v) {
		return "未知"
	}
	return fmt.Sprintf("%.2f%%", v)
}

func orUnknown(s string) string {
	if s == "" {
		return "未知"
	}
	return s
}

func joinOrUnknown(items []string) string {
	if len(items) == 0 {
		return "未知"
	}
	return strings.Join(items, ", ")
}

// UserPrompt 把分析状态序列化为叙事生成的用户提示词
func UserPrompt(st *analysis.State, scores []scoring.ScoreRecord, mode analysis.RunMode) string {
	reportType := reportTypeByMode[mode]
	forecastTitle := forecastTitleByMode[mode]

	liq := st.Liquidity
	inflowDesc := fmt.Sprintf("净流入占比 %.2f%%", liq.InflowPercentage)
	if liq.InflowPercentage <= 0 {
		inflowDesc = fmt.Sprintf("净流出占比 %.2f%%", math.Abs(liq.InflowPercentage))
	}

	estimated := ""
	if liq.EstimatedTurnover > 0 {
		estimated = fmt.Sprintf(" (预估全天: %.2f亿元)", liq.EstimatedTurnover)
	}
	breakdownSH, breakdownSZ := "未知", "未知"
	if liq.Breakdown != nil {
		breakdownSH = fmt.Sprintf("%.2f亿元", liq.Breakdown.SH)
		breakdownSZ = fmt.Sprintf("%.2f亿元", liq.Breakdown.SZ)
	}

	var topSectors, bottomSectors []string
	for i, r := range st.SectorHeat {
		if i < 5 {
			topSectors = append(topSectors, r.Name)
		}
		if i >= len(st.SectorHeat)-5 {
			bottomSectors = append(bottomSectors, r.Name)
		}
	}

	var opportunities []string
	for _, s := range scores {
		if s.FinalScore >= 3.5 && len(opportunities) < 3 {
			opportunities = append(opportunities,
				fmt.Sprintf("%s(%s, 现价涨跌幅: %.2f%%)", s.Theme, s.Code, s.ChangePct))
		}
	}

	breakRate := "未知"
	if !math.IsNaN(st.Sentiment.BreakRate) {
		breakRate = fmt.Sprintf("%.2f%%", st.Sentiment.BreakRate)
	}
	streak := "未知"
	if st.Sentiment.HasStreak {
		streak = fmt.Sprintf("%d", st.Sentiment.StreakHigh)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "请根据以下今日A股数据，生成一份【%s】报告，推演标题请使用【%s】:\n", reportType, forecastTitle)
	fmt.Fprintf(&b, "【市场阶段定性】\n- 宏观判断: %s\n- 主要风险: %s\n",
		orUnknown(st.Stage.Description), orUnknown(st.Stage.RiskType))
	fmt.Fprintf(&b, "【宏观与流动性分析】\n")
	fmt.Fprintf(&b, "- 上证指数: %.2f点 (%.2f%%), 处于60日%s\n",
		st.Intermarket.Close, zeroIfNaN(st.Intermarket.PctChg), orUnknown(st.Intermarket.PositionDesc))
	fmt.Fprintf(&b, "- 大盘趋势: %s\n- 股债关系: %s\n",
		orUnknown(st.Intermarket.Trend), orUnknown(st.Intermarket.Relation))
	fmt.Fprintf(&b, "- A股总成交额: %.2f亿元%s (%s, %s) | 来源: %s\n",
		liq.TotalTurnover, estimated, liq.VolumeChangeDesc, liq.QualitativeLevel, orUnknown(liq.Source))
	fmt.Fprintf(&b, "- 指数成交额拆分: 上证 %s | 深证 %s\n", breakdownSH, breakdownSZ)
	fmt.Fprintf(&b, "- 市场换手率: %s (%s)\n", fmtPct(st.Turnover.WeightedRate), orUnknown(st.Turnover.Level))
	fmt.Fprintf(&b, "- 主力与散户行为: 主力净流入 %s (%s) | 散户净流入 %s\n",
		fmtYi(liq.MainNetInflow), inflowDesc, fmtYi(liq.RetailNetInflow))
	fmt.Fprintf(&b, "- 杠杆资金动态: 两市融资余额 %s，较前一日%s。市场杠杆率 %s (当前处于 %s 水平)\n",
		fmtYi(st.Margin.TotalBalance), orUnknown(st.Margin.ChangeDesc),
		fmtPct(st.Margin.LeverageRatio), orUnknown(st.Margin.Level))
	fmt.Fprintf(&b, "【北向资金】\n- 北向净流入: %s，5日均值: %s，趋势: %s\n",
		fmtYi(st.Northbound.TotalNetInflow), fmtYi(st.Northbound.FiveDayAvg), orUnknown(st.Northbound.TrendDesc))
	fmt.Fprintf(&b, "- 沪股通: %s | 深股通: %s\n",
		fmtYi(st.Northbound.SHNetInflow), fmtYi(st.Northbound.SZNetInflow))
	fmt.Fprintf(&b, "- 集中行业: %s\n- 代表个股: %s\n",
		joinOrUnknown(st.Northbound.TopIndustries), joinOrUnknown(st.Northbound.TopStocks))
	fmt.Fprintf(&b, "【风格与分市场】\n- 强弱总结: %s\n- 日内强度排序: %s\n",
		orUnknown(st.Style.Summary), joinOrUnknown(st.Style.Rank))
	fmt.Fprintf(&b, "【情绪分析】\n- 综合情绪: %s\n- 赚钱效应: %s\n- 量价齐升家数: %d\n",
		orUnknown(st.Sentiment.Label), fmtPct(st.Sentiment.ProfitEffect), st.Sentiment.VolumePriceRiseCount)
	fmt.Fprintf(&b, "- 涨停/跌停: %d/%d\n- 炸板率: %s | 连板高度: %s\n- 大盘拥挤度: %s\n",
		st.Sentiment.LimitUp, st.Sentiment.LimitDown, breakRate, streak, fmtPct(st.Sentiment.Congestion))
	fmt.Fprintf(&b, "【板块热力】\n- 当前最强板块: %s\n- 当前最弱板块: %s\n- 潜在机会ETF(含实时价格): %s\n",
		joinOrUnknown(topSectors), joinOrUnknown(bottomSectors), joinOrUnknown(opportunities))
	return b.String()
}

func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
