package report

import (
	"fmt"
	"strings"
	"time"

	"stockradar/analysis"
	"stockradar/scoring"
)

// RenderText 控制台/文本版报告
func RenderText(st *analysis.State, scores []scoring.ScoreRecord, narrative string, mode analysis.RunMode, now time.Time) string {
	var b strings.Builder
	line := strings.Repeat("=", 80)

	title := reportTitleByMode[mode]
	if title == "" {
		title = "A股市场分析报告"
	}
	fmt.Fprintf(&b, "%s\n%s (%s)\n%s\n", line, title, now.Format("2006-01-02 15:04:05"), line)

	fmt.Fprintf(&b, "\n一、市场阶段定性\n")
	fmt.Fprintf(&b, "  - 宏观判断: %s\n", orUnknown(st.Stage.Description))
	fmt.Fprintf(&b, "  - 主要风险: %s\n", orUnknown(st.Stage.RiskType))

	fmt.Fprintf(&b, "\n二、宏观与流动性\n")
	fmt.Fprintf(&b, "  - 上证指数: %.2f (%.2f%%), 60日%s, %s\n",
		st.Intermarket.Close, zeroIfNaN(st.Intermarket.PctChg),
		orUnknown(st.Intermarket.PositionDesc), orUnknown(st.Intermarket.Trend))
	fmt.Fprintf(&b, "  - 总成交额: %s (%s, %s) | 来源: %s\n",
		fmtYi(st.Liquidity.TotalTurnover), st.Liquidity.VolumeChangeDesc,
		st.Liquidity.QualitativeLevel, orUnknown(st.Liquidity.Source))
	fmt.Fprintf(&b, "  - 主力净流入: %s | 散户净流入: %s\n",
		fmtYi(st.Liquidity.MainNetInflow), fmtYi(st.Liquidity.RetailNetInflow))
	fmt.Fprintf(&b, "  - 两融余额: %s (%s), 杠杆率 %s [%s]\n",
		fmtYi(st.Margin.TotalBalance), orUnknown(st.Margin.ChangeDesc),
		fmtPct(st.Margin.LeverageRatio), orUnknown(st.Margin.Level))

	fmt.Fprintf(&b, "\n三、情绪与结构\n")
	fmt.Fprintf(&b, "  - 综合情绪: %s (%s)\n",
		orUnknown(st.Sentiment.Label), strings.Join(st.Sentiment.Reasons, " | "))
	fmt.Fprintf(&b, "  - 涨停 %d / 跌停 %d / 炸板率 %s\n",
		st.Sentiment.LimitUp, st.Sentiment.LimitDown, fmtPct(st.Sentiment.BreakRate))
	fmt.Fprintf(&b, "  - 风格: %s\n", orUnknown(st.Style.Summary))

	if len(st.SectorHeat) > 0 {
		fmt.Fprintf(&b, "\n四、板块热力 TOP5\n")
		for i, r := range st.SectorHeat {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "  %d. %s 热力 %.2f\n", i+1, r.Name, r.Heat)
		}
	}

	writeScoreSection(&b, scores)

	if narrative != "" {
		fmt.Fprintf(&b, "\n六、AI复盘观点\n%s\n", narrative)
	}

	fmt.Fprintf(&b, "\n%s\n免责声明: 本报告基于公开数据和量化模型生成，所有结论仅供参考，不构成任何投资建议。\n%s\n", line, line)
	return b.String()
}

// writeScoreSection 机会与风险清单：每个主题只展示最高/最低一只
func writeScoreSection(b *strings.Builder, scores []scoring.ScoreRecord) {
	if len(scores) == 0 {
		return
	}
	fmt.Fprintf(b, "\n五、ETF综合评分\n")

	fmt.Fprintf(b, "  --- 【机会清单 (TOP 主题)】 ---\n")
	seen := map[string]bool{}
	count := 0
	for _, s := range scores {
		if s.FinalScore < 3.5 || seen[s.Theme] || count >= 5 {
			continue
		}
		seen[s.Theme] = true
		count++
		fmt.Fprintf(b, "  - 得分: %.1f | %s (%s) | 主题: %s | 实时涨跌: %.2f%%\n",
			s.FinalScore, s.Name, s.Code, s.Theme, zeroIfNaN(s.ChangePct))
		fmt.Fprintf(b, "    摘要: %s\n", strings.Join(s.Reasons, " | "))
	}
	if count == 0 {
		fmt.Fprintf(b, "    当前市场未发现得分高于3.5的显著机会。\n")
	}

	fmt.Fprintf(b, "  --- 【风险清单 (BOTTOM 主题)】 ---\n")
	seen = map[string]bool{}
	count = 0
	for i := len(scores) - 1; i >= 0; i-- {
		s := scores[i]
		if s.FinalScore > 1.5 || seen[s.Theme] || count >= 5 {
			continue
		}
		seen[s.Theme] = true
		count++
		fmt.Fprintf(b, "  - 得分: %.1f | %s (%s) | 主题: %s | 实时涨跌: %.2f%%\n",
			s.FinalScore, s.Name, s.Code, s.Theme, zeroIfNaN(s.ChangePct))
		fmt.Fprintf(b, "    摘要: %s\n", strings.Join(s.Reasons, " | "))
	}
	if count == 0 {
		fmt.Fprintf(b, "    当前市场未发现得分低于1.5的显著风险。\n")
	}
}
