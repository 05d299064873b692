package report

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"stockradar/analysis"
	"stockradar/scoring"
)

func fixtureState() *analysis.State {
	return &analysis.State{
		Liquidity: &analysis.LiquidityResult{
			TotalTurnover:   11800,
			MainNetInflow:   -633.24,
			RetailNetInflow: 576.26,
		},
		Turnover:    &analysis.TurnoverResult{WeightedRate: 1.85, Level: "中等(温和)"},
		Margin:      &analysis.MarginResult{TotalBalance: 15150, LeverageRatio: 2.53, Level: "风险区"},
		Northbound:  &analysis.NorthboundResult{TotalNetInflow: 36, FiveDayAvg: 20, TrendDesc: "连续净流入2日"},
		Intermarket: &analysis.IntermarketResult{Close: 3100.5, PctChg: -0.5, PositionDesc: "震荡中枢", Trend: "跌破5日线"},
		Style:       &analysis.StyleResult{Summary: "小盘强于大盘"},
		LimitUp:     &analysis.LimitUpResult{LimitUp: 46, LimitDown: 25, Broken: 30, BreakRate: 39.47},
		Sentiment:   &analysis.SentimentResult{Label: "中性偏冷", ProfitEffect: 42, BreakRate: 39.47, Congestion: 93},
		SectorHeat: []analysis.SectorRecord{
			{Name: "半导体", Heat: 100},
			{Name: "煤炭行业", Heat: 77.5},
			{Name: "银行", Heat: 41.25},
			{Name: "证券", Heat: 33.75},
		},
		Stage: &analysis.StageResult{Description: "震荡整固", RiskType: "技术性波动风险"},
	}
}

func TestBuildReportShape(t *testing.T) {
	r := Build(fixtureState(), nil, "", errors.New("llm not configured"), time.Date(2024, 5, 6, 16, 10, 0, 0, time.Local))

	if r.Index != 3100.5 || r.Change != -0.5 {
		t.Fatalf("index/change = %v/%v", r.Index, r.Change)
	}
	if r.VolumeEstimate != "11800.00亿元" {
		t.Fatalf("volume estimate = %s", r.VolumeEstimate)
	}
	if r.MainFlow != -633.24 || r.RetailFlow != 576.26 {
		t.Fatalf("flows = %v/%v", r.MainFlow, r.RetailFlow)
	}
	if r.WinRate != 42 {
		t.Fatalf("win rate = %v", r.WinRate)
	}
	if len(r.Sectors.Strong) != 4 || r.Sectors.Strong[0].Name != "半导体" {
		t.Fatalf("strong sectors = %+v", r.Sectors.Strong)
	}
	if r.Sectors.Weak[0].Name != "证券" {
		t.Fatalf("weak sectors = %+v", r.Sectors.Weak)
	}

	// 叙事失败时落兜底情景与建议，结构完整
	if len(r.Scenarios) != 3 || len(r.AiAdvice) == 0 {
		t.Fatalf("fallback payload missing: %d scenarios, %d advice", len(r.Scenarios), len(r.AiAdvice))
	}

	// 契约字段必须可序列化（NaN 会让 Marshal 失败）
	if _, err := json.Marshal(r); err != nil {
		t.Fatalf("report must serialize: %v", err)
	}
}

func TestBuildSurvivesEmptyState(t *testing.T) {
	st := &analysis.State{
		Liquidity:   &analysis.LiquidityResult{MainNetInflow: math.NaN(), RetailNetInflow: math.NaN()},
		Turnover:    &analysis.TurnoverResult{WeightedRate: math.NaN()},
		Margin:      &analysis.MarginResult{LeverageRatio: math.NaN()},
		Northbound:  &analysis.NorthboundResult{TotalNetInflow: math.NaN()},
		Intermarket: &analysis.IntermarketResult{PctChg: math.NaN()},
		Style:       &analysis.StyleResult{},
		LimitUp:     &analysis.LimitUpResult{BreakRate: math.NaN()},
		Sentiment:   &analysis.SentimentResult{BreakRate: math.NaN(), Congestion: math.NaN(), ProfitEffect: math.NaN()},
		Stage:       &analysis.StageResult{},
	}

	r := Build(st, nil, "", nil, time.Now())
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("zero-data report must still serialize: %v", err)
	}
	if !strings.Contains(string(data), `"scenarios"`) {
		t.Fatal("schema fields missing from zero-data report")
	}
}

func TestExtractScenariosFromNarrative(t *testing.T) {
	narrative := "```json\n" + `{
  "核心矛盾解读": {"量价背离": "放量滞涨"},
  "操作建议": {
    "仓位管理": "降至60%以下",
    "关键观察点": ["关注量能", "关注融资余额"]
  },
  "情景推演": {
    "标题": "明日走势推演",
    "基准情景": "55%概率维持3050-3120点震荡",
    "乐观情景": "30%概率放量反包",
    "悲观情景": "15%概率跌破3050点"
  }
}` + "\n```"

	r := Build(fixtureState(), nil, narrative, nil, time.Now())
	if len(r.Scenarios) != 3 {
		t.Fatalf("expected 3 scenarios, got %d", len(r.Scenarios))
	}
	if r.Scenarios[0].Probability != 55 || r.Scenarios[0].Type != "base" {
		t.Fatalf("base scenario = %+v", r.Scenarios[0])
	}
	if r.Scenarios[2].Probability != 15 || r.Scenarios[2].Type != "pessimistic" {
		t.Fatalf("pessimistic scenario = %+v", r.Scenarios[2])
	}
	if !strings.Contains(r.Scenarios[1].Description, "放量反包") {
		t.Fatalf("optimistic description = %s", r.Scenarios[1].Description)
	}

	// 操作建议展平为建议列表
	joined := strings.Join(r.AiAdvice, "\n")
	if !strings.Contains(joined, "仓位管理") || !strings.Contains(joined, "关注量能") {
		t.Fatalf("advice = %v", r.AiAdvice)
	}
}

func TestExtractScenariosMalformedFallsBack(t *testing.T) {
	r := Build(fixtureState(), nil, "今天市场先抑后扬……", nil, time.Now())
	if len(r.Scenarios) != 3 || r.Scenarios[0].Probability != 60 {
		t.Fatalf("expected default scenarios, got %+v", r.Scenarios)
	}
}

func TestUserPromptCarriesCoreNumbers(t *testing.T) {
	scores := []scoring.ScoreRecord{
		{Code: "516920", Theme: "科技/半导体", FinalScore: 4.2, ChangePct: -1.2},
	}
	prompt := UserPrompt(fixtureState(), scores, analysis.PostMarket)

	for _, want := range []string{
		"盘后复盘", "明日走势推演", "3100.50点", "11800.00亿元",
		"中性偏冷", "42.00%", "科技/半导体(516920",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
