package analysis

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"stockradar/config"
	"stockradar/dataset"
)

// klineFixture 构造 n 根日线，收盘价等差递增，末日涨跌幅为 lastPct
func klineFixture(n int, lastClose, lastAmount, lastPct float64) *dataset.Table {
	t := dataset.New("日期", "开盘", "收盘", "最高", "最低", "成交量", "成交额", "振幅", "涨跌幅")
	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local)
	for i := 0; i < n; i++ {
		closeVal := lastClose - float64(n-1-i)*2
		pct := "0.10"
		amount := lastAmount * 0.95
		if i == n-1 {
			pct = dataset.FormatFloat(lastPct)
			amount = lastAmount
		}
		t.AppendRow(
			base.AddDate(0, 0, i).Format("2006-01-02"),
			dataset.FormatFloat(closeVal-1),
			dataset.FormatFloat(closeVal),
			dataset.FormatFloat(closeVal+5),
			dataset.FormatFloat(closeVal-5),
			"100000",
			dataset.FormatFloat(amount),
			"1.2",
			pct,
		)
	}
	return t
}

func fullSnapshot() *Snapshot {
	snap := &Snapshot{
		Now:        time.Date(2024, 5, 6, 16, 0, 0, 0, time.Local),
		Mode:       PostMarket,
		TradingDay: true,
	}

	snap.IndexSH = klineFixture(70, 3100, 5500e8, -0.5)
	snap.IndexSZ = klineFixture(70, 9800, 6300e8, -0.8)
	snap.BondETF = klineFixture(30, 102, 5e8, 0.1)
	snap.StyleIndexes = map[string]*dataset.Table{
		StyleCSI300: klineFixture(10, 3600, 2000e8, -0.3),
		StyleZZ1000: klineFixture(10, 5200, 1500e8, 1.1),
		StyleChiNxt: klineFixture(10, 1900, 1200e8, 0.6),
		StyleKC50:   klineFixture(10, 800, 600e8, 2.2),
		StyleBJ50:   klineFixture(10, 1100, 300e8, -1.4),
	}

	mff := dataset.New("日期", "主力净流入-净额", "小单净流入-净额", "中单净流入-净额", "大单净流入-净额", "超大单净流入-净额")
	mff.AppendRow("2024-05-03", "-20000000000", "15000000000", "1", "1", "1")
	mff.AppendRow("2024-05-06", "-63300000000", "57600000000", "1", "1", "1")
	snap.MarketFundFlow = mff

	flow := dataset.New("名称", "涨跌幅", "今日主力净流入-净额")
	flow.AppendRow("半导体", "2.1", "1500000000")
	flow.AppendRow("证券", "-1.2", "-800000000")
	flow.AppendRow("银行", "0.3", "200000000")
	flow.AppendRow("煤炭行业", "1.5", "900000000")
	snap.SectorFundFlow = flow

	nb := dataset.New("日期", "北向资金", "沪股通", "深股通")
	nb.AppendRow("2024-04-30", "-1200000000", "-700000000", "-500000000")
	nb.AppendRow("2024-05-03", "2500000000", "1500000000", "1000000000")
	nb.AppendRow("2024-05-06", "3600000000", "2000000000", "1600000000")
	snap.NorthboundFlow = nb

	top := dataset.New("代码", "名称", "今日净买入")
	top.AppendRow("688001", "华兴源创", "500000000")
	top.AppendRow("601088", "中国神华", "300000000")
	snap.NorthboundTop = top

	activity := dataset.New("item", "value")
	activity.AppendRow("上涨", "2100")
	activity.AppendRow("下跌", "2900")
	activity.AppendRow("停牌", "12")
	snap.MarketActivity = activity

	cong := dataset.New("date", "congestion")
	cong.AppendRow("2024-05-03", "0.55")
	cong.AppendRow("2024-05-06", "0.93")
	snap.Congestion = cong

	zt := dataset.New("代码", "名称", "连板数")
	for i := 0; i < 45; i++ {
		zt.AppendRow(fmt.Sprintf("%06d", i), "x", "1")
	}
	zt.AppendRow("600001", "y", "6")
	snap.LimitUpPool = zt

	dt := dataset.New("代码", "名称", "连板数")
	for i := 0; i < 25; i++ {
		dt.AppendRow(fmt.Sprintf("%06d", i), "z", "1")
	}
	snap.LimitDownPool = dt

	zb := dataset.New("代码", "名称", "连板数")
	for i := 0; i < 30; i++ {
		zb.AppendRow(fmt.Sprintf("%06d", i), "w", "1")
	}
	snap.BrokenPool = zb
	snap.StrongPool = dataset.New("代码", "名称", "连板数")

	rise := dataset.New("股票代码", "股票简称")
	rise.AppendRow("688001", "华兴源创")
	rise.AppendRow("601088", "中国神华")
	snap.VolumePriceRise = rise

	spot := dataset.New("代码", "名称", "最新价", "涨跌幅", "成交额", "换手率", "总市值", "流通市值")
	spot.AppendRow("000001", "平安银行", "10.5", "-1.2", "800000000", "1.5", "2000000000000", "1500000000000")
	spot.AppendRow("688001", "华兴源创", "30.2", "2.5", "400000000", "3.0", "200000000000", "100000000000")
	snap.StockSpot = spot

	snap.IndexSpot = dataset.New("代码", "名称", "成交额")

	marginSH := dataset.New("日期", "融资余额", "融券余额")
	marginSH.AppendRow("2024-05-03", "800000000000", "1")
	marginSH.AppendRow("2024-05-06", "810000000000", "1")
	snap.MarginSH = marginSH
	marginSZ := dataset.New("日期", "融资余额", "融券余额")
	marginSZ.AppendRow("2024-05-03", "700000000000", "1")
	marginSZ.AppendRow("2024-05-06", "705000000000", "1")
	snap.MarginSZ = marginSZ

	snap.IndustryMap = map[string]string{
		"688001": "半导体",
		"601088": "煤炭行业",
	}
	return snap
}

func TestPipelinePopulatesAllKeys(t *testing.T) {
	p := NewPipeline(config.Default().Analysis, zap.NewNop())
	st := p.Run(fullSnapshot())

	if st.Liquidity == nil || st.Turnover == nil || st.Margin == nil ||
		st.Northbound == nil || st.Intermarket == nil || st.Style == nil ||
		st.LimitUp == nil || st.Sentiment == nil || st.Stage == nil {
		t.Fatal("every result key must be populated")
	}
	if len(st.SectorHeat) != 4 {
		t.Fatalf("expected 4 sector records, got %d", len(st.SectorHeat))
	}

	// 流动性：盘后模式不做外推，总成交额 = 两指数之和
	if got := st.Liquidity.TotalTurnover; math.Abs(got-11800) > 0.01 {
		t.Fatalf("total turnover = %v, want 11800", got)
	}
	if st.Liquidity.EstimatedTurnover != 0 {
		t.Fatal("post-market run must not extrapolate volume")
	}
	if st.Liquidity.QualitativeLevel != "平量水平" {
		t.Fatalf("qualitative level = %s", st.Liquidity.QualitativeLevel)
	}
	if math.Abs(st.Liquidity.MainNetInflow+633) > 0.01 {
		t.Fatalf("main net inflow = %v, want -633", st.Liquidity.MainNetInflow)
	}

	// 样本流通市值远小于融资余额，杠杆率必然落在风险区
	if st.Margin.Level != "风险区" {
		t.Fatalf("margin level = %s, want 风险区", st.Margin.Level)
	}

	// 北向：连续 2 日净流入
	if st.Northbound.Streak != 2 {
		t.Fatalf("northbound streak = %d, want 2", st.Northbound.Streak)
	}
	if math.Abs(st.Northbound.TotalNetInflow-36) > 0.01 {
		t.Fatalf("northbound latest = %v, want 36", st.Northbound.TotalNetInflow)
	}

	// 情绪：赚钱效应 42 ⇒ 中性偏冷；拥挤度 93% 触发预警
	if st.Sentiment.Label != "中性偏冷" {
		t.Fatalf("sentiment label = %s", st.Sentiment.Label)
	}
	if st.Sentiment.ProfitEffect != 42 {
		t.Fatalf("profit effect = %v, want 42", st.Sentiment.ProfitEffect)
	}
	foundCongestion := false
	for _, r := range st.Sentiment.Reasons {
		if strings.Contains(r, "拥挤度过高") {
			foundCongestion = true
		}
	}
	if !foundCongestion {
		t.Fatalf("expected congestion warning in reasons, got %v", st.Sentiment.Reasons)
	}

	// 涨跌停结构：46 涨停、30 炸板 ⇒ 炸板率 39.47
	if st.LimitUp.LimitUp != 46 || st.LimitUp.Broken != 30 {
		t.Fatalf("limit pool counts = %d/%d", st.LimitUp.LimitUp, st.LimitUp.Broken)
	}
	if math.Abs(st.LimitUp.BreakRate-39.47) > 0.01 {
		t.Fatalf("break rate = %v, want 39.47", st.LimitUp.BreakRate)
	}
	if !st.LimitUp.HasStreak || st.LimitUp.StreakHigh != 6 {
		t.Fatalf("streak high = %d, want 6", st.LimitUp.StreakHigh)
	}

	// 风格：科创50 当日最强
	if len(st.Style.Rank) == 0 || !strings.Contains(st.Style.Rank[0], "科创50") {
		t.Fatalf("style rank = %v", st.Style.Rank)
	}

	if st.Stage.Description == "" || st.Stage.RiskType == "" {
		t.Fatal("stage result must carry description and risk type")
	}
}

func TestPipelineDegradesOnEmptySnapshot(t *testing.T) {
	p := NewPipeline(config.Default().Analysis, zap.NewNop())
	st := p.Run(&Snapshot{
		Now:  time.Date(2024, 5, 6, 16, 0, 0, 0, time.Local),
		Mode: PostMarket,
	})

	// 全部输入为空也要得到完整的状态骨架
	if st.Liquidity == nil || st.Sentiment == nil || st.Stage == nil {
		t.Fatal("empty snapshot must still yield populated result keys")
	}
	if !math.IsNaN(st.Turnover.WeightedRate) {
		t.Fatal("failed turnover analyzer should leave NaN rate")
	}
	// 阶段定性消费空的流动性/股债结果，走默认分支
	if st.Stage.Description == "" {
		t.Fatal("stage should classify even with unknown inputs")
	}
}
