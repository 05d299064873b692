package scoring

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"stockradar/analysis"
	"stockradar/dataset"
)

func TestClassifyTheme(t *testing.T) {
	tests := []struct {
		name       string
		wantSector string
		wantTheme  string
	}{
		{"券商ETF", "证券", "大金融"},
		{"半导体设备ETF", "半导体", "科技/半导体"},
		{"恒生科技ETF", "港股", "港股"},
		{"港股通互联网ETF", "港股", "港股"},
		{"白酒ETF", "食品饮料", "大消费"},
		{"光伏产业ETF", "光伏设备", "大新能源"},
		{"莫名其妙ETF", "其他", "其他"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sector, theme := ClassifyTheme(tt.name)
			if sector != tt.wantSector || theme != tt.wantTheme {
				t.Fatalf("ClassifyTheme(%s) = (%s, %s), want (%s, %s)",
					tt.name, sector, theme, tt.wantSector, tt.wantTheme)
			}
		})
	}
}

func TestScoreClipLaw(t *testing.T) {
	e := NewEngine(nil, nil, 1, 0, zap.NewNop())
	heat := []analysis.SectorRecord{
		{Name: "半导体", Heat: 100}, // 调整 +3.33
		{Name: "证券", Heat: 0},     // 调整 -3.33
	}
	tech := []TechResult{
		{Code: "516920", Name: "半导体ETF", Status: "上涨趋势中的回调", BaseScore: 3.0, ChangePct: -1.2},
		{Code: "512880", Name: "券商ETF", Status: "弱势下跌通道", BaseScore: 1.0, ChangePct: -2.5},
		{Code: "510300", Name: "莫名其妙ETF", Status: "观察", BaseScore: 2.0, ChangePct: 0.3},
	}

	records := e.Score(tech, heat)
	for _, r := range records {
		if r.FinalScore < 0 || r.FinalScore > 5 {
			t.Fatalf("final score %v out of [0,5] for %s", r.FinalScore, r.Name)
		}
		if len(r.Reasons) < 2 {
			t.Fatalf("expected rationale trail, got %v", r.Reasons)
		}
	}

	// 最高分在前
	if records[0].Code != "516920" {
		t.Fatalf("expected 516920 ranked first, got %s", records[0].Code)
	}
	// 3.0 + 3.33 会被截到 5
	if records[0].FinalScore != 5 {
		t.Fatalf("expected clipped score 5, got %v", records[0].FinalScore)
	}
	// 高分且当日下跌要带低吸提示
	found := false
	for _, reason := range records[0].Reasons {
		if reason == "回调但趋势未破，或为低吸机会" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected pullback note for high-score decliner")
	}
	// 1.0 - 3.33 截到 0
	for _, r := range records {
		if r.Code == "512880" && r.FinalScore != 0 {
			t.Fatalf("expected clipped score 0, got %v", r.FinalScore)
		}
	}
	// 未知板块取中性热力 50，调整为 0
	for _, r := range records {
		if r.Code == "510300" && r.HeatAdjustment != 0 {
			t.Fatalf("expected neutral adjustment, got %v", r.HeatAdjustment)
		}
	}
}

func histFixture(closes []float64, lastPct float64) *dataset.Table {
	t := dataset.New("日期", "收盘", "涨跌幅")
	for i, c := range closes {
		pct := "0.5"
		if i == len(closes)-1 {
			pct = dataset.FormatFloat(lastPct)
		}
		t.AppendRow(dataset.FormatFloat(float64(i)), dataset.FormatFloat(c), pct)
	}
	return t
}

func TestAnalyzeOneStatusTable(t *testing.T) {
	flat := func(n int, v float64) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = v
		}
		return out
	}

	tests := []struct {
		name       string
		closes     []float64
		lastPct    float64
		wantStatus string
		wantScore  float64
	}{
		{
			// 长期横盘后走高，MA5>MA20 且收盘在 MA20 上，当日回调
			name:       "pullback in uptrend",
			closes:     append(flat(25, 100), 110, 112, 114, 116, 115),
			lastPct:    -0.8,
			wantStatus: "上涨趋势中的回调",
			wantScore:  3.0,
		},
		{
			name:       "strong advance",
			closes:     append(flat(25, 100), 110, 112, 114, 116, 118),
			lastPct:    1.7,
			wantStatus: "强势加速上涨",
			wantScore:  2.5,
		},
		{
			name:       "breakdown",
			closes:     append(flat(25, 100), 90, 88, 86, 84, 82),
			lastPct:    -2.4,
			wantStatus: "弱势下跌通道",
			wantScore:  1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hist := histFixture(tt.closes, tt.lastPct)
			e := NewEngine(func(context.Context, string) (*dataset.Table, error) {
				return hist, nil
			}, nil, 1, 0, zap.NewNop())

			res, err := e.analyzeOne(context.Background(), TechResult{Code: "510300", Name: "x"})
			if err != nil {
				t.Fatalf("analyzeOne: %v", err)
			}
			if res.Status != tt.wantStatus || res.BaseScore != tt.wantScore {
				t.Fatalf("got (%s, %v), want (%s, %v)",
					res.Status, res.BaseScore, tt.wantStatus, tt.wantScore)
			}
		})
	}
}

func TestAnalyzeOneRejectsShortHistory(t *testing.T) {
	hist := histFixture([]float64{1, 2, 3}, 0.1)
	e := NewEngine(func(context.Context, string) (*dataset.Table, error) {
		return hist, nil
	}, nil, 1, 0, zap.NewNop())

	if _, err := e.analyzeOne(context.Background(), TechResult{Code: "510300"}); err == nil {
		t.Fatal("expected error for history shorter than 21 bars")
	}
}

func TestUniverseFilters(t *testing.T) {
	spot := dataset.New("代码", "名称", "最新价", "涨跌幅", "成交额")
	spot.AppendRow("513100", "纳斯达克ETF", "1.2", "0.5", "900000000") // 境外，剔除
	spot.AppendRow("510300", "沪深300ETF", "3.9", "0.2", "900000000") // 保留
	spot.AppendRow("516920", "半导体ETF", "1.1", "1.8", "30000000")   // 成交额不足
	spot.AppendRow("518880", "黄金ETF", "6.0", "0.1", "900000000")   // 境外资产类，剔除

	e := NewEngine(nil, nil, 5, 5e7, zap.NewNop())
	universe := e.Universe(spot)
	if len(universe) != 1 || universe[0].Code != "510300" {
		t.Fatalf("unexpected universe: %+v", universe)
	}
}
