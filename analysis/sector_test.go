package analysis

import (
	"testing"

	"stockradar/dataset"
)

func sectorSnapshot() *Snapshot {
	flow := dataset.New("名称", "涨跌幅", "今日主力净流入-净额")
	flow.AppendRow("半导体", "2.1", "1500000000")
	flow.AppendRow("证券", "-1.2", "-800000000")
	flow.AppendRow("银行", "0.3", "200000000")
	flow.AppendRow("煤炭行业", "1.5", "900000000")

	rise := dataset.New("股票代码", "股票简称")
	rise.AppendRow("688001", "华兴源创")
	rise.AppendRow("688002", "睿创微纳")
	rise.AppendRow("601088", "中国神华")

	return &Snapshot{
		SectorFundFlow:  flow,
		VolumePriceRise: rise,
		IndustryMap: map[string]string{
			"688001": "半导体",
			"688002": "半导体",
			"601088": "煤炭行业",
		},
	}
}

func TestSectorHeatFormula(t *testing.T) {
	records, err := analyzeSectorHeat(sectorSnapshot())
	if err != nil {
		t.Fatalf("analyzeSectorHeat: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 sectors, got %d", len(records))
	}

	// 半导体：量价齐升 2 家（排第一），资金流入最大 ⇒ 人气分 100，资金分 100
	top := records[0]
	if top.Name != "半导体" {
		t.Fatalf("expected 半导体 on top, got %s", top.Name)
	}
	if top.PopularityScore != 100 || top.FundScore != 100 {
		t.Fatalf("expected 100/100 scores, got %v/%v", top.PopularityScore, top.FundScore)
	}
	if top.Heat != 100 {
		t.Fatalf("expected heat 100, got %v", top.Heat)
	}

	// 证券：0 家量价齐升（与银行并列末位）、资金流出最大
	var broker SectorRecord
	for _, r := range records {
		if r.Name == "证券" {
			broker = r
		}
	}
	// 人气分：两个 0 并列，平均名次 (1+2)/2=1.5 ⇒ 37.5；资金分 25
	if broker.PopularityScore != 37.5 {
		t.Fatalf("expected popularity 37.5, got %v", broker.PopularityScore)
	}
	if broker.FundScore != 25 {
		t.Fatalf("expected fund score 25, got %v", broker.FundScore)
	}
	want := round2(0.7*37.5 + 0.3*25)
	if broker.Heat != want {
		t.Fatalf("expected heat %v, got %v", want, broker.Heat)
	}
}

func TestSectorHeatReproducible(t *testing.T) {
	first, err := analyzeSectorHeat(sectorSnapshot())
	if err != nil {
		t.Fatal(err)
	}
	second, err := analyzeSectorHeat(sectorSnapshot())
	if err != nil {
		t.Fatal(err)
	}
	for i := range first {
		if first[i].Heat != second[i].Heat || first[i].Name != second[i].Name {
			t.Fatalf("heat not reproducible at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestSectorHeatAllNaNFundNeutral(t *testing.T) {
	flow := dataset.New("名称", "涨跌幅", "今日主力净流入-净额")
	flow.AppendRow("半导体", "2.1", "-")
	flow.AppendRow("证券", "-1.2", "")
	flow.AppendRow("银行", "0.3", "n/a")
	flow.AppendRow("煤炭行业", "1.5", "-")

	snap := &Snapshot{SectorFundFlow: flow}
	records, err := analyzeSectorHeat(snap)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range records {
		if r.FundScore != 50 {
			t.Fatalf("all-missing fund column should score neutral 50, got %v for %s", r.FundScore, r.Name)
		}
		// 全 0 人气：4 个并列，平均名次 2.5 ⇒ 62.5
		if r.PopularityScore != 62.5 {
			t.Fatalf("expected popularity 62.5, got %v", r.PopularityScore)
		}
		want := round2(0.7*62.5 + 0.3*50)
		if r.Heat != want {
			t.Fatalf("expected heat %v, got %v", want, r.Heat)
		}
	}
}
