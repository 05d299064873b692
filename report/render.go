package report

import (
	"encoding/json"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"stockradar/analysis"
	"stockradar/scoring"
)

// Build 把分析状态渲染成对外报告。
// narrative 是大模型返回的原文（可能为空），narrativeErr 区分
// 未配置/调用失败——两种情况都降级到兜底情景与建议，绝不向上抛。
func Build(st *analysis.State, scores []scoring.ScoreRecord, narrative string, narrativeErr error, now time.Time) *Report {
	r := &Report{
		Timestamp:      now.Format("2006-01-02 15:04:05"),
		Index:          zeroIfNaN(st.Intermarket.Close),
		Change:         round2(zeroIfNaN(st.Intermarket.PctChg)),
		VolumeEstimate: fmtYi(st.Liquidity.TotalTurnover),
		LeverageRate:   round2(zeroIfNaN(st.Margin.LeverageRatio)),
		MainFlow:       round2(zeroIfNaN(st.Liquidity.MainNetInflow)),
		RetailFlow:     round2(zeroIfNaN(st.Liquidity.RetailNetInflow)),
		WinRate:        round2(zeroIfNaN(st.Sentiment.ProfitEffect)),
	}
	if st.Liquidity.TotalTurnover == 0 {
		r.VolumeEstimate = "0"
	}

	for i, rec := range st.SectorHeat {
		if i >= 5 {
			break
		}
		r.Sectors.Strong = append(r.Sectors.Strong, SectorEntry{Name: rec.Name, Value: rec.Heat})
	}
	for i := len(st.SectorHeat) - 1; i >= 0 && len(r.Sectors.Weak) < 5; i-- {
		rec := st.SectorHeat[i]
		r.Sectors.Weak = append(r.Sectors.Weak, SectorEntry{Name: rec.Name, Value: rec.Heat})
	}

	r.Scenarios = DefaultScenarios()
	r.AiAdvice = DefaultAdvice()
	if narrativeErr == nil && narrative != "" {
		if scenarios := extractScenarios(narrative); len(scenarios) == 3 {
			r.Scenarios = scenarios
		}
		if advice := extractAdvice(narrative); len(advice) > 0 {
			r.AiAdvice = advice
		}
	}
	return r
}

var probabilityPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)

// narrativeJSON 剥掉代码围栏后解析模型返回的 JSON
func narrativeJSON(narrative string) map[string]json.RawMessage {
	s := strings.TrimSpace(narrative)
	if idx := strings.Index(s, "{"); idx >= 0 {
		if end := strings.LastIndex(s, "}"); end > idx {
			s = s[idx : end+1]
		}
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return nil
	}
	return doc
}

// extractScenarios 从叙事 JSON 的"情景推演"键提取三个情景。
// 概率取描述里第一个百分数，取不到用兜底概率。
func extractScenarios(narrative string) []Scenario {
	doc := narrativeJSON(narrative)
	if doc == nil {
		return nil
	}
	raw, ok := doc["情景推演"]
	if !ok {
		return nil
	}
	var section map[string]string
	if err := json.Unmarshal(raw, &section); err != nil {
		return nil
	}

	defaults := DefaultScenarios()
	keys := []struct {
		key  string
		kind string
	}{
		{"基准情景", "base"},
		{"乐观情景", "optimistic"},
		{"悲观情景", "pessimistic"},
	}
	out := make([]Scenario, 0, 3)
	for i, k := range keys {
		desc, ok := section[k.key]
		if !ok || desc == "" {
			return nil
		}
		probability := defaults[i].Probability
		if m := probabilityPattern.FindStringSubmatch(desc); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				probability = v
			}
		}
		out = append(out, Scenario{
			Title:       k.key,
			Probability: probability,
			Type:        k.kind,
			Description: desc,
		})
	}
	return out
}

// extractAdvice 从"操作建议"键展平出建议列表，键序稳定
func extractAdvice(narrative string) []string {
	doc := narrativeJSON(narrative)
	if doc == nil {
		return nil
	}
	raw, ok := doc["操作建议"]
	if !ok {
		return nil
	}
	var section map[string]interface{}
	if err := json.Unmarshal(raw, &section); err != nil {
		return nil
	}
	return flattenAdvice(section)
}

func flattenAdvice(section map[string]interface{}) []string {
	keys := make([]string, 0, len(section))
	for k := range section {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []string
	for _, k := range keys {
		switch v := section[k].(type) {
		case string:
			out = append(out, k+": "+v)
		case []interface{}:
			for _, item := range v {
				if s, ok := item.(string); ok {
					out = append(out, s)
				}
			}
		case map[string]interface{}:
			out = append(out, flattenAdvice(v)...)
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
