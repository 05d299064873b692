// Package report 组装并持久化对外报告
package report

// SectorEntry 板块热力条目
type SectorEntry struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Scenario 走势推演情景
type Scenario struct {
	Title       string  `json:"title"`
	Probability float64 `json:"probability"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
}

// Report 面向前端看板的日度报告。
// 字段结构是对外契约，缺数时填中性值而不是缺字段。
type Report struct {
	Timestamp      string   `json:"timestamp"`
	Index          float64  `json:"index"`
	Change         float64  `json:"change"`
	VolumeEstimate string   `json:"volumeEstimate"`
	LeverageRate   float64  `json:"leverageRate"`
	MainFlow       float64  `json:"mainFlow"`
	RetailFlow     float64  `json:"retailFlow"`
	WinRate        float64  `json:"winRate"`
	Sectors        Sectors  `json:"sectors"`
	Scenarios      []Scenario `json:"scenarios"`
	AiAdvice       []string `json:"aiAdvice"`
}

// Sectors 最强/最弱板块各取 5 个
type Sectors struct {
	Strong []SectorEntry `json:"strong"`
	Weak   []SectorEntry `json:"weak"`
}

// DefaultScenarios 叙事不可用时的兜底情景，结构与正式数据一致
func DefaultScenarios() []Scenario {
	return []Scenario{
		{Title: "基准情景", Probability: 60, Type: "base", Description: "指数震荡，量能回落但未破位。"},
		{Title: "乐观情景", Probability: 25, Type: "optimistic", Description: "量能放大、权重修复带动反弹。"},
		{Title: "悲观情景", Probability: 15, Type: "pessimistic", Description: "跌破关键支撑，引发加速下探。"},
	}
}

// DefaultAdvice 叙事不可用时的兜底建议
func DefaultAdvice() []string {
	return []string{
		"立即将总仓位降至50%以下，停止追高。",
		"优先减持高杠杆/破位品种，回避金融和游戏权重。",
		"配置部分货币/国债类资产锁定流动性。",
	}
}
