package analysis

import "math"

// NormalizeFlowValue 把资金流数值统一到亿元口径。
// 部分接口按元返回，部分按亿元返回：绝对值超过 1e6 的视为元，除以 1e8。
// NaN 原样返回，由调用方显示为"未知"。
func NormalizeFlowValue(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	if math.Abs(v) > 1e6 {
		return v / 1e8
	}
	return v
}
