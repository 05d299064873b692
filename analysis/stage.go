package analysis

import "math"

// analyzeStage 市场阶段定性：由 60 日位置 × 量能分档 × 主力资金方向
// 查表得出，消费流动性与股债关系的结果，必须在两者之后运行。
func analyzeStage(liquidity *LiquidityResult, intermarket *IntermarketResult) (*StageResult, error) {
	position := "未知"
	if intermarket != nil && intermarket.PositionDesc != "" {
		position = intermarket.PositionDesc
	}
	volumeLevel := "未知"
	mainInflow := 0.0
	if liquidity != nil {
		if liquidity.QualitativeLevel != "" {
			volumeLevel = liquidity.QualitativeLevel
		}
		if !math.IsNaN(liquidity.MainNetInflow) {
			mainInflow = liquidity.MainNetInflow
		}
	}

	var desc, risk string
	switch position {
	case "高位区域":
		if volumeLevel == "天量水平" || volumeLevel == "巨量水平" {
			if mainInflow < -50 {
				desc = "当前市场处于【上涨趋势末期】的巨量换手阶段，主力资金分歧加大，离场意愿明显。"
				risk = "趋势性风险上升，技术性回调风险剧增。"
			} else {
				desc = "当前市场处于【牛市中期】的巨量换手阶段，资金承接良好但波动加剧。"
				risk = "趋势保持但技术性回调风险加剧。"
			}
		} else {
			desc = "当前市场处于【高位震荡】阶段，短期上攻动能减弱，进入存量博弈。"
			risk = "趋势面临考验，技术性风险较高。"
		}
	case "低位区域":
		if volumeLevel == "地量水平" {
			desc = "当前市场处于【熊市末期或牛市初期】的筑底阶段，成交持续低迷，市场关注度低。"
			risk = "趋势性风险已大幅释放，但仍需警惕技术性探底风险。"
		} else {
			desc = "当前市场处于【低位反弹】阶段，资金尝试抄底，但趋势反转仍需确认。"
			risk = "趋势性风险仍存，技术性反弹非反转。"
		}
	default:
		desc = "当前市场处于【震荡整固】阶段，多空双方力量均衡，等待方向选择。"
		risk = "趋势不明朗，主要为技术性波动风险。"
	}

	return &StageResult{Description: desc, RiskType: risk}, nil
}
