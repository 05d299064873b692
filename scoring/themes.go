package scoring

import "strings"

// themeRule 名称关键词到（细分板块, 主题）的映射规则
type themeRule struct {
	sector   string
	theme    string
	keywords []string
}

// 规则按序匹配，先命中先得；命中不到归入"其他"。
// 港股类关键词优先于所有行业规则判断。
var hkKeywords = []string{"恒生", "H股", "港股", "中概", "互联网"}

var themeRules = []themeRule{
	{"证券", "大金融", []string{"证券", "券商"}},
	{"保险", "大金融", []string{"保险"}},
	{"银行", "大金融", []string{"银行"}},
	{"半导体", "科技/半导体", []string{"半导体", "芯片"}},
	{"计算机", "科技/半导体", []string{"计算机", "信创", "软件", "云计算", "AI", "人工智能"}},
	{"消费电子", "科技/半导体", []string{"消费电子"}},
	{"通信设备", "科技/半导体", []string{"5G", "通信"}},
	{"光学光电子", "科技/半导体", []string{"光学"}},
	{"光伏设备", "大新能源", []string{"光伏"}},
	{"电池", "大新能源", []string{"电池", "锂电", "新能车", "电动车"}},
	{"电网设备", "大新能源", []string{"电网", "特高压"}},
	{"食品饮料", "大消费", []string{"食品", "饮料", "白酒", "消费"}},
	{"家电行业", "大消费", []string{"家电"}},
	{"美容护理", "大消费", []string{"医美", "美容"}},
	{"医药商业", "医疗健康", []string{"医药"}},
	{"医疗服务", "医疗健康", []string{"医疗"}},
	{"中药", "医疗健康", []string{"中药"}},
	{"房地产开发", "房地产", []string{"地产", "房地产"}},
	{"游戏", "传媒/游戏", []string{"游戏"}},
	{"文化传媒", "传媒/游戏", []string{"传媒", "影视"}},
	{"国防军工", "军工", []string{"军工", "国防"}},
	{"煤炭行业", "周期/材料", []string{"煤炭"}},
	{"有色金属", "周期/材料", []string{"有色"}},
	{"钢铁行业", "周期/材料", []string{"钢铁"}},
	{"化学原料", "周期/材料", []string{"化工"}},
	{"工程机械", "高端制造", []string{"机械", "制造"}},
	{"专用设备", "高端制造", []string{"设备"}},
	{"物流行业", "交通运输", []string{"运输", "物流", "航运", "港口"}},
	{"农牧饲渔", "大农业", []string{"农业", "养殖", "畜牧"}},
}

// ClassifyTheme 按标的名称归类（细分板块, 主题）
func ClassifyTheme(name string) (sector, theme string) {
	for _, kw := range hkKeywords {
		if strings.Contains(name, kw) {
			return "港股", "港股"
		}
	}
	for _, rule := range themeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(name, kw) {
				return rule.sector, rule.theme
			}
		}
	}
	return "其他", "其他"
}
