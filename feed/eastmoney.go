package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stockradar/dataset"
)

// EastmoneyClient 东方财富数据源适配器
type EastmoneyClient struct {
	client *http.Client
}

// NewEastmoneyClient 创建东方财富客户端
func NewEastmoneyClient(timeout time.Duration) *EastmoneyClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &EastmoneyClient{
		client: &http.Client{Timeout: timeout},
	}
}

func (ec *EastmoneyClient) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Referer", "https://quote.eastmoney.com/")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := ec.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("eastmoney returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// indexSecID 指数代码转 secid（带市场前缀）
func indexSecID(symbol string) string {
	if strings.HasPrefix(symbol, "399") || strings.HasPrefix(symbol, "899") {
		return "0." + symbol
	}
	return "1." + symbol
}

// fundSecID 场内基金代码转 secid
func fundSecID(code string) string {
	if strings.HasPrefix(code, "5") {
		return "1." + code
	}
	return "0." + code
}

var klineColumns = []string{"日期", "开盘", "收盘", "最高", "最低", "成交量", "成交额", "振幅", "涨跌幅"}

func klineTable(klines []string) *dataset.Table {
	table := dataset.New(klineColumns...)
	for _, line := range klines {
		parts := strings.Split(line, ",")
		if len(parts) >= 9 {
			table.AppendRow(parts[:9]...)
		}
	}
	return table
}

// IndexHistory 指数日线历史，startDate 格式 YYYYMMDD，空串表示从头取
func (ec *EastmoneyClient) IndexHistory(ctx context.Context, symbol, startDate string) (*dataset.Table, error) {
	if startDate == "" {
		startDate = "0"
	}
	u := fmt.Sprintf("https://push2his.eastmoney.com/api/qt/stock/kline/get?secid=%s&fields1=f1,f2,f3,f4,f5&fields2=f51,f52,f53,f54,f55,f56,f57,f58,f59&klt=101&fqt=1&beg=%s&end=20500101",
		indexSecID(symbol), startDate)

	var result struct {
		Data struct {
			Klines []string `json:"klines"`
		} `json:"data"`
	}
	if err := ec.getJSON(ctx, u, &result); err != nil {
		return nil, err
	}
	return klineTable(result.Data.Klines), nil
}

// FundHistory 场内基金（ETF）日线历史，前复权，最近 limit 根
func (ec *EastmoneyClient) FundHistory(ctx context.Context, code string, limit int) (*dataset.Table, error) {
	u := fmt.Sprintf("https://push2his.eastmoney.com/api/qt/stock/kline/get?secid=%s&fields1=f1,f2,f3,f4,f5&fields2=f51,f52,f53,f54,f55,f56,f57,f58,f59&klt=101&fqt=1&beg=0&end=20500101&lmt=%d",
		fundSecID(code), limit)

	var result struct {
		Data struct {
			Klines []string `json:"klines"`
		} `json:"data"`
	}
	if err := ec.getJSON(ctx, u, &result); err != nil {
		return nil, err
	}
	return klineTable(result.Data.Klines), nil
}

// clist 行情列表通用取数：东财 clist 接口的字段名都是 fNN，
// 这里按调用方给定的映射转成业务列名。
func (ec *EastmoneyClient) clist(ctx context.Context, fs string, fid string, fields []string, columns []string) (*dataset.Table, error) {
	u := fmt.Sprintf("https://push2.eastmoney.com/api/qt/clist/get?pn=1&pz=10000&po=1&np=1&fltt=2&invt=2&fid=%s&fs=%s&fields=%s",
		fid, url.QueryEscape(fs), strings.Join(fields, ","))

	var result struct {
		Data struct {
			Diff []map[string]interface{} `json:"diff"`
		} `json:"data"`
	}
	if err := ec.getJSON(ctx, u, &result); err != nil {
		return nil, err
	}

	table := dataset.New(columns...)
	for _, item := range result.Data.Diff {
		row := make([]string, len(fields))
		for i, f := range fields {
			row[i] = anyToCell(item[f])
		}
		table.AppendRow(row...)
	}
	return table, nil
}

func anyToCell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		if val == "-" {
			return ""
		}
		return val
	case float64:
		return dataset.FormatFloat(val)
	case json.Number:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// StockSpot A股全体实时行情（用于换手率与杠杆率计算）
func (ec *EastmoneyClient) StockSpot(ctx context.Context) (*dataset.Table, error) {
	return ec.clist(ctx,
		"m:0 t:6,m:0 t:80,m:1 t:2,m:1 t:23,m:0 t:81 s:2048", "f3",
		[]string{"f12", "f14", "f2", "f3", "f6", "f8", "f20", "f21"},
		[]string{"代码", "名称", "最新价", "涨跌幅", "成交额", "换手率", "总市值", "流通市值"})
}

// FundSpot 场内基金实时行情
func (ec *EastmoneyClient) FundSpot(ctx context.Context) (*dataset.Table, error) {
	return ec.clist(ctx,
		"b:MK0021,b:MK0022,b:MK0023,b:MK0024", "f6",
		[]string{"f12", "f14", "f2", "f3", "f6"},
		[]string{"代码", "名称", "最新价", "涨跌幅", "成交额"})
}

// IndexSpot 指数实时行情（盘中成交额备选来源）
func (ec *EastmoneyClient) IndexSpot(ctx context.Context) (*dataset.Table, error) {
	return ec.clist(ctx,
		"m:1 s:2,m:0 t:5", "f6",
		[]string{"f12", "f14", "f6"},
		[]string{"代码", "名称", "成交额"})
}

// SectorFundFlow 行业板块当日主力资金流排名
func (ec *EastmoneyClient) SectorFundFlow(ctx context.Context) (*dataset.Table, error) {
	return ec.clist(ctx,
		"m:90 t:2", "f62",
		[]string{"f14", "f3", "f62"},
		[]string{"名称", "涨跌幅", "今日主力净流入-净额"})
}

// IndustryBoards 行业板块列表
func (ec *EastmoneyClient) IndustryBoards(ctx context.Context) (*dataset.Table, error) {
	return ec.clist(ctx,
		"m:90 t:2", "f3",
		[]string{"f12", "f14"},
		[]string{"板块代码", "板块名称"})
}

// IndustryConstituents 指定行业板块的成分股
func (ec *EastmoneyClient) IndustryConstituents(ctx context.Context, boardCode string) (*dataset.Table, error) {
	return ec.clist(ctx,
		"b:"+boardCode, "f3",
		[]string{"f12", "f14"},
		[]string{"代码", "名称"})
}

// MarketFundFlow 市场整体资金流历史（主力/小单净额）
func (ec *EastmoneyClient) MarketFundFlow(ctx context.Context) (*dataset.Table, error) {
	u := "https://push2his.eastmoney.com/api/qt/stock/fflow/daykline/get?lmt=0&klt=101&secid=1.000001&secid2=0.399001&fields1=f1,f2,f3,f7&fields2=f51,f52,f53,f54,f55,f56"

	var result struct {
		Data struct {
			Klines []string `json:"klines"`
		} `json:"data"`
	}
	if err := ec.getJSON(ctx, u, &result); err != nil {
		return nil, err
	}

	table := dataset.New("日期", "主力净流入-净额", "小单净流入-净额", "中单净流入-净额", "大单净流入-净额", "超大单净流入-净额")
	for _, line := range result.Data.Klines {
		parts := strings.Split(line, ",")
		if len(parts) >= 6 {
			table.AppendRow(parts[:6]...)
		}
	}
	return table, nil
}

// NorthboundFlow 北向资金净流入历史（沪股通/深股通拆分）
func (ec *EastmoneyClient) NorthboundFlow(ctx context.Context) (*dataset.Table, error) {
	u := "https://push2his.eastmoney.com/api/qt/kamt.kline/get?fields1=f1,f3,f5&fields2=f51,f52&klt=101&lmt=365"

	var result struct {
		Data struct {
			S2N  []string `json:"s2n"`
			HK2SH []string `json:"hk2sh"`
			HK2SZ []string `json:"hk2sz"`
		} `json:"data"`
	}
	if err := ec.getJSON(ctx, u, &result); err != nil {
		return nil, err
	}

	pick := func(list []string, i int) string {
		if i >= len(list) {
			return ""
		}
		parts := strings.Split(list[i], ",")
		if len(parts) < 2 {
			return ""
		}
		return parts[1]
	}

	table := dataset.New("日期", "北向资金", "沪股通", "深股通")
	for i, line := range result.Data.S2N {
		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			continue
		}
		table.AppendRow(parts[0], parts[1], pick(result.Data.HK2SH, i), pick(result.Data.HK2SZ, i))
	}
	return table, nil
}

// NorthboundHoldings 北向资金重仓/增持个股明细
func (ec *EastmoneyClient) NorthboundHoldings(ctx context.Context) (*dataset.Table, error) {
	return ec.datacenter(ctx, "RPT_MUTUAL_STOCK_NORTHSTA",
		"TRADE_DATE", `(INTERVAL_TYPE="1")`,
		map[string]string{
			"代码":    "SECURITY_CODE",
			"名称":    "SECURITY_NAME_ABBR",
			"今日净买入": "ADD_MARKET_CAP",
			"持股市值":  "HOLD_MARKET_CAP",
		})
}

// MarginBalance 融资融券余额历史，market 取值 "上海市场" / "深圳市场"
func (ec *EastmoneyClient) MarginBalance(ctx context.Context, market string) (*dataset.Table, error) {
	return ec.datacenter(ctx, "RPTA_RZRQ_LSHJ",
		"DIM_DATE", fmt.Sprintf(`(MARKET="%s")`, market),
		map[string]string{
			"日期":   "DIM_DATE",
			"融资余额": "RZYE",
			"融券余额": "RQYE",
		})
}

// datacenter 东财数据中心通用取数，按列名映射转表
func (ec *EastmoneyClient) datacenter(ctx context.Context, reportName, sortColumn, filter string, columns map[string]string) (*dataset.Table, error) {
	u := fmt.Sprintf("https://datacenter-web.eastmoney.com/api/data/v1/get?reportName=%s&columns=ALL&pageSize=500&pageNumber=1&sortColumns=%s&sortTypes=-1",
		reportName, sortColumn)
	if filter != "" {
		u += "&filter=" + url.QueryEscape(filter)
	}

	var result struct {
		Result struct {
			Data []map[string]interface{} `json:"data"`
		} `json:"result"`
	}
	if err := ec.getJSON(ctx, u, &result); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(columns))
	keys := make([]string, 0, len(columns))
	// map 遍历无序，固定一个稳定列序
	for _, name := range []string{"日期", "代码", "名称", "今日净买入", "持股市值", "融资余额", "融券余额"} {
		if key, ok := columns[name]; ok {
			names = append(names, name)
			keys = append(keys, key)
		}
	}

	table := dataset.New(names...)
	for _, item := range result.Result.Data {
		row := make([]string, len(keys))
		for i, k := range keys {
			row[i] = anyToCell(item[k])
		}
		table.AppendRow(row...)
	}
	// 数据中心按日期倒序返回，统一转为升序
	if idx := table.ColumnIndex("日期"); idx != dataset.ColNotFound {
		table.SortByColumn(idx)
	}
	return table, nil
}

// limitPool 涨跌停题材池通用取数
func (ec *EastmoneyClient) limitPool(ctx context.Context, endpoint, dpt string, date time.Time) (*dataset.Table, error) {
	u := fmt.Sprintf("https://push2ex.eastmoney.com/%s?ut=7eea3edcaed734bea9cbfc24409ed989&dpt=%s&Pageindex=0&pagesize=1000&sort=fbt%%3Aasc&date=%s",
		endpoint, dpt, date.Format("20060102"))

	var result struct {
		Data struct {
			Pool []struct {
				Code   interface{} `json:"c"`
				Name   string      `json:"n"`
				Streak int         `json:"lbc"`
			} `json:"pool"`
		} `json:"data"`
	}
	if err := ec.getJSON(ctx, u, &result); err != nil {
		return nil, err
	}

	table := dataset.New("代码", "名称", "连板数")
	for _, item := range result.Data.Pool {
		code := anyToCell(item.Code)
		// 接口返回的代码可能丢失前导零
		for len(code) < 6 {
			code = "0" + code
		}
		table.AppendRow(code, item.Name, fmt.Sprintf("%d", item.Streak))
	}
	return table, nil
}

// LimitUpPool 涨停池
func (ec *EastmoneyClient) LimitUpPool(ctx context.Context, date time.Time) (*dataset.Table, error) {
	return ec.limitPool(ctx, "getTopicZTPool", "wz.ztzt", date)
}

// LimitDownPool 跌停池
func (ec *EastmoneyClient) LimitDownPool(ctx context.Context, date time.Time) (*dataset.Table, error) {
	return ec.limitPool(ctx, "getTopicDTPool", "wz.ztzt", date)
}

// BrokenLimitPool 炸板池
func (ec *EastmoneyClient) BrokenLimitPool(ctx context.Context, date time.Time) (*dataset.Table, error) {
	return ec.limitPool(ctx, "getTopicZBPool", "wz.ztzt", date)
}

// StrongPool 强势股池（连板高度备选来源）
func (ec *EastmoneyClient) StrongPool(ctx context.Context, date time.Time) (*dataset.Table, error) {
	return ec.limitPool(ctx, "getTopicQSPool", "wz.ztzt", date)
}
