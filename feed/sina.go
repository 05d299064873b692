package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"stockradar/dataset"
)

// SinaClient 新浪行情适配器，作为东财指数行情的备选数据源
type SinaClient struct {
	client *http.Client
}

// NewSinaClient 创建新浪客户端
func NewSinaClient(timeout time.Duration) *SinaClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SinaClient{
		client: &http.Client{Timeout: timeout},
	}
}

// sinaSymbol 指数代码转新浪格式
func sinaSymbol(symbol string) string {
	if strings.HasPrefix(symbol, "399") || strings.HasPrefix(symbol, "899") {
		return "s_sz" + symbol
	}
	return "s_sh" + symbol
}

// IndexSpot 指数实时行情。新浪 hq 接口返回 GBK 编码的 JS 赋值语句，
// 每行形如 var hq_str_s_sh000001="上证指数,3100.00,10.20,0.33,2894544,36105014";
// 末列成交额单位为万元，这里统一换算成元。
func (sc *SinaClient) IndexSpot(ctx context.Context, symbols []string) (*dataset.Table, error) {
	list := make([]string, 0, len(symbols))
	for _, s := range symbols {
		list = append(list, sinaSymbol(s))
	}

	req, err := http.NewRequestWithContext(ctx, "GET",
		"https://hq.sinajs.cn/list="+strings.Join(list, ","), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Referer", "https://finance.sina.com.cn")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := sc.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sina returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(transform.NewReader(resp.Body, simplifiedchinese.GBK.NewDecoder()))
	if err != nil {
		return nil, err
	}

	table := dataset.New("代码", "名称", "最新价", "涨跌幅", "成交额")
	for i, line := range strings.Split(string(body), "\n") {
		start := strings.Index(line, `"`)
		end := strings.LastIndex(line, `"`)
		if start < 0 || end <= start {
			continue
		}
		fields := strings.Split(line[start+1:end], ",")
		if len(fields) < 6 || i >= len(symbols) {
			continue
		}
		amount := dataset.ParseFloat(fields[5]) * 1e4
		table.AppendRow(symbols[i], fields[0], fields[1], fields[3], dataset.FormatFloat(amount))
	}
	return table, nil
}
