package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"stockradar/dataset"
)

// ThsClient 同花顺适配器：量价齐升榜单
type ThsClient struct {
	client *http.Client
}

// NewThsClient 创建同花顺客户端
func NewThsClient(timeout time.Duration) *ThsClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ThsClient{
		client: &http.Client{Timeout: timeout},
	}
}

// VolumePriceRise 量价齐升榜单。页面是 GBK 编码的 HTML 表格，
// 列依次为：序号、股票代码、股票简称、最新价、量价齐升天数、
// 阶段涨幅、累计换手率、所属行业。
func (tc *ThsClient) VolumePriceRise(ctx context.Context) (*dataset.Table, error) {
	req, err := http.NewRequestWithContext(ctx, "GET",
		"https://data.10jqka.com.cn/rank/ljqs/field/count/order/desc/page/1/ajax/1/free/1/", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := tc.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("10jqka returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(
		transform.NewReader(resp.Body, simplifiedchinese.GBK.NewDecoder()))
	if err != nil {
		return nil, err
	}

	table := dataset.New("股票代码", "股票简称", "量价齐升天数", "所属行业")
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 8 {
			return
		}
		cell := func(i int) string { return strings.TrimSpace(cells.Eq(i).Text()) }
		table.AppendRow(cell(1), cell(2), cell(4), cell(7))
	})
	return table, nil
}
