package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"stockradar/dataset"
)

// LeguClient 乐咕乐股适配器：市场赚钱效应与拥挤度
type LeguClient struct {
	client *http.Client
}

// NewLeguClient 创建乐咕客户端
func NewLeguClient(timeout time.Duration) *LeguClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &LeguClient{
		client: &http.Client{Timeout: timeout},
	}
}

func (lc *LeguClient) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := lc.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("legulegu returned status %d", resp.StatusCode)
	}
	return resp, nil
}

// MarketActivity 市场赚钱效应页面，返回 item/value 两列：
// 上涨、涨停、真实涨停、下跌、跌停、真实跌停、停牌、活跃度等。
func (lc *LeguClient) MarketActivity(ctx context.Context) (*dataset.Table, error) {
	resp, err := lc.get(ctx, "https://legulegu.com/stockdata/market-activity")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	table := dataset.New("item", "value")
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		// 页面里一行并排放两组 item/value
		for i := 0; i+1 < cells.Length(); i += 2 {
			item := strings.TrimSpace(cells.Eq(i).Text())
			value := strings.TrimSpace(cells.Eq(i + 1).Text())
			if item != "" && value != "" {
				table.AppendRow(item, value)
			}
		}
	})
	return table, nil
}

// Congestion 全市场拥挤度历史（百分位数，0-100）
func (lc *LeguClient) Congestion(ctx context.Context) (*dataset.Table, error) {
	resp, err := lc.get(ctx, "https://legulegu.com/api/stockdata/member-ship/get-congestion")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result struct {
		Data []struct {
			Date       string  `json:"date"`
			Congestion float64 `json:"congestion"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}

	table := dataset.New("date", "congestion")
	for _, item := range result.Data {
		table.AppendRow(item.Date, dataset.FormatFloat(item.Congestion))
	}
	return table, nil
}
