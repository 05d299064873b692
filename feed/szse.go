package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"stockradar/dataset"
)

// SzseClient 深交所适配器：交易日历
type SzseClient struct {
	client *http.Client
}

// NewSzseClient 创建深交所客户端
func NewSzseClient(timeout time.Duration) *SzseClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SzseClient{
		client: &http.Client{Timeout: timeout},
	}
}

// TradeCalendar 指定月份的交易日历，返回单列 trade_date（YYYY-MM-DD），
// 只含交易日。沪深交易日一致，用深交所一家即可。
func (sc *SzseClient) TradeCalendar(ctx context.Context, month time.Time) (*dataset.Table, error) {
	u := fmt.Sprintf("https://www.szse.cn/api/report/exchange/onepersistenthour/monthList?month=%s",
		month.Format("2006-01"))

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := sc.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("szse returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result struct {
		Data []struct {
			Date string `json:"jyrq"`
			Flag string `json:"jybz"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}

	table := dataset.New("trade_date")
	for _, day := range result.Data {
		if day.Flag == "1" {
			table.AppendRow(day.Date)
		}
	}
	return table, nil
}
