// Package llm 封装对大模型对话接口的叙事生成调用
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// 两类失败用哨兵错误区分：未配置不是故障，渲染层据此决定提示文案。
var (
	// ErrNotConfigured 缺少有效鉴权信息（key/model 为空或占位符）
	ErrNotConfigured = errors.New("llm not configured")
	// ErrCallFailed 传输、鉴权或参数层面的调用失败
	ErrCallFailed = errors.New("llm call failed")
)

// Client 大模型对话客户端
type Client struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewClient 创建客户端，timeout 为单次请求超时
func NewClient(apiKey, model, endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:   apiKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// isPlaceholder 识别形如 xxxxxxxx 的占位凭据
func isPlaceholder(v string) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" {
		return true
	}
	for _, c := range v {
		if c != 'x' {
			return false
		}
	}
	return true
}

type chatRequest struct {
	Model    string        `json:"model"`
	Stream   bool          `json:"stream"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate 发起一次对话补全。
// 凭据无效返回 ErrNotConfigured，调用环节的任何失败返回 ErrCallFailed，
// 均可用 errors.Is 判别。
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	if isPlaceholder(c.apiKey) || isPlaceholder(c.model) {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Model:  c.model,
		Stream: false,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrCallFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCallFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCallFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("%w: status %d: %s",
			ErrCallFailed, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrCallFailed, err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrCallFailed)
	}
	return decoded.Choices[0].Message.Content, nil
}
