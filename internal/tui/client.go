package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Ajayos/Server/internal/sysinfo"
)

// Client 负责轮询一台运行中服务器的 vitals 接口。
type Client struct {
	http  *http.Client
	url   string
	token string
}

// NewClient 构造轮询客户端；token 非空时作为 Bearer 凭证发送。
func NewClient(url, token string) *Client {
	return &Client{
		http:  &http.Client{Timeout: 5 * time.Second},
		url:   url,
		token: token,
	}
}

// URL 返回轮询目标地址。
func (c *Client) URL() string {
	return c.url
}

// Fetch 抓取一次快照。
func (c *Client) Fetch(ctx context.Context) (sysinfo.Vitals, error) {
	var vitals sysinfo.Vitals

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return vitals, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return vitals, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return vitals, fmt.Errorf("vitals endpoint returned %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&vitals); err != nil {
		return vitals, fmt.Errorf("decode vitals: %w", err)
	}
	return vitals, nil
}
