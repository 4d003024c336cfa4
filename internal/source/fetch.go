package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-pulse/config"
)

// 单个页面/feed的最大读取量
const maxBodySize = 10 << 20

// Fetcher 带浏览器UA和超时的HTTP客户端, 部分站点会拒绝默认UA
type Fetcher struct {
	client    *http.Client
	userAgent string
	limiter   *HostRateLimiter
}

// NewFetcher 根据配置创建; MinHostInterval为0时不限速
func NewFetcher(cfg config.FetchConfig) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	f := &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
	}
	if cfg.MinHostInterval > 0 {
		f.limiter = NewHostRateLimiter(cfg.MinHostInterval)
	}
	return f
}

// Timeout 超时设置, 供feed解析器自带的请求复用
func (f *Fetcher) Timeout() time.Duration {
	return f.client.Timeout
}

// Get 抓取URL, 非2xx视为错误
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.WaitForHost(ctx, rawURL); err != nil {
			return nil, fmt.Errorf("rate limit %s: %w", rawURL, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("request %s: unexpected status %s", rawURL, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body %s: %w", rawURL, err)
	}
	return body, nil
}
