package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ai-pulse/config"
	"github.com/cenkalti/backoff/v5"
)

// ChatModel 摘要阶段依赖的模型接口
type ChatModel interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
}

type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Stream         bool            `json:"stream"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat {"type":"json_object"} 开启JSON模式
type ResponseFormat struct {
	Type string `json:"type"`
}

// JSONMode 要求模型只返回JSON对象
var JSONMode = &ResponseFormat{Type: "json_object"}

type ChatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type ModelsResponse struct {
	Data []struct {
		ID      string `json:"id"`
		Object  string `json:"object"`
		Created int64  `json:"created"`
		OwnedBy string `json:"owned_by"`
	} `json:"data"`
}

// StatusError 接口返回非200
type StatusError struct {
	Code       int
	Body       string
	RetryAfter int // 秒, 仅429时可能有
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm api error (%d): %s", e.Code, e.Body)
}

// ErrEmptyResponse choices为空
var ErrEmptyResponse = errors.New("no response from llm")

var errDecode = errors.New("decode response")

// LLMClient OpenAI兼容的chat/completions客户端
type LLMClient struct {
	cfg    config.LLMConfig
	client *http.Client
	logger *slog.Logger
}

func NewLLMClient(cfg config.LLMConfig, logger *slog.Logger) *LLMClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMClient{
		cfg:    cfg,
		client: &http.Client{},
		logger: logger.With("component", "llm"),
	}
}

// Chat 调用模型; 网络错误/429/5xx按指数退避重试, 其余错误直接返回
func (c *LLMClient) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if req.Model == "" {
		req.Model = c.cfg.Model
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	attempt := 0
	op := func() (string, error) {
		attempt++
		content, err := c.chatOnce(ctx, body)
		if err == nil {
			return content, nil
		}
		if ctx.Err() != nil {
			return "", backoff.Permanent(ctx.Err())
		}
		if !retryable(err) {
			return "", backoff.Permanent(err)
		}
		c.logger.Warn("llm request failed, retrying", "attempt", attempt, "error", err)
		var se *StatusError
		if errors.As(err, &se) && se.RetryAfter > 0 {
			return "", backoff.RetryAfter(se.RetryAfter)
		}
		return "", err
	}

	b := backoff.NewExponentialBackOff()
	if c.cfg.RetryInterval > 0 {
		b.InitialInterval = c.cfg.RetryInterval
	}
	tries := uint(1)
	if c.cfg.MaxRetries > 0 {
		tries += uint(c.cfg.MaxRetries)
	}

	return backoff.Retry(ctx, op, backoff.WithBackOff(b), backoff.WithMaxTries(tries))
}

func (c *LLMClient) chatOnce(ctx context.Context, body []byte) (string, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/chat/completions"), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		se := &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
		if resp.StatusCode == http.StatusTooManyRequests {
			se.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
		}
		return "", se
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("%w: %v", errDecode, err)
	}
	if len(chatResp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return chatResp.Choices[0].Message.Content, nil
}

// Models 获取可用模型列表
func (c *LLMClient) Models(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/models"), nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var modelsResp ModelsResponse
	if err := json.Unmarshal(body, &modelsResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	models := make([]string, 0, len(modelsResp.Data))
	for _, m := range modelsResp.Data {
		models = append(models, m.ID)
	}
	return models, nil
}

// Ping 检查接口可用且配置的模型存在
func (c *LLMClient) Ping(ctx context.Context) error {
	if c.cfg.ApiURL == "" {
		return errors.New("llm api url is not configured")
	}
	if c.cfg.Model == "" {
		return errors.New("llm model is not configured")
	}
	models, err := c.Models(ctx)
	if err != nil {
		return err
	}
	for _, m := range models {
		if m == c.cfg.Model {
			return nil
		}
	}
	return fmt.Errorf("model %s not available", c.cfg.Model)
}

func (c *LLMClient) endpoint(path string) string {
	return strings.TrimRight(c.cfg.ApiURL, "/") + path
}

func (c *LLMClient) authorize(req *http.Request) {
	if c.cfg.ApiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.ApiKey)
	}
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	// 解码失败通常是代理返回了HTML, 重试无意义
	if errors.Is(err, ErrEmptyResponse) || errors.Is(err, errDecode) {
		return false
	}
	return true
}

// 只支持秒数形式
func parseRetryAfter(v string) int {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return secs
}
