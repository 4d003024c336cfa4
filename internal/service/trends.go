package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-pulse/config"
	"ai-pulse/internal/metrics"
	"ai-pulse/internal/model"
)

// 不超过这个天数的窗口不做趋势总结
const minTrendDays = 7

// TrendResult 一次趋势总结的结果
type TrendResult struct {
	Timeframe    string `json:"timeframe"`
	ArticleCount int    `json:"article_count"`
	Stored       bool   `json:"stored"`
	ValidJSON    bool   `json:"valid_json"`
	SkipReason   string `json:"skip_reason,omitempty"`
}

// SummarizeTrends 对最近days天的文章做趋势总结, 并替换该窗口已有的记录
func (s *Summarizer) SummarizeTrends(ctx context.Context, days int) (TrendResult, error) {
	result := TrendResult{Timeframe: config.TimeframeKey(days)}
	logger := s.logger.With("timeframe", result.Timeframe)

	cutoff := s.now().AddDate(0, 0, -days)
	articles, err := s.store.ArticlesSince(ctx, cutoff)
	if err != nil {
		return result, err
	}
	result.ArticleCount = len(articles)

	if len(articles) == 0 {
		result.SkipReason = "no articles"
		logger.Info("no articles in window, skipping trend summary")
		return result, nil
	}
	if days <= minTrendDays {
		result.SkipReason = "window too short"
		logger.Info("trend summary not generated for short windows", "days", days)
		return result, nil
	}

	start := time.Now()
	text, err := s.model.Chat(ctx, ChatRequest{
		Messages:       []Message{{Role: "user", Content: s.trendPrompt(articles)}},
		ResponseFormat: JSONMode,
	})
	metrics.RecordLLM("trends", err, time.Since(start).Seconds())
	if err != nil {
		logger.Error("trend summary failed", "error", err)
		return result, fmt.Errorf("trend summary %s: %w", result.Timeframe, err)
	}

	// 模型没有返回合法JSON时仍然保存原文
	if _, verr := ParseTrendDocument(text); verr != nil {
		logger.Warn("llm did not return valid trend json, storing raw text", "error", verr)
	} else {
		result.ValidJSON = true
	}

	err = s.store.ReplaceTrendSummary(ctx, &model.TrendSummary{
		Timeframe:    result.Timeframe,
		SummaryText:  text,
		ArticleCount: len(articles),
		GeneratedAt:  s.now().UTC(),
	})
	if err != nil {
		return result, err
	}
	result.Stored = true

	logger.Info("trend summary stored", "articles", len(articles), "valid_json", result.ValidJSON)
	return result, nil
}

// trendPrompt 最多列出TrendArticleLimit篇最新文章
func (s *Summarizer) trendPrompt(articles []model.Article) string {
	limit := s.cfg.TrendArticleLimit
	if limit <= 0 || limit > len(articles) {
		limit = len(articles)
	}

	var b strings.Builder
	b.WriteString(s.prompts.Trends)
	b.WriteString("\n\nArticles:\n")
	for _, a := range articles[:limit] {
		fmt.Fprintf(&b, "[%d] %s\n", a.ID, a.Title)
	}
	return b.String()
}

// ParseTrendDocument 校验模型输出是否为趋势JSON
func ParseTrendDocument(text string) (*model.TrendDocument, error) {
	var doc model.TrendDocument
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
