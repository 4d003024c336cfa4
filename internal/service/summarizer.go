package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"ai-pulse/config"
	"ai-pulse/internal/metrics"
	"ai-pulse/internal/model"
	"ai-pulse/internal/store"
	"github.com/microcosm-cc/bluemonday"
)

// Summarizer 单篇摘要和趋势总结
type Summarizer struct {
	store   *store.Store
	model   ChatModel
	cfg     config.SummarizerConfig
	prompts config.PromptConfig
	policy  *bluemonday.Policy
	now     func() time.Time
	logger  *slog.Logger
}

func NewSummarizer(st *store.Store, m ChatModel, cfg config.SummarizerConfig, prompts config.PromptConfig, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{
		store:   st,
		model:   m,
		cfg:     cfg,
		prompts: prompts,
		policy:  bluemonday.StrictPolicy(),
		now:     time.Now,
		logger:  logger.With("component", "summarizer"),
	}
}

// SummarizeArticles 批量生成摘要, 单篇失败不影响其他文章; 返回成功数
func (s *Summarizer) SummarizeArticles(ctx context.Context) (int, error) {
	articles, err := s.store.PendingSummaries(ctx, s.cfg.PrioritySource, s.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	if len(articles) == 0 {
		s.logger.Info("no articles to summarize")
		return 0, nil
	}

	var count int
	for i := range articles {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		article := &articles[i]
		if !article.NeedsSummary() {
			continue
		}
		if err := s.summarizeArticle(ctx, article); err != nil {
			s.logger.Error("summarize article failed", "article_id", article.ID, "source", article.SourceName, "error", err)
			continue
		}
		count++
	}

	s.logger.Info("article summaries done", "summarized", count, "pending", len(articles))
	return count, nil
}

func (s *Summarizer) summarizeArticle(ctx context.Context, article *model.Article) error {
	start := time.Now()
	text, err := s.model.Chat(ctx, ChatRequest{
		Messages: []Message{{Role: "user", Content: s.articlePrompt(article)}},
	})
	text = strings.TrimSpace(text)
	if err == nil && text == "" {
		err = errors.New("empty summary")
	}
	metrics.RecordLLM("article", err, time.Since(start).Seconds())
	if err != nil {
		return err
	}

	if err := s.store.SetSummary(ctx, article.ID, text); err != nil {
		return fmt.Errorf("save summary: %w", err)
	}
	s.logger.Debug("summarized article", "article_id", article.ID, "summary", truncateRunes(text, 50))
	return nil
}

// articlePrompt 指令 + 标题 + 正文片段; 正文为空时用标题代替
func (s *Summarizer) articlePrompt(article *model.Article) string {
	snippet := s.plainText(article.Content)
	if snippet == "" {
		snippet = article.Title
	}
	snippet = truncateRunes(snippet, s.cfg.ContentLimit)

	return fmt.Sprintf("%s\n\nTitle: %s\nContent: %s", s.prompts.ArticleSummary, article.Title, snippet)
}

// plainText 去掉HTML标签并合并空白
func (s *Summarizer) plainText(content string) string {
	if content == "" {
		return ""
	}
	text := html.UnescapeString(s.policy.Sanitize(content))
	return strings.Join(strings.Fields(text), " ")
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
