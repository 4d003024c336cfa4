package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"ai-pulse/config"
	"ai-pulse/internal/dates"
	"ai-pulse/internal/model"
	"github.com/PuerkitoBio/goquery"
)

// 默认排除的非文章路径(法务/招聘/公司信息/政策/条款)
var defaultExcludedPaths = []string{"/legal/", "/careers", "/company", "policy", "terms"}

// 列表页自身的标题, 不是文章
var defaultPlaceholderTitles = []string{"Anthropic news"}

// 卡片式和列表式两种条目
const (
	gridItemSelector = `a[class*="gridItem"]`
	listItemSelector = `a[class*="listItem"]`
)

// HTMLAdapter 没有feed的新闻页, 按class名启发式解析
type HTMLAdapter struct {
	name         string
	endpoint     string
	fetcher      *Fetcher
	dates        *dates.Normalizer
	logger       *slog.Logger
	excluded     []string
	placeholders []string
	longestSpan  bool
}

// NewHTMLAdapter 支持的options: longest_span ("false"关闭最长span兜底), placeholders, exclude (逗号分隔)
func NewHTMLAdapter(cfg config.SourceConfig, deps Deps) *HTMLAdapter {
	a := &HTMLAdapter{
		name:         cfg.Name,
		endpoint:     cfg.Endpoint,
		fetcher:      deps.Fetcher,
		dates:        deps.Dates,
		logger:       deps.Logger.With("source", cfg.Name, "kind", config.KindHTML),
		excluded:     defaultExcludedPaths,
		placeholders: defaultPlaceholderTitles,
		longestSpan:  true,
	}
	if v, ok := cfg.Options["longest_span"]; ok && strings.EqualFold(strings.TrimSpace(v), "false") {
		a.longestSpan = false
	}
	if v, ok := cfg.Options["placeholders"]; ok {
		a.placeholders = splitList(v)
	}
	if v, ok := cfg.Options["exclude"]; ok {
		a.excluded = splitList(v)
	}
	return a
}

func (a *HTMLAdapter) Name() string { return a.name }

func (a *HTMLAdapter) Kind() string { return config.KindHTML }

// Fetch 抓取页面; 页面不可用时只影响本源
func (a *HTMLAdapter) Fetch(ctx context.Context) (Batch, error) {
	base, err := url.Parse(a.endpoint)
	if err != nil {
		return Batch{}, fmt.Errorf("invalid endpoint %s: %w", a.endpoint, err)
	}

	body, err := a.fetcher.Get(ctx, a.endpoint)
	if err != nil {
		return Batch{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Batch{}, fmt.Errorf("parse document %s: %w", a.endpoint, err)
	}

	return a.Extract(doc, base), nil
}

// Extract 从文档中提取文章, 单个节点失败只跳过该节点
func (a *HTMLAdapter) Extract(doc *goquery.Document, base *url.URL) Batch {
	var batch Batch

	items := doc.Find(gridItemSelector).AddSelection(doc.Find(listItemSelector))
	items.Each(func(i int, item *goquery.Selection) {
		article, reason := a.parseItem(item, base)
		if reason != "" {
			ref, _ := item.Attr("href")
			if ref == "" {
				ref = fmt.Sprintf("node[%d]", i)
			}
			batch.skip(ref, reason)
			return
		}
		batch.Candidates = append(batch.Candidates, article)
	})

	a.logger.Debug("html extraction done", "nodes", items.Length(),
		"candidates", len(batch.Candidates), "skipped", len(batch.Skipped))
	return batch
}

func (a *HTMLAdapter) parseItem(item *goquery.Selection, base *url.URL) (model.Article, string) {
	href, _ := item.Attr("href")
	href = strings.TrimSpace(href)
	if href == "" {
		return model.Article{}, ReasonMissingLink
	}

	ref, err := url.Parse(href)
	if err != nil {
		return model.Article{}, ReasonInvalidLink
	}
	link := base.ResolveReference(ref).String()

	if a.isExcluded(link) {
		return model.Article{}, ReasonExcludedPath
	}

	title := a.extractTitle(item)
	if title == "" {
		return model.Article{}, ReasonMissingTitle
	}
	if a.isPlaceholder(title) {
		return model.Article{}, ReasonPlaceholder
	}

	return model.Article{
		URL:         link,
		Title:       title,
		Content:     "",
		PublishedAt: a.extractDate(item),
		SourceType:  model.SourceTypeBlog,
		SourceName:  a.name,
	}, ""
}

// extractTitle 依次尝试: h3/h4 -> class含title的span -> 最长的span
func (a *HTMLAdapter) extractTitle(item *goquery.Selection) string {
	if h := item.Find("h3").First(); h.Length() > 0 {
		return cleanText(h.Text())
	}
	if h := item.Find("h4").First(); h.Length() > 0 {
		return cleanText(h.Text())
	}

	spans := item.Find("span")
	var titled *goquery.Selection
	spans.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		if strings.Contains(strings.ToLower(class), "title") {
			titled = s
			return false
		}
		return true
	})
	if titled != nil {
		return cleanText(titled.Text())
	}

	if !a.longestSpan || spans.Length() == 0 {
		return ""
	}

	// 日期和分类标签通常较短, 标题通常最长
	longest := ""
	spans.Each(func(_ int, s *goquery.Selection) {
		if text := cleanText(s.Text()); len(text) > len(longest) {
			longest = text
		}
	})
	return longest
}

func (a *HTMLAdapter) extractDate(item *goquery.Selection) time.Time {
	tag := item.Find("time").First()
	if tag.Length() == 0 {
		return a.dates.Now()
	}
	if attr, ok := tag.Attr("datetime"); ok {
		if t, ok := dates.Parse(attr); ok {
			return t
		}
	}
	return a.dates.ParseOr(tag.Text())
}

func (a *HTMLAdapter) isExcluded(link string) bool {
	lower := strings.ToLower(link)
	for _, pattern := range a.excluded {
		if pattern != "" && strings.Contains(lower, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

func (a *HTMLAdapter) isPlaceholder(title string) bool {
	for _, p := range a.placeholders {
		if strings.EqualFold(title, p) {
			return true
		}
	}
	return false
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
