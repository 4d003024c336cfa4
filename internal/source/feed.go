package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"ai-pulse/config"
	"ai-pulse/internal/dates"
	"ai-pulse/internal/model"
	"github.com/mmcdole/gofeed"
)

// FeedAdapter RSS/Atom源
type FeedAdapter struct {
	name     string
	endpoint string
	fetcher  *Fetcher
	parser   *gofeed.Parser
	dates    *dates.Normalizer
	logger   *slog.Logger
}

func NewFeedAdapter(cfg config.SourceConfig, deps Deps) *FeedAdapter {
	parser := gofeed.NewParser()
	// 回退路径走gofeed自己的请求, 使用其默认UA
	parser.Client = &http.Client{Timeout: deps.Fetcher.Timeout()}

	return &FeedAdapter{
		name:     cfg.Name,
		endpoint: cfg.Endpoint,
		fetcher:  deps.Fetcher,
		parser:   parser,
		dates:    deps.Dates,
		logger:   deps.Logger.With("source", cfg.Name, "kind", config.KindFeed),
	}
}

func (a *FeedAdapter) Name() string { return a.name }

func (a *FeedAdapter) Kind() string { return config.KindFeed }

// Fetch 抓取并解析feed
func (a *FeedAdapter) Fetch(ctx context.Context) (Batch, error) {
	feed, err := a.load(ctx)
	if err != nil {
		return Batch{}, err
	}

	var batch Batch
	for i, item := range feed.Items {
		if item == nil {
			continue
		}
		article, reason := a.toArticle(item)
		if reason != "" {
			batch.skip(fmt.Sprintf("item[%d]", i), reason)
			continue
		}
		batch.Candidates = append(batch.Candidates, article)
	}
	return batch, nil
}

func (a *FeedAdapter) load(ctx context.Context) (*gofeed.Feed, error) {
	body, err := a.fetcher.Get(ctx, a.endpoint)
	if err != nil {
		a.logger.Warn("fetch failed, falling back to feed parser", "endpoint", a.endpoint, "error", err)
		feed, perr := a.parser.ParseURLWithContext(a.endpoint, ctx)
		return a.checkParsed(feed, perr)
	}

	feed, err := a.parser.Parse(bytes.NewReader(body))
	return a.checkParsed(feed, err)
}

// 解析有错但拿到了部分内容时, 记录警告并继续使用
func (a *FeedAdapter) checkParsed(feed *gofeed.Feed, err error) (*gofeed.Feed, error) {
	if err != nil && feed == nil {
		return nil, fmt.Errorf("parse feed %s: %w", a.endpoint, err)
	}
	if err != nil {
		a.logger.Warn("feed has issues", "endpoint", a.endpoint, "error", err)
	}
	return feed, nil
}

func (a *FeedAdapter) toArticle(item *gofeed.Item) (model.Article, string) {
	link := strings.TrimSpace(item.Link)
	if link == "" && len(item.Links) > 0 {
		link = strings.TrimSpace(item.Links[0])
	}
	if link == "" {
		return model.Article{}, ReasonMissingLink
	}

	title := strings.TrimSpace(item.Title)
	if title == "" {
		return model.Article{}, ReasonMissingTitle
	}

	// 有的feed正文在content里, 有的只有summary
	content := item.Content
	if content == "" {
		content = item.Description
	}

	return model.Article{
		URL:     link,
		Title:   title,
		Content: content,
		PublishedAt: a.dates.Resolve(dates.Input{
			Published: item.PublishedParsed,
			Updated:   item.UpdatedParsed,
			Text:      []string{item.Published, item.Updated},
		}),
		SourceType: model.SourceTypeBlog,
		SourceName: a.name,
	}, ""
}
