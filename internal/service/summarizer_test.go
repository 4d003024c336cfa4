package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ai-pulse/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeArticlesFillsPendingArticle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.InsertArticle(ctx, &model.Article{
		URL:         "http://example.com/1",
		Title:       "Test Title",
		Content:     "Test Content",
		PublishedAt: time.Now(),
		SourceType:  model.SourceTypeBlog,
		SourceName:  "Test Source",
	})
	require.NoError(t, err)

	m := replyWith("This is a test summary.")
	count, err := newTestSummarizer(st, m).SummarizeArticles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	all, err := st.AllArticles(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].Summary)
	assert.Equal(t, "This is a test summary.", *all[0].Summary)

	// 已有摘要的文章不会再被处理
	count, err = newTestSummarizer(st, m).SummarizeArticles(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, 1, m.calls())
}

func TestSummarizeArticlesIsolatesFailures(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	for i, title := range []string{"fails", "works", "blank"} {
		_, err := st.InsertArticle(ctx, &model.Article{
			URL:         "https://example.com/" + title,
			Title:       title,
			PublishedAt: now.Add(-time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	m := &fakeModel{reply: func(req ChatRequest) (string, error) {
		prompt := req.Messages[0].Content
		switch {
		case strings.Contains(prompt, "Title: fails"):
			return "", errors.New("model down")
		case strings.Contains(prompt, "Title: blank"):
			return "   \n", nil
		default:
			return "  A sentence.\n", nil
		}
	}}

	count, err := newTestSummarizer(st, m).SummarizeArticles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 3, m.calls())

	pending, err := st.PendingSummaries(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	all, err := st.AllArticles(ctx)
	require.NoError(t, err)
	for _, a := range all {
		if a.Title == "works" {
			require.NotNil(t, a.Summary)
			assert.Equal(t, "A sentence.", *a.Summary)
		}
	}
}

func TestArticlePrompt(t *testing.T) {
	s := newTestSummarizer(nil, replyWith(""))
	s.cfg.ContentLimit = 10

	prompt := s.articlePrompt(&model.Article{Title: "Launch", Content: "<p>Héllo &amp; <b>wörld</b> and more text</p>"})
	assert.True(t, strings.HasPrefix(prompt, s.prompts.ArticleSummary+"\n\nTitle: Launch\nContent: "))
	assert.True(t, strings.HasSuffix(prompt, "Content: Héllo & wö"), prompt)

	prompt = s.articlePrompt(&model.Article{Title: "Title only"})
	assert.True(t, strings.HasSuffix(prompt, "Title: Title only\nContent: Title only"), prompt)
}

func TestSummarizeArticlesStopsOnCancel(t *testing.T) {
	st := newTestStore(t)
	_, err := st.InsertArticle(context.Background(), &model.Article{URL: "https://x/1", Title: "x", PublishedAt: time.Now()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := replyWith("never")
	_, err = newTestSummarizer(st, m).SummarizeArticles(ctx)
	assert.Error(t, err)
	assert.Zero(t, m.calls())
}
