package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-pulse/config"
	"ai-pulse/internal/model"
	"ai-pulse/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdapter struct {
	name    string
	kind    string
	batch   source.Batch
	err     error
	fetched int
}

func (f *fakeAdapter) Name() string { return f.name }
func (f *fakeAdapter) Kind() string { return f.kind }
func (f *fakeAdapter) Fetch(context.Context) (source.Batch, error) {
	f.fetched++
	return f.batch, f.err
}

func candidate(url, title, src string) model.Article {
	return model.Article{URL: url, Title: title, SourceName: src, SourceType: model.SourceTypeBlog, PublishedAt: time.Now()}
}

func TestCoordinatorIsolatesFailingSource(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	broken := &fakeAdapter{name: "Broken", kind: config.KindFeed, err: errors.New("connection refused")}
	healthy := &fakeAdapter{name: "Healthy", kind: config.KindFeed, batch: source.Batch{
		Candidates: []model.Article{
			candidate("https://h/1", "one", "Healthy"),
			candidate("https://h/2", "two", "Healthy"),
		},
		Skipped: []source.Skip{{Ref: "item[2]", Reason: source.ReasonMissingTitle}},
	}}

	report, err := NewCoordinator(st, []source.Adapter{broken, healthy}, discardLogger()).Run(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Inserted)
	require.Len(t, report.Sources, 2)
	assert.Equal(t, "connection refused", report.Sources[0].Err)
	assert.Equal(t, 2, report.Sources[1].Inserted)
	assert.Equal(t, 1, report.Sources[1].Skipped)

	all, err := st.AllArticles(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// failingWriter 对指定url返回错误, 其余写入真实store
type failingWriter struct {
	ArticleWriter
	failURL string
}

func (w failingWriter) InsertArticle(ctx context.Context, a *model.Article) (bool, error) {
	if a.URL == w.failURL {
		return false, errors.New("database is locked")
	}
	return w.ArticleWriter.InsertArticle(ctx, a)
}

func TestCoordinatorIsolatesFailingInsert(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first := &fakeAdapter{name: "First", kind: config.KindFeed, batch: source.Batch{Candidates: []model.Article{
		candidate("https://f/1", "one", "First"),
		candidate("https://f/2", "two", "First"),
		candidate("https://f/3", "three", "First"),
	}}}
	second := &fakeAdapter{name: "Second", kind: config.KindFeed, batch: source.Batch{Candidates: []model.Article{
		candidate("https://s/1", "later", "Second"),
	}}}

	writer := failingWriter{ArticleWriter: st, failURL: "https://f/2"}
	report, err := NewCoordinator(writer, []source.Adapter{first, second}, discardLogger()).Run(ctx)
	require.NoError(t, err)

	require.Len(t, report.Sources, 2)
	assert.Equal(t, 1, report.Sources[0].Failed)
	assert.Equal(t, 2, report.Sources[0].Inserted)
	assert.Empty(t, report.Sources[0].Err)
	assert.Equal(t, 1, second.fetched)
	assert.Equal(t, 1, report.Sources[1].Inserted)
	assert.Equal(t, 3, report.Inserted)

	all, err := st.AllArticles(ctx)
	require.NoError(t, err)
	urls := make([]string, 0, len(all))
	for _, a := range all {
		urls = append(urls, a.URL)
	}
	assert.ElementsMatch(t, []string{"https://f/1", "https://f/3", "https://s/1"}, urls)
}

func TestCoordinatorCountsOnlyNewArticles(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	a := &fakeAdapter{name: "A", kind: config.KindFeed, batch: source.Batch{Candidates: []model.Article{
		candidate("https://a/1", "one", "A"),
		candidate("https://a/1", "one again", "A"),
	}}}
	c := NewCoordinator(st, []source.Adapter{a}, discardLogger())

	first, err := c.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Inserted)

	second, err := c.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Inserted)
	assert.NotEqual(t, first.RunID, second.RunID)

	all, err := st.AllArticles(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCoordinatorPrefersHTMLSourceOverFeed(t *testing.T) {
	st := newTestStore(t)

	feed := &fakeAdapter{name: "Anthropic", kind: config.KindFeed, batch: source.Batch{
		Candidates: []model.Article{candidate("https://feed/1", "from feed", "Anthropic")},
	}}
	page := &fakeAdapter{name: "Anthropic", kind: config.KindHTML, batch: source.Batch{
		Candidates: []model.Article{candidate("https://www.anthropic.com/news/x", "from page", "Anthropic")},
	}}
	other := &fakeAdapter{name: "OpenAI", kind: config.KindFeed}

	report, err := NewCoordinator(st, []source.Adapter{feed, other, page}, discardLogger()).Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, feed.fetched)
	assert.Equal(t, 1, other.fetched)
	assert.Equal(t, 1, page.fetched)
	assert.True(t, report.Sources[0].Superseded)
	assert.Equal(t, 1, report.Inserted)
}

func TestCoordinatorStopsOnCancelledContext(t *testing.T) {
	st := newTestStore(t)
	a := &fakeAdapter{name: "A", kind: config.KindFeed}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCoordinator(st, []source.Adapter{a}, discardLogger()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, a.fetched)
}
