package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"ai-pulse/config"
	"ai-pulse/internal/store"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeModel 按顺序返回预设结果, 记录收到的请求
type fakeModel struct {
	mu       sync.Mutex
	reply    func(req ChatRequest) (string, error)
	requests []ChatRequest
}

func (f *fakeModel) Chat(_ context.Context, req ChatRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.reply(req)
}

func (f *fakeModel) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func replyWith(text string) *fakeModel {
	return &fakeModel{reply: func(ChatRequest) (string, error) { return text, nil }}
}

func newTestSummarizer(st *store.Store, m ChatModel) *Summarizer {
	cfg := config.Default()
	return NewSummarizer(st, m, cfg.Summarizer, cfg.LLM.Prompts, discardLogger())
}
