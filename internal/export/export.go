// Package export writes a static snapshot of articles and trend summaries for the frontend.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ai-pulse/internal/model"
	"ai-pulse/internal/store"
)

// SnapshotTimeframes 静态文件里包含的趋势窗口
var SnapshotTimeframes = []string{"30d", "1y"}

// Snapshot 前端直接读取的数据文件
type Snapshot struct {
	GeneratedAt time.Time                    `json:"generated_at"`
	Articles    []model.ArticleView          `json:"articles"`
	Summaries   map[string]model.SummaryView `json:"summaries"`
}

// Uploader 把导出结果推到远端, 例如S3
type Uploader interface {
	Upload(ctx context.Context, body []byte) error
}

type Exporter struct {
	store    *store.Store
	uploader Uploader
	now      func() time.Time
	logger   *slog.Logger
}

// NewExporter uploader可以为nil
func NewExporter(st *store.Store, uploader Uploader, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{store: st, uploader: uploader, now: time.Now, logger: logger.With("component", "export")}
}

// Export 读取全部文章和最新的趋势总结
func (e *Exporter) Export(ctx context.Context) (*Snapshot, error) {
	articles, err := e.store.AllArticles(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		GeneratedAt: e.now().UTC(),
		Articles:    model.Views(articles),
		Summaries:   make(map[string]model.SummaryView),
	}

	for _, tf := range SnapshotTimeframes {
		summary, err := e.store.LatestTrendSummary(ctx, tf)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		view := summary.View()
		view.Timeframe = ""
		snap.Summaries[tf] = view
	}
	return snap, nil
}

// WriteFile 导出并写入path, 配置了uploader时同时上传
func (e *Exporter) WriteFile(ctx context.Context, path string) (*Snapshot, error) {
	snap, err := e.Export(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create export dir: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write snapshot %s: %w", path, err)
	}
	e.logger.Info("snapshot written", "path", path, "articles", len(snap.Articles), "summaries", len(snap.Summaries))

	if e.uploader != nil {
		if err := e.uploader.Upload(ctx, buf.Bytes()); err != nil {
			return snap, fmt.Errorf("upload snapshot: %w", err)
		}
		e.logger.Info("snapshot uploaded")
	}
	return snap, nil
}
