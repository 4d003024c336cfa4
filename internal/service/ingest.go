package service

import (
	"context"
	"log/slog"
	"time"

	"ai-pulse/config"
	"ai-pulse/internal/metrics"
	"ai-pulse/internal/model"
	"ai-pulse/internal/source"
	"github.com/google/uuid"
)

// SourceReport 单个源的抓取结果
type SourceReport struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Candidates int    `json:"candidates"`
	Inserted   int    `json:"inserted"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
	Superseded bool   `json:"superseded,omitempty"` // 同名HTML源存在时feed源不抓取
	Err        string `json:"error,omitempty"`
}

// Report 一次抓取的汇总
type Report struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Inserted   int            `json:"inserted"`
	Sources    []SourceReport `json:"sources"`
}

// ArticleWriter 入库接口, 已存在的url返回false
type ArticleWriter interface {
	InsertArticle(ctx context.Context, article *model.Article) (bool, error)
}

// Coordinator 依次抓取所有源并入库
type Coordinator struct {
	store    ArticleWriter
	adapters []source.Adapter
	logger   *slog.Logger
}

func NewCoordinator(st ArticleWriter, adapters []source.Adapter, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		store:    st,
		adapters: adapters,
		logger:   logger.With("component", "ingest"),
	}
}

// Run 抓取全部源; 单个源失败只记录, 不中断, 只有ctx取消时返回错误
func (c *Coordinator) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: uuid.NewString(), StartedAt: time.Now().UTC()}
	logger := c.logger.With("run_id", report.RunID)
	defer func(start time.Time) {
		metrics.IngestDuration.Observe(time.Since(start).Seconds())
	}(time.Now())

	htmlSources := make(map[string]bool)
	for _, a := range c.adapters {
		if a.Kind() == config.KindHTML {
			htmlSources[a.Name()] = true
		}
	}

	for _, adapter := range c.adapters {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = time.Now().UTC()
			return report, err
		}

		sr := SourceReport{Name: adapter.Name(), Kind: adapter.Kind()}
		if adapter.Kind() == config.KindFeed && htmlSources[adapter.Name()] {
			sr.Superseded = true
			logger.Info("feed source superseded by html source", "source", sr.Name)
			report.Sources = append(report.Sources, sr)
			continue
		}

		c.ingestSource(ctx, logger, adapter, &sr)
		report.Inserted += sr.Inserted
		report.Sources = append(report.Sources, sr)
	}

	report.FinishedAt = time.Now().UTC()
	logger.Info("ingestion finished", "sources", len(report.Sources), "inserted", report.Inserted,
		"elapsed", report.FinishedAt.Sub(report.StartedAt).String())
	return report, nil
}

func (c *Coordinator) ingestSource(ctx context.Context, logger *slog.Logger, adapter source.Adapter, sr *SourceReport) {
	logger = logger.With("source", sr.Name, "kind", sr.Kind)

	batch, err := adapter.Fetch(ctx)
	metrics.RecordFetch(sr.Name, sr.Kind, err)
	if err != nil {
		sr.Err = err.Error()
		logger.Error("fetch source failed", "error", err)
		return
	}

	sr.Candidates = len(batch.Candidates)
	sr.Skipped = len(batch.Skipped)
	for _, skip := range batch.Skipped {
		metrics.RecordSkipped(sr.Name, skip.Reason)
		logger.Debug("entry skipped", "ref", skip.Ref, "reason", skip.Reason)
	}

	for i := range batch.Candidates {
		article := batch.Candidates[i]
		inserted, err := c.store.InsertArticle(ctx, &article)
		if err != nil {
			sr.Failed++
			logger.Warn("store article failed", "url", article.URL, "error", err)
			continue
		}
		if inserted {
			sr.Inserted++
		}
	}
	metrics.RecordInserted(sr.Name, sr.Inserted)

	logger.Info("source ingested", "candidates", sr.Candidates, "inserted", sr.Inserted,
		"skipped", sr.Skipped, "failed", sr.Failed)
}
