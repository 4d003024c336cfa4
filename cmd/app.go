package cmd

import (
	"context"
	"fmt"

	"ai-pulse/internal/dates"
	"ai-pulse/internal/export"
	"ai-pulse/internal/scheduler"
	"ai-pulse/internal/service"
	"ai-pulse/internal/source"
	"ai-pulse/internal/store"
)

// app 各命令共用的组件
type app struct {
	store      *store.Store
	llm        *service.LLMClient
	ingest     *service.Coordinator
	summarizer *service.Summarizer
	scheduler  *scheduler.Scheduler
}

func newApp() (*app, error) {
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	adapters, err := source.NewRegistry().BuildAll(cfg.Sources, source.Deps{
		Fetcher: source.NewFetcher(cfg.Fetch),
		Dates:   dates.New(),
		Logger:  logger,
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	llm := service.NewLLMClient(cfg.LLM, logger)
	ingest := service.NewCoordinator(st, adapters, logger)
	summarizer := service.NewSummarizer(st, llm, cfg.Summarizer, cfg.LLM.Prompts, logger)

	return &app{
		store:      st,
		llm:        llm,
		ingest:     ingest,
		summarizer: summarizer,
		scheduler:  scheduler.NewScheduler(ingest, summarizer, cfg.Cron, logger),
	}, nil
}

// exporter 配置了bucket时附带S3上传
func (a *app) exporter(ctx context.Context) (*export.Exporter, error) {
	var uploader export.Uploader
	if cfg.Export.S3.Bucket != "" {
		u, err := export.NewS3Uploader(ctx, cfg.Export.S3)
		if err != nil {
			return nil, fmt.Errorf("s3 uploader: %w", err)
		}
		uploader = u
	}
	return export.NewExporter(a.store, uploader, logger), nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("close database", "error", err)
	}
}
