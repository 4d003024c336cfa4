package service

import (
	"context"
	"errors"
	"time"

	"ai-pulse/config"
	"ai-pulse/internal/metrics"
	"ai-pulse/internal/store"
)

// Schedule 提供各定时任务的下次运行时间
type Schedule interface {
	NextRuns() map[string]time.Time
}

// Pinger 检查模型服务是否可用
type Pinger interface {
	Ping(ctx context.Context) error
}

type StatusService struct {
	store    *store.Store
	schedule Schedule
	llm      Pinger
}

type SystemStatus struct {
	// 文章统计
	TotalArticles   int64               `json:"total_articles"`
	PendingArticles int64               `json:"pending_articles"`
	BySource        []store.SourceCount `json:"by_source"`

	// 每个时间窗口最近一次趋势总结的时间
	Summaries map[string]*time.Time `json:"summaries"`

	// 定时任务信息
	NextRuns map[string]time.Time `json:"next_runs,omitempty"`

	LLM string `json:"llm,omitempty"`
}

// NewStatusService schedule和llm可以为nil
func NewStatusService(st *store.Store, schedule Schedule, llm Pinger) *StatusService {
	return &StatusService{store: st, schedule: schedule, llm: llm}
}

// GetSystemStatus 获取系统状态
func (s *StatusService) GetSystemStatus(ctx context.Context) (*SystemStatus, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	metrics.PendingArticles.Set(float64(stats.PendingArticles))

	status := &SystemStatus{
		TotalArticles:   stats.TotalArticles,
		PendingArticles: stats.PendingArticles,
		BySource:        stats.BySource,
		Summaries:       make(map[string]*time.Time),
	}

	for _, tf := range config.TimeframeKeys() {
		latest, err := s.store.LatestTrendSummary(ctx, tf)
		switch {
		case errors.Is(err, store.ErrNotFound):
			status.Summaries[tf] = nil
		case err != nil:
			return nil, err
		default:
			generated := latest.GeneratedAt
			status.Summaries[tf] = &generated
		}
	}

	if s.schedule != nil {
		status.NextRuns = s.schedule.NextRuns()
	}

	if s.llm != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := s.llm.Ping(pingCtx); err != nil {
			status.LLM = "unavailable: " + err.Error()
		} else {
			status.LLM = "ok"
		}
	}

	return status, nil
}
