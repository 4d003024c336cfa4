package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ai-pulse/config"
	"ai-pulse/internal/service"
	"github.com/robfig/cron/v3"
)

// 任务名, 也是/status里next_runs的key
const (
	JobIngest    = "ingest"
	JobSummarize = "summarize"
	JobTrends    = "trends"
)

type Scheduler struct {
	cron       *cron.Cron
	ingest     *service.Coordinator
	summarizer *service.Summarizer
	config     config.CronConfig
	logger     *slog.Logger

	// 所有任务串行执行
	mu      sync.Mutex
	entries map[string]cron.EntryID

	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(ingest *service.Coordinator, summarizer *service.Summarizer, cfg config.CronConfig, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "cron")
	ctx, cancel := context.WithCancel(context.Background())
	cl := cronLogger{logger}
	return &Scheduler{
		cron:       cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		ingest:     ingest,
		summarizer: summarizer,
		config:     cfg,
		logger:     logger,
		entries:    make(map[string]cron.EntryID),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start 注册任务并启动; 表达式非法时返回错误
func (s *Scheduler) Start() error {
	jobs := []struct {
		name string
		spec string
		run  func(context.Context) error
	}{
		{JobIngest, s.config.Ingest, s.RunIngest},
		{JobSummarize, s.config.Summarize, s.RunSummarize},
		{JobTrends, s.config.Trends, s.RunTrends},
	}

	for _, job := range jobs {
		if job.spec == "" {
			continue
		}
		run, name := job.run, job.name
		id, err := s.cron.AddFunc(job.spec, func() {
			if err := run(s.ctx); err != nil {
				s.logger.Error("job failed", "job", name, "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("cron %s %q: %w", name, job.spec, err)
		}
		s.entries[name] = id
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "ingest", s.config.Ingest, "summarize", s.config.Summarize,
		"trends", s.config.Trends, "trend_days", s.config.TrendDays)
	return nil
}

// Stop 停止调度并取消正在运行的任务
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}

// NextRuns 各任务下次运行时间
func (s *Scheduler) NextRuns() map[string]time.Time {
	out := make(map[string]time.Time, len(s.entries))
	for name, id := range s.entries {
		out[name] = s.cron.Entry(id).Next
	}
	return out
}

// RunIngest 抓取所有源
func (s *Scheduler) RunIngest(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("running job", "job", JobIngest)
	_, err := s.ingest.Run(ctx)
	return err
}

// RunSummarize 生成单篇摘要
func (s *Scheduler) RunSummarize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("running job", "job", JobSummarize)
	_, err := s.summarizer.SummarizeArticles(ctx)
	return err
}

// RunTrends 对配置的每个天数做趋势总结, 某个窗口失败不影响其他窗口
func (s *Scheduler) RunTrends(ctx context.Context) error {
	return s.RunTrendsFor(ctx, s.config.TrendDays)
}

func (s *Scheduler) RunTrendsFor(ctx context.Context, days []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("running job", "job", JobTrends, "days", days)
	var errs []error
	for _, d := range days {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.summarizer.SummarizeTrends(ctx, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RunAll 依次执行抓取, 摘要, 趋势总结
func (s *Scheduler) RunAll(ctx context.Context) error {
	if err := s.RunIngest(ctx); err != nil {
		return err
	}
	if err := s.RunSummarize(ctx); err != nil {
		return err
	}
	return s.RunTrends(ctx)
}

// cronLogger 把cron的日志接到slog
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
