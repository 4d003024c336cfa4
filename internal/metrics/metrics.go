// Package metrics provides Prometheus metrics for the aggregator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "aipulse"

var (
	// SourceFetchTotal 按源统计抓取次数, status为ok/error
	SourceFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fetch_total",
			Help:      "Total number of source fetches",
		},
		[]string{"source", "kind", "status"},
	)

	// ArticlesInsertedTotal 新入库的文章数
	ArticlesInsertedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_inserted_total",
			Help:      "Total number of newly stored articles",
		},
		[]string{"source"},
	)

	// ItemsSkippedTotal 被适配器跳过的条目
	ItemsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_skipped_total",
			Help:      "Total number of source items skipped during extraction",
		},
		[]string{"source", "reason"},
	)

	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Duration of a full ingestion run in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// LLMRequestTotal operation为article/trends
	LLMRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of language model requests",
		},
		[]string{"operation", "status"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Duration of language model requests in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"operation"},
	)

	// PendingArticles 最近一次统计时待摘要的文章数
	PendingArticles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_articles",
			Help:      "Number of articles without a summary",
		},
	)
)

// RecordFetch 记录一次源抓取
func RecordFetch(source, kind string, err error) {
	SourceFetchTotal.WithLabelValues(source, kind, statusOf(err)).Inc()
}

// RecordInserted 记录入库数
func RecordInserted(source string, n int) {
	if n > 0 {
		ArticlesInsertedTotal.WithLabelValues(source).Add(float64(n))
	}
}

func RecordSkipped(source, reason string) {
	ItemsSkippedTotal.WithLabelValues(source, reason).Inc()
}

// RecordLLM 记录一次模型调用
func RecordLLM(operation string, err error, seconds float64) {
	LLMRequestTotal.WithLabelValues(operation, statusOf(err)).Inc()
	LLMRequestDuration.WithLabelValues(operation).Observe(seconds)
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
