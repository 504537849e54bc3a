// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 集約・取り込み・生成の各サービスから利用する。
type MetricsCollector interface {
	RecordFetchSuccess(platform string)
	RecordFetchFailure(platform string)
	RecordFetchLatency(duration time.Duration)
	RecordPostsInserted(count int)
	RecordGenerateSuccess()
	RecordGenerateFailure(reason string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	fetchSuccess  *prometheus.CounterVec
	fetchFail     *prometheus.CounterVec
	fetchLatency  prometheus.Histogram
	postsInserted prometheus.Counter
	generateOK    prometheus.Counter
	generateFail  *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetchSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_fetch_success_total",
			Help: "プラットフォーム別のフィードフェッチ成功の合計数",
		}, []string{"platform"}),
		fetchFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_fetch_fail_total",
			Help: "プラットフォーム別のフィードフェッチ失敗の合計数",
		}, []string{"platform"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pulse_aggregate_latency_seconds",
			Help:    "フィード集約サイクルのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		postsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pulse_posts_inserted_total",
			Help: "新規に挿入された投稿の合計数",
		}),
		generateOK: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pulse_generate_success_total",
			Help: "コメント生成成功の合計数",
		}),
		generateFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_generate_fail_total",
			Help: "原因別（backend/parse）のコメント生成失敗の合計数",
		}, []string{"reason"}),
	}

	reg.MustRegister(
		c.fetchSuccess,
		c.fetchFail,
		c.fetchLatency,
		c.postsInserted,
		c.generateOK,
		c.generateFail,
	)

	return c
}

// RecordFetchSuccess はフェッチ成功を記録する。
func (c *Collector) RecordFetchSuccess(platform string) {
	c.fetchSuccess.WithLabelValues(platform).Inc()
}

// RecordFetchFailure はフェッチ失敗を記録する。
func (c *Collector) RecordFetchFailure(platform string) {
	c.fetchFail.WithLabelValues(platform).Inc()
}

// RecordFetchLatency は集約サイクルのレイテンシを記録する。
func (c *Collector) RecordFetchLatency(duration time.Duration) {
	c.fetchLatency.Observe(duration.Seconds())
}

// RecordPostsInserted は挿入された投稿数を記録する。
func (c *Collector) RecordPostsInserted(count int) {
	c.postsInserted.Add(float64(count))
}

// RecordGenerateSuccess はコメント生成成功を記録する。
func (c *Collector) RecordGenerateSuccess() {
	c.generateOK.Inc()
}

// RecordGenerateFailure はコメント生成失敗を原因ラベル付きで記録する。
func (c *Collector) RecordGenerateFailure(reason string) {
	c.generateFail.WithLabelValues(reason).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
