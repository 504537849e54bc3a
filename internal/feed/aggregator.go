package feed

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/vanshika-blip/pulse-backend/internal/model"
)

// FetchMetrics はフェッチ結果のメトリクス記録インターフェース。
type FetchMetrics interface {
	RecordFetchSuccess(platform string)
	RecordFetchFailure(platform string)
	RecordFetchLatency(duration time.Duration)
}

// Aggregator は設定された全フィードソースの並列フェッチと正規化を行う。
// N個のソースに対してN個の独立したフェッチをsemaphoreパターンの並列制御下で発行し、
// 1ソースの失敗（ネットワークエラー、パース不能）はログに記録して0件の寄与として扱う。
// 失敗したソースが他のソースのフェッチや集約全体を中断させることはない。
type Aggregator struct {
	sources        []Source
	fetcher        FeedFetcher
	detector       *Detector
	normalizer     *Normalizer
	metrics        FetchMetrics
	logger         *slog.Logger
	maxConcurrency int
}

// NewAggregator はAggregatorの新しいインスタンスを生成する。
// detectorはnil可（nilの場合はHTMLページへの自動検出フォールバックを行わない）。
// maxConcurrencyが0以下の場合はデフォルト値10を使用する。
func NewAggregator(
	sources []Source,
	fetcher FeedFetcher,
	detector *Detector,
	normalizer *Normalizer,
	metrics FetchMetrics,
	logger *slog.Logger,
	maxConcurrency int,
) *Aggregator {
	if maxConcurrency <= 0 {
		maxConcurrency = 10
	}
	return &Aggregator{
		sources:        sources,
		fetcher:        fetcher,
		detector:       detector,
		normalizer:     normalizer,
		metrics:        metrics,
		logger:         logger,
		maxConcurrency: maxConcurrency,
	}
}

// SourceCount は設定されているフィードソース数を返す。
func (a *Aggregator) SourceCount() int {
	return len(a.sources)
}

// FetchAll は全ソースを並列にフェッチし、正規化済みのPostをフラットにまとめて返す。
// 戻り値はtimestamp降順（新しい順）でソートされる。
// 個々のソースの失敗は集約全体のエラーにならないため、この操作自体は失敗しない。
func (a *Aggregator) FetchAll(ctx context.Context) []model.Post {
	start := time.Now()

	sem := make(chan struct{}, a.maxConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var posts []model.Post

	for _, src := range a.sources {
		wg.Add(1)
		sem <- struct{}{} // semaphore取得（ブロック）

		go func(s Source) {
			defer wg.Done()
			defer func() { <-sem }() // semaphore解放

			fetched, err := a.fetchSource(ctx, s)
			if err != nil {
				// 失敗したソースは0件の寄与として扱い、他のソースには影響させない
				a.logger.Error("フィードのフェッチに失敗しました",
					slog.String("platform", string(s.Platform)),
					slog.String("feed_url", s.URL),
					slog.String("error", err.Error()),
				)
				a.metrics.RecordFetchFailure(string(s.Platform))
				return
			}

			a.metrics.RecordFetchSuccess(string(s.Platform))

			mu.Lock()
			posts = append(posts, fetched...)
			mu.Unlock()
		}(src)
	}

	wg.Wait()

	duration := time.Since(start)
	a.metrics.RecordFetchLatency(duration)

	sort.Slice(posts, func(i, j int) bool {
		return posts[i].Timestamp.After(posts[j].Timestamp)
	})

	a.logger.Info("フィード集約が完了しました",
		slog.Int("source_count", len(a.sources)),
		slog.Int("post_count", len(posts)),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return posts
}

// fetchSource は1ソースをフェッチして正規化済みPostの一覧を返す。
// ソースURLがフィードとしてパースできない場合、検出器が設定されていれば
// HTMLページからのフィード自動検出を1回だけ試みる。
func (a *Aggregator) fetchSource(ctx context.Context, src Source) ([]model.Post, error) {
	parsed, err := a.fetcher.FetchFeed(ctx, src.URL)
	if err != nil {
		if a.detector == nil {
			return nil, err
		}

		discovered, derr := a.detector.Discover(ctx, src.URL)
		if derr != nil {
			return nil, err
		}

		a.logger.Info("フィードURLを自動検出しました",
			slog.String("source_url", src.URL),
			slog.String("feed_url", discovered),
		)

		parsed, err = a.fetcher.FetchFeed(ctx, discovered)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	posts := make([]model.Post, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		posts = append(posts, a.normalizer.Normalize(item, parsed.Title, src.Platform, now))
	}

	return posts, nil
}
