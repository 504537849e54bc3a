// Package refresh はフィードの定期取り込みのバックグラウンド処理を提供する。
package refresh

import (
	"context"
	"log/slog"
	"time"
)

// Ingester はフィード取り込みの実行インターフェース。
type Ingester interface {
	// Ingest は全フィードソースをフェッチし、新規投稿をストアに保存して件数を返す。
	Ingest(ctx context.Context) (int, error)
}

// Scheduler はフィード取り込みの定期実行を行う。
// 並列制御はAggregator側のsemaphoreが担うため、ここではティッカーの管理のみを行う。
type Scheduler struct {
	ingester Ingester
	logger   *slog.Logger
}

// NewScheduler はSchedulerの新しいインスタンスを生成する。
func NewScheduler(ingester Ingester, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		ingester: ingester,
		logger:   logger,
	}
}

// Start は指定間隔のティッカーでスケジューラを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("取り込みスケジューラを開始しました",
		slog.Duration("interval", interval),
	)

	// 起動直後に1回実行
	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("取り込みスケジューラを停止しました")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce は取り込みサイクルを1回実行する。
// 失敗してもスケジューラ自体は停止せず、次のティックで再試行する。
func (s *Scheduler) RunOnce(ctx context.Context) {
	start := time.Now()

	inserted, err := s.ingester.Ingest(ctx)
	if err != nil {
		s.logger.Error("取り込みサイクルの実行に失敗しました",
			slog.String("error", err.Error()),
		)
		return
	}

	s.logger.Info("取り込みサイクルが完了しました",
		slog.Int("inserted", inserted),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
}
