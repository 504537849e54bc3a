// Package post は投稿の取り込み・重複排除・削除のドメインロジックを提供する。
package post

import (
	"context"
	"log/slog"

	"github.com/vanshika-blip/pulse-backend/internal/model"
	"github.com/vanshika-blip/pulse-backend/internal/repository"
)

// PostAggregator はフィード集約のインターフェース。
type PostAggregator interface {
	// FetchAll は全ソースをフェッチし正規化済みPostを返す。個別の失敗は0件の寄与となる。
	FetchAll(ctx context.Context) []model.Post
}

// IngestMetrics は取り込み結果のメトリクス記録インターフェース。
type IngestMetrics interface {
	RecordPostsInserted(count int)
}

// Service は重複排除ゲートと削除操作を提供する。
// フレッシュな集約結果のうち未知のIDを持つ投稿のみを一括挿入し、
// ストアに保存された正規の現在ビューを返す。投稿の作成経路はこのゲートのみ。
type Service struct {
	aggregator PostAggregator
	repo       repository.PostRepository
	metrics    IngestMetrics
	logger     *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	aggregator PostAggregator,
	repo repository.PostRepository,
	metrics IngestMetrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		aggregator: aggregator,
		repo:       repo,
		metrics:    metrics,
		logger:     logger,
	}
}

// Ingest は集約結果をストアと突き合わせ、未知の投稿のみを一括挿入する。
// アルゴリズム:
//  1. 保存済みの全投稿IDをロードする。
//  2. フェッチ結果を既知（ID存在）と新規（ID不在）に分割する。
//  3. 新規のみを1バッチで挿入する。既存行のstatusやaddedAtは一切変更されない。
//
// 同一または拡大したソース設定での再実行は保存セットを単調非減少に保つ。
// ストアに到達できない場合は操作全体が失敗し、フィードのみの結果には縮退しない。
// 戻り値は挿入された件数。
func (s *Service) Ingest(ctx context.Context) (int, error) {
	fetched := s.aggregator.FetchAll(ctx)

	known, err := s.repo.ListIdentities(ctx)
	if err != nil {
		return 0, model.NewStoreUnavailableError(err)
	}

	var fresh []model.Post
	for _, p := range fetched {
		if _, exists := known[p.ID]; exists {
			continue
		}
		fresh = append(fresh, p)
	}

	inserted, err := s.repo.CreateBatch(ctx, fresh)
	if err != nil {
		return 0, model.NewStoreUnavailableError(err)
	}

	s.metrics.RecordPostsInserted(inserted)
	s.logger.Info("投稿の取り込みが完了しました",
		slog.Int("fetched", len(fetched)),
		slog.Int("new", len(fresh)),
		slog.Int("inserted", inserted),
	)

	return inserted, nil
}

// ListPosts は取り込みを実行した上で、現在のライブ投稿一覧を返す。
// 戻り値はremovedを除く全保存投稿で、timestamp降順（新しい順）。
func (s *Service) ListPosts(ctx context.Context) ([]model.Post, error) {
	if _, err := s.Ingest(ctx); err != nil {
		return nil, err
	}

	posts, err := s.repo.ListLive(ctx)
	if err != nil {
		return nil, model.NewStoreUnavailableError(err)
	}

	return posts, nil
}

// RemovePost は指定IDの投稿のstatusをremovedに設定する。
// 既存投稿に対する唯一の変更経路であり、冪等。
// 存在しないIDや既にremovedのIDに対してもストア書き込みが成功すればエラーにしない。
func (s *Service) RemovePost(ctx context.Context, id string) error {
	if err := s.repo.MarkRemoved(ctx, id); err != nil {
		return model.NewStoreUnavailableError(err)
	}
	return nil
}
