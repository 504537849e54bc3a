// Package comment はコメントの保存と履歴取得のドメインロジックを提供する。
package comment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vanshika-blip/pulse-backend/internal/model"
	"github.com/vanshika-blip/pulse-backend/internal/repository"
)

// Service はコメントの保存・履歴機能を提供する。
// 保存は追記専用であり、保存済みコメントの更新・削除経路は存在しない。
type Service struct {
	repo repository.CommentRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.CommentRepository) *Service {
	return &Service{repo: repo}
}

// Save はクライアント指定の任意ペイロードにサーバー採番のsavedAtを付与して保存する。
func (s *Service) Save(ctx context.Context, payload map[string]any) (*model.Comment, error) {
	c := &model.Comment{
		ID:      uuid.New().String(),
		Payload: payload,
		SavedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, model.NewStoreUnavailableError(err)
	}

	return c, nil
}

// History は保存日時の新しい順に最大200件のコメントを返す。
func (s *Service) History(ctx context.Context) ([]model.Comment, error) {
	comments, err := s.repo.ListRecent(ctx, model.HistoryLimit)
	if err != nil {
		return nil, model.NewStoreUnavailableError(err)
	}
	return comments, nil
}
