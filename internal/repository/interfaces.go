// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/vanshika-blip/pulse-backend/internal/model"
)

// PostRepository は投稿データの永続化インターフェース。
// 投稿の作成はCreateBatchのみが行い、更新はMarkRemovedによるステータス変更のみ。
type PostRepository interface {
	// ListIdentities は保存済みの全投稿IDを返す。
	// 重複判定のためのセット構築に使用される。
	ListIdentities(ctx context.Context) (map[string]struct{}, error)

	// CreateBatch は投稿を1トランザクションで一括挿入する。
	// 既に同一IDが存在する行はスキップされ、既存行は一切変更されない。
	// 挿入された件数を返す。
	CreateBatch(ctx context.Context, posts []model.Post) (int, error)

	// ListLive はremoved以外の全投稿をpublished_at降順で返す。
	ListLive(ctx context.Context) ([]model.Post, error)

	// MarkRemoved は指定IDの投稿のstatusをremovedに設定する。
	// 冪等であり、対象が存在しない場合や既にremovedの場合もエラーにしない。
	MarkRemoved(ctx context.Context, id string) error
}

// CommentRepository はコメントデータの永続化インターフェース。
// 追記専用であり、更新・削除の操作は提供しない。
type CommentRepository interface {
	// Create はコメントを保存する。
	Create(ctx context.Context, comment *model.Comment) error

	// ListRecent は保存日時の新しい順に最大limit件のコメントを返す。
	ListRecent(ctx context.Context, limit int) ([]model.Comment, error)
}
