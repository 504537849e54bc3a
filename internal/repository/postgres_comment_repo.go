package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/vanshika-blip/pulse-backend/internal/model"
)

// PostgresCommentRepo はPostgreSQLを使用したコメントリポジトリ。
// payloadカラムはJSONBで、クライアント指定の任意フィールドをそのまま保持する。
type PostgresCommentRepo struct {
	db *sql.DB
}

// NewPostgresCommentRepo はPostgresCommentRepoを生成する。
func NewPostgresCommentRepo(db *sql.DB) *PostgresCommentRepo {
	return &PostgresCommentRepo{db: db}
}

// Create はコメントを保存する。
func (r *PostgresCommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	payload, err := json.Marshal(comment.Payload)
	if err != nil {
		return fmt.Errorf("コメントペイロードのシリアライズに失敗しました: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO comments (id, payload, saved_at) VALUES ($1, $2, $3)`,
		comment.ID, payload, comment.SavedAt,
	)
	if err != nil {
		return fmt.Errorf("コメントの保存に失敗しました: %w", err)
	}
	return nil
}

// ListRecent は保存日時の新しい順に最大limit件のコメントを返す。
func (r *PostgresCommentRepo) ListRecent(ctx context.Context, limit int) ([]model.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, payload, saved_at FROM comments
		 ORDER BY saved_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("コメント履歴の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		var payload []byte
		if err := rows.Scan(&c.ID, &payload, &c.SavedAt); err != nil {
			return nil, fmt.Errorf("コメント行の読み取りに失敗しました: %w", err)
		}
		if err := json.Unmarshal(payload, &c.Payload); err != nil {
			return nil, fmt.Errorf("コメントペイロードの解析に失敗しました: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("コメント履歴の走査に失敗しました: %w", err)
	}

	return comments, nil
}

// compile-time interface check
var _ CommentRepository = (*PostgresCommentRepo)(nil)
