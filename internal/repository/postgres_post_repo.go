package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vanshika-blip/pulse-backend/internal/model"
)

// PostgresPostRepo はPostgreSQLを使用した投稿リポジトリ。
type PostgresPostRepo struct {
	db *sql.DB
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

// ListIdentities は保存済みの全投稿IDを返す。
func (r *PostgresPostRepo) ListIdentities(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM posts`)
	if err != nil {
		return nil, fmt.Errorf("投稿IDの一覧取得に失敗しました: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("投稿ID行の読み取りに失敗しました: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("投稿IDの走査に失敗しました: %w", err)
	}

	return ids, nil
}

// CreateBatch は投稿を1トランザクションで一括挿入する。
// ON CONFLICT DO NOTHINGにより、並行リクエストが同一IDを挿入しようとしても
// 既存行は上書きされない（status、added_atは最初の挿入時の値を維持する）。
func (r *PostgresPostRepo) CreateBatch(ctx context.Context, posts []model.Post) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO posts (id, platform, author_name, title, content, url,
		                    published_at, status, added_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("挿入ステートメントの準備に失敗しました: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, p := range posts {
		res, err := stmt.ExecContext(ctx,
			p.ID, string(p.Platform), p.AuthorName, p.Title, p.Content, p.URL,
			p.Timestamp, string(p.Status), p.AddedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("投稿の挿入に失敗しました: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}

	return inserted, nil
}

// ListLive はremoved以外の全投稿をpublished_at降順で返す。
func (r *PostgresPostRepo) ListLive(ctx context.Context) ([]model.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, platform, author_name, title, content, url,
		        published_at, status, added_at
		 FROM posts
		 WHERE status <> $1
		 ORDER BY published_at DESC`,
		string(model.PostStatusRemoved),
	)
	if err != nil {
		return nil, fmt.Errorf("投稿一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		var platform, status string
		if err := rows.Scan(
			&p.ID, &platform, &p.AuthorName, &p.Title, &p.Content, &p.URL,
			&p.Timestamp, &status, &p.AddedAt,
		); err != nil {
			return nil, fmt.Errorf("投稿行の読み取りに失敗しました: %w", err)
		}
		p.Platform = model.Platform(platform)
		p.Status = model.PostStatus(status)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("投稿一覧の走査に失敗しました: %w", err)
	}

	return posts, nil
}

// MarkRemoved は指定IDの投稿のstatusをremovedに設定する。
// 対象が存在しない場合や既にremovedの場合も成功として扱う（冪等）。
func (r *PostgresPostRepo) MarkRemoved(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE posts SET status = $2 WHERE id = $1`,
		id, string(model.PostStatusRemoved),
	)
	if err != nil {
		return fmt.Errorf("投稿の削除マークに失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ PostRepository = (*PostgresPostRepo)(nil)
