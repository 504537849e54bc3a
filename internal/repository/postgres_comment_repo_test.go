package repository

import (
	"testing"
	"time"

	"github.com/vanshika-blip/pulse-backend/internal/model"
)

// PostgresCommentRepoはCommentRepositoryインターフェースを満たすことを検証
func TestPostgresCommentRepo_ImplementsInterface(t *testing.T) {
	var _ CommentRepository = (*PostgresCommentRepo)(nil)
}

// NewPostgresCommentRepoが正しく初期化されることを検証
func TestNewPostgresCommentRepo_Initializes(t *testing.T) {
	repo := NewPostgresCommentRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// Commentモデルが任意のペイロードフィールドを保持できることを検証
func TestPostgresCommentRepo_CommentModel_ArbitraryPayload(t *testing.T) {
	c := model.Comment{
		ID: "c-1",
		Payload: map[string]any{
			"platform":    "reddit",
			"postId":      "p-1",
			"comment":     "nice post",
			"customField": 42,
		},
		SavedAt: time.Now(),
	}

	if c.Payload["customField"] != 42 {
		t.Errorf("Payload[customField] = %v, want 42", c.Payload["customField"])
	}
	if len(c.Payload) != 4 {
		t.Errorf("len(Payload) = %d, want 4", len(c.Payload))
	}
}
