package comment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vanshika-blip/pulse-backend/internal/model"
)

// --- モック定義 ---

// mockCommentRepo はCommentRepositoryのモック実装。
type mockCommentRepo struct {
	created   []*model.Comment
	createErr error

	listRecentFn func(ctx context.Context, limit int) ([]model.Comment, error)
	gotLimit     int
}

func (m *mockCommentRepo) Create(ctx context.Context, c *model.Comment) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, c)
	return nil
}

func (m *mockCommentRepo) ListRecent(ctx context.Context, limit int) ([]model.Comment, error) {
	m.gotLimit = limit
	if m.listRecentFn != nil {
		return m.listRecentFn(ctx, limit)
	}
	return nil, nil
}

// --- Save テスト ---

// 保存時にIDとsavedAtがサーバー側で採番されることを検証
func TestService_Save_AssignsIDAndSavedAt(t *testing.T) {
	repo := &mockCommentRepo{}
	svc := NewService(repo)

	before := time.Now()
	saved, err := svc.Save(context.Background(), map[string]any{
		"platform": "reddit",
		"comment":  "nice post",
	})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if saved.ID == "" {
		t.Error("saved.ID should be assigned")
	}
	if saved.SavedAt.Before(before) {
		t.Error("saved.SavedAt should be set to the save time")
	}
	if saved.Payload["comment"] != "nice post" {
		t.Errorf("Payload[comment] = %v", saved.Payload["comment"])
	}
	if len(repo.created) != 1 {
		t.Fatalf("Create calls = %d, want 1", len(repo.created))
	}
}

// 連続保存で異なるIDが採番されることを検証
func TestService_Save_UniqueIDs(t *testing.T) {
	repo := &mockCommentRepo{}
	svc := NewService(repo)

	first, _ := svc.Save(context.Background(), map[string]any{"a": 1})
	second, _ := svc.Save(context.Background(), map[string]any{"a": 1})

	if first.ID == second.ID {
		t.Error("consecutive saves should get distinct IDs")
	}
}

// ストア障害がSTORE_UNAVAILABLEとして報告されることを検証
func TestService_Save_StoreUnavailable(t *testing.T) {
	repo := &mockCommentRepo{createErr: errors.New("connection refused")}
	svc := NewService(repo)

	_, err := svc.Save(context.Background(), map[string]any{"a": 1})
	if err == nil {
		t.Fatal("Save should fail when store is unavailable")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error should be APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeStoreUnavailable {
		t.Errorf("apiErr.Code = %q, want %q", apiErr.Code, model.ErrCodeStoreUnavailable)
	}
}

// --- History テスト ---

// 履歴取得が上限件数をリポジトリに渡すことを検証
func TestService_History_PassesLimit(t *testing.T) {
	repo := &mockCommentRepo{}
	svc := NewService(repo)

	if _, err := svc.History(context.Background()); err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if repo.gotLimit != model.HistoryLimit {
		t.Errorf("limit = %d, want %d", repo.gotLimit, model.HistoryLimit)
	}
}

// 履歴取得時のストア障害がSTORE_UNAVAILABLEとして報告されることを検証
func TestService_History_StoreUnavailable(t *testing.T) {
	repo := &mockCommentRepo{
		listRecentFn: func(ctx context.Context, limit int) ([]model.Comment, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewService(repo)

	_, err := svc.History(context.Background())
	if err == nil {
		t.Fatal("History should fail when store is unavailable")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error should be APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeStoreUnavailable {
		t.Errorf("apiErr.Code = %q, want %q", apiErr.Code, model.ErrCodeStoreUnavailable)
	}
}
