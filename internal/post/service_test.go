package post

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/vanshika-blip/pulse-backend/internal/model"
)

// --- モック定義 ---

// mockAggregator はPostAggregatorのモック実装。
type mockAggregator struct {
	fetchAllFn func(ctx context.Context) []model.Post
}

func (m *mockAggregator) FetchAll(ctx context.Context) []model.Post {
	if m.fetchAllFn != nil {
		return m.fetchAllFn(ctx)
	}
	return nil
}

// mockPostRepo はPostRepositoryのモック実装。インメモリの保存セットを持つ。
type mockPostRepo struct {
	stored map[string]model.Post

	listIdentitiesErr error
	createBatchErr    error
	listLiveErr       error
	markRemovedErr    error

	createBatchCalls [][]model.Post
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{stored: make(map[string]model.Post)}
}

func (m *mockPostRepo) ListIdentities(ctx context.Context) (map[string]struct{}, error) {
	if m.listIdentitiesErr != nil {
		return nil, m.listIdentitiesErr
	}
	ids := make(map[string]struct{}, len(m.stored))
	for id := range m.stored {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (m *mockPostRepo) CreateBatch(ctx context.Context, posts []model.Post) (int, error) {
	if m.createBatchErr != nil {
		return 0, m.createBatchErr
	}
	m.createBatchCalls = append(m.createBatchCalls, posts)
	inserted := 0
	for _, p := range posts {
		if _, exists := m.stored[p.ID]; exists {
			continue
		}
		m.stored[p.ID] = p
		inserted++
	}
	return inserted, nil
}

func (m *mockPostRepo) ListLive(ctx context.Context) ([]model.Post, error) {
	if m.listLiveErr != nil {
		return nil, m.listLiveErr
	}
	var live []model.Post
	for _, p := range m.stored {
		if p.Status != model.PostStatusRemoved {
			live = append(live, p)
		}
	}
	return live, nil
}

func (m *mockPostRepo) MarkRemoved(ctx context.Context, id string) error {
	if m.markRemovedErr != nil {
		return m.markRemovedErr
	}
	if p, exists := m.stored[id]; exists {
		p.Status = model.PostStatusRemoved
		m.stored[id] = p
	}
	return nil
}

// mockIngestMetrics はIngestMetricsのモック実装。
type mockIngestMetrics struct {
	inserted int
}

func (m *mockIngestMetrics) RecordPostsInserted(count int) {
	m.inserted += count
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testPost(id string) model.Post {
	return model.Post{
		ID:        id,
		Platform:  model.PlatformReddit,
		Title:     "記事 " + id,
		Timestamp: time.Now(),
		Status:    model.PostStatusPending,
		AddedAt:   time.Now(),
	}
}

// --- Ingest テスト ---

// 新規投稿のみが挿入されることを検証
func TestService_Ingest_InsertsOnlyFreshPosts(t *testing.T) {
	repo := newMockPostRepo()
	repo.stored["known-1"] = testPost("known-1")

	agg := &mockAggregator{
		fetchAllFn: func(ctx context.Context) []model.Post {
			return []model.Post{testPost("known-1"), testPost("fresh-1"), testPost("fresh-2")}
		},
	}

	metrics := &mockIngestMetrics{}
	svc := NewService(agg, repo, metrics, discardLogger())

	inserted, err := svc.Ingest(context.Background())
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if inserted != 2 {
		t.Errorf("inserted = %d, want 2", inserted)
	}
	if len(repo.createBatchCalls) != 1 {
		t.Fatalf("CreateBatch calls = %d, want 1", len(repo.createBatchCalls))
	}
	// 既知IDはバッチに含めない
	for _, p := range repo.createBatchCalls[0] {
		if p.ID == "known-1" {
			t.Error("known-1 should not be in the insert batch")
		}
	}
	if metrics.inserted != 2 {
		t.Errorf("metrics.inserted = %d, want 2", metrics.inserted)
	}
}

// 同一ソース構成での再取り込みが保存セットを変えないことを検証（冪等性）
func TestService_Ingest_RefetchIsIdempotent(t *testing.T) {
	repo := newMockPostRepo()
	agg := &mockAggregator{
		fetchAllFn: func(ctx context.Context) []model.Post {
			return []model.Post{testPost("a"), testPost("b")}
		},
	}

	svc := NewService(agg, repo, &mockIngestMetrics{}, discardLogger())

	first, err := svc.Ingest(context.Background())
	if err != nil {
		t.Fatalf("first Ingest returned error: %v", err)
	}
	if first != 2 {
		t.Errorf("first inserted = %d, want 2", first)
	}

	second, err := svc.Ingest(context.Background())
	if err != nil {
		t.Fatalf("second Ingest returned error: %v", err)
	}
	if second != 0 {
		t.Errorf("second inserted = %d, want 0", second)
	}
	if len(repo.stored) != 2 {
		t.Errorf("stored set size = %d, want 2", len(repo.stored))
	}
}

// 再取り込みで既存投稿のstatusが変更されないことを検証
func TestService_Ingest_DoesNotTouchExistingPosts(t *testing.T) {
	repo := newMockPostRepo()
	removed := testPost("r-1")
	removed.Status = model.PostStatusRemoved
	repo.stored["r-1"] = removed

	agg := &mockAggregator{
		fetchAllFn: func(ctx context.Context) []model.Post {
			// 同じIDがフィードに再出現しても上書きしない
			return []model.Post{testPost("r-1")}
		},
	}

	svc := NewService(agg, repo, &mockIngestMetrics{}, discardLogger())

	if _, err := svc.Ingest(context.Background()); err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}

	if repo.stored["r-1"].Status != model.PostStatusRemoved {
		t.Error("removed post should stay removed after re-ingest")
	}
}

// ストアが利用できない場合に操作全体が失敗することを検証（フィードのみへの縮退なし）
func TestService_Ingest_StoreUnavailable(t *testing.T) {
	repo := newMockPostRepo()
	repo.listIdentitiesErr = errors.New("connection refused")

	agg := &mockAggregator{
		fetchAllFn: func(ctx context.Context) []model.Post {
			return []model.Post{testPost("a")}
		},
	}

	svc := NewService(agg, repo, &mockIngestMetrics{}, discardLogger())

	_, err := svc.Ingest(context.Background())
	if err == nil {
		t.Fatal("Ingest should fail when store is unavailable")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error should be APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeStoreUnavailable {
		t.Errorf("apiErr.Code = %q, want %q", apiErr.Code, model.ErrCodeStoreUnavailable)
	}
}

// 挿入失敗も操作全体の失敗として報告されることを検証
func TestService_Ingest_InsertFailure(t *testing.T) {
	repo := newMockPostRepo()
	repo.createBatchErr = errors.New("deadlock detected")

	agg := &mockAggregator{
		fetchAllFn: func(ctx context.Context) []model.Post {
			return []model.Post{testPost("a")}
		},
	}

	svc := NewService(agg, repo, &mockIngestMetrics{}, discardLogger())

	_, err := svc.Ingest(context.Background())
	if err == nil {
		t.Fatal("Ingest should fail when insert fails")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error should be APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeStoreUnavailable {
		t.Errorf("apiErr.Code = %q, want %q", apiErr.Code, model.ErrCodeStoreUnavailable)
	}
}

// --- ListPosts テスト ---

// ListPostsが取り込み後のライブ投稿を返すことを検証
func TestService_ListPosts_ReturnsLivePosts(t *testing.T) {
	repo := newMockPostRepo()
	removed := testPost("gone")
	removed.Status = model.PostStatusRemoved
	repo.stored["gone"] = removed

	agg := &mockAggregator{
		fetchAllFn: func(ctx context.Context) []model.Post {
			return []model.Post{testPost("live-1")}
		},
	}

	svc := NewService(agg, repo, &mockIngestMetrics{}, discardLogger())

	posts, err := svc.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("ListPosts returned error: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("len(posts) = %d, want 1 (removed posts excluded)", len(posts))
	}
	if posts[0].ID != "live-1" {
		t.Errorf("posts[0].ID = %q, want live-1", posts[0].ID)
	}
}

// --- RemovePost テスト ---

// 削除が論理削除であり、冪等であることを検証
func TestService_RemovePost_Idempotent(t *testing.T) {
	repo := newMockPostRepo()
	repo.stored["p-1"] = testPost("p-1")

	svc := NewService(&mockAggregator{}, repo, &mockIngestMetrics{}, discardLogger())

	if err := svc.RemovePost(context.Background(), "p-1"); err != nil {
		t.Fatalf("first RemovePost returned error: %v", err)
	}
	if repo.stored["p-1"].Status != model.PostStatusRemoved {
		t.Error("post should be marked removed")
	}

	// 2回目も成功する
	if err := svc.RemovePost(context.Background(), "p-1"); err != nil {
		t.Fatalf("second RemovePost returned error: %v", err)
	}

	// 存在しないIDでも成功する
	if err := svc.RemovePost(context.Background(), "no-such-id"); err != nil {
		t.Fatalf("RemovePost on unknown id returned error: %v", err)
	}

	// 行自体は削除されない
	if _, exists := repo.stored["p-1"]; !exists {
		t.Error("removed post row should still exist in the store")
	}
}

// 削除時のストア障害がSTORE_UNAVAILABLEとして報告されることを検証
func TestService_RemovePost_StoreUnavailable(t *testing.T) {
	repo := newMockPostRepo()
	repo.markRemovedErr = errors.New("connection reset")

	svc := NewService(&mockAggregator{}, repo, &mockIngestMetrics{}, discardLogger())

	err := svc.RemovePost(context.Background(), "p-1")
	if err == nil {
		t.Fatal("RemovePost should fail when store is unavailable")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error should be APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeStoreUnavailable {
		t.Errorf("apiErr.Code = %q, want %q", apiErr.Code, model.ErrCodeStoreUnavailable)
	}
}
