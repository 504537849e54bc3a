package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vanshika-blip/pulse-backend/internal/model"
)

// --- モック定義 ---

// mockCommentService はCommentServiceInterfaceのモック実装。
type mockCommentService struct {
	saveFn    func(ctx context.Context, payload map[string]any) (*model.Comment, error)
	historyFn func(ctx context.Context) ([]model.Comment, error)
}

func (m *mockCommentService) Save(ctx context.Context, payload map[string]any) (*model.Comment, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, payload)
	}
	return &model.Comment{ID: "c-1", Payload: payload, SavedAt: time.Now()}, nil
}

func (m *mockCommentService) History(ctx context.Context) ([]model.Comment, error) {
	if m.historyFn != nil {
		return m.historyFn(ctx)
	}
	return nil, nil
}

// --- POST /save-comment テスト ---

func TestCommentHandler_SaveComment_Success(t *testing.T) {
	var gotPayload map[string]any
	svc := &mockCommentService{
		saveFn: func(ctx context.Context, payload map[string]any) (*model.Comment, error) {
			gotPayload = payload
			return &model.Comment{ID: "c-1", Payload: payload, SavedAt: time.Now()}, nil
		},
	}

	h := NewCommentHandler(svc)
	body := bytes.NewBufferString(`{"platform": "reddit", "postId": "p-1", "comment": "nice"}`)
	req := httptest.NewRequest(http.MethodPost, "/save-comment", body)
	rec := httptest.NewRecorder()

	h.SaveComment(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	// 任意フィールドがそのまま渡ることを確認
	if gotPayload["comment"] != "nice" || gotPayload["postId"] != "p-1" {
		t.Errorf("payload = %v", gotPayload)
	}

	var resp successResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Error("resp.Success = false, want true")
	}
}

func TestCommentHandler_SaveComment_InvalidJSON(t *testing.T) {
	h := NewCommentHandler(&mockCommentService{})

	req := httptest.NewRequest(http.MethodPost, "/save-comment", bytes.NewBufferString(`not json`))
	rec := httptest.NewRecorder()

	h.SaveComment(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCommentHandler_SaveComment_StoreUnavailable(t *testing.T) {
	svc := &mockCommentService{
		saveFn: func(ctx context.Context, payload map[string]any) (*model.Comment, error) {
			return nil, model.NewStoreUnavailableError(context.DeadlineExceeded)
		},
	}

	h := NewCommentHandler(svc)
	req := httptest.NewRequest(http.MethodPost, "/save-comment", bytes.NewBufferString(`{"a": 1}`))
	rec := httptest.NewRecorder()

	h.SaveComment(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var resp apiErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Code != model.ErrCodeStoreUnavailable {
		t.Errorf("resp.Code = %q, want %q", resp.Code, model.ErrCodeStoreUnavailable)
	}
}

// --- GET /history テスト ---

// 履歴のJSONにペイロードのフィールドとsavedAtが展開されることを検証
func TestCommentHandler_History_Success(t *testing.T) {
	savedAt := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	svc := &mockCommentService{
		historyFn: func(ctx context.Context) ([]model.Comment, error) {
			return []model.Comment{
				{
					ID:      "c-1",
					Payload: map[string]any{"comment": "nice", "platform": "reddit"},
					SavedAt: savedAt,
				},
			}, nil
		},
	}

	h := NewCommentHandler(svc)
	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	rec := httptest.NewRecorder()

	h.History(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var entries []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("response is not a JSON array: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0]["comment"] != "nice" {
		t.Errorf("entries[0].comment = %v, want nice", entries[0]["comment"])
	}
	if entries[0]["savedAt"] == nil {
		t.Error("entries[0].savedAt should be present")
	}
}

// 履歴が0件のときnullではなく空配列が返ることを検証
func TestCommentHandler_History_EmptyArray(t *testing.T) {
	h := NewCommentHandler(&mockCommentService{})
	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	rec := httptest.NewRecorder()

	h.History(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := bytes.TrimSpace(rec.Body.Bytes())
	if string(body) != "[]" {
		t.Errorf("body = %s, want []", body)
	}
}
