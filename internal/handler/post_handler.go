package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vanshika-blip/pulse-backend/internal/model"
)

// PostServiceInterface は投稿ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	// ListPosts は取り込みを実行した上でライブ投稿一覧をtimestamp降順で返す。
	ListPosts(ctx context.Context) ([]model.Post, error)
	// RemovePost は指定IDの投稿を論理削除する。冪等。
	RemovePost(ctx context.Context, id string) error
}

// PostHandler は投稿管理のHTTPハンドラー。
type PostHandler struct {
	service PostServiceInterface
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service PostServiceInterface) *PostHandler {
	return &PostHandler{service: service}
}

// removePostRequest は投稿削除リクエストのボディ。
type removePostRequest struct {
	ID string `json:"id"`
}

// ListPosts はライブ投稿一覧を取得する。
// GET /posts
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListPosts(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// 0件でもnullではなく空配列を返す
	if posts == nil {
		posts = []model.Post{}
	}

	writeJSON(w, http.StatusOK, posts)
}

// RemovePost は投稿を論理削除する。
// POST /remove-post
func (h *PostHandler) RemovePost(w http.ResponseWriter, r *http.Request) {
	var req removePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("ボディの解析に失敗しました"))
		return
	}

	if req.ID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("idは必須です"))
		return
	}

	if err := h.service.RemovePost(r.Context(), req.ID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
