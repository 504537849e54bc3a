package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vanshika-blip/pulse-backend/internal/model"
)

// CommentServiceInterface はコメントハンドラーが必要とするサービスインターフェース。
type CommentServiceInterface interface {
	// Save は任意のフィールドを持つコメントを保存する。
	Save(ctx context.Context, payload map[string]any) (*model.Comment, error)
	// History は保存済みコメントを新しい順に返す。
	History(ctx context.Context) ([]model.Comment, error)
}

// CommentHandler は保存済みコメントのHTTPハンドラー。
type CommentHandler struct {
	service CommentServiceInterface
}

// NewCommentHandler はCommentHandlerを生成する。
func NewCommentHandler(service CommentServiceInterface) *CommentHandler {
	return &CommentHandler{service: service}
}

// SaveComment はコメントを保存する。
// POST /save-comment
// ボディのJSONオブジェクトをそのままペイロードとして受け入れ、スキーマ検証はしない。
func (h *CommentHandler) SaveComment(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("ボディの解析に失敗しました"))
		return
	}

	if _, err := h.service.Save(r.Context(), payload); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// History は保存済みコメント履歴を取得する。
// GET /history
func (h *CommentHandler) History(w http.ResponseWriter, r *http.Request) {
	comments, err := h.service.History(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// 0件でもnullではなく空配列を返す
	if comments == nil {
		comments = []model.Comment{}
	}

	writeJSON(w, http.StatusOK, comments)
}
