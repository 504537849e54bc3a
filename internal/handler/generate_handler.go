package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vanshika-blip/pulse-backend/internal/model"
)

// GenerateServiceInterface はコメント生成ハンドラーが必要とするサービスインターフェース。
type GenerateServiceInterface interface {
	// GenerateComments はちょうど3件のコメント候補を生成する。
	GenerateComments(ctx context.Context, platform model.Platform, authorName, content string) ([]string, error)
}

// StructValidator はリクエストボディの構造的検証のインターフェース。
type StructValidator interface {
	ValidateStruct(s interface{}) error
}

// GenerateHandler はコメント生成のHTTPハンドラー。
type GenerateHandler struct {
	service   GenerateServiceInterface
	validator StructValidator
}

// NewGenerateHandler はGenerateHandlerを生成する。
func NewGenerateHandler(service GenerateServiceInterface, validator StructValidator) *GenerateHandler {
	return &GenerateHandler{
		service:   service,
		validator: validator,
	}
}

// generateRequest はコメント生成リクエストのボディ。
// contentは必須。未知のplatformはデフォルトペルソナで処理される。
type generateRequest struct {
	Platform   string `json:"platform"`
	AuthorName string `json:"authorName"`
	Content    string `json:"content" validate:"required"`
}

// generateResponse はコメント生成のレスポンス。
type generateResponse struct {
	Comments []string `json:"comments"`
}

// Generate は投稿へのコメント候補を生成する。
// POST /generate
// contentが欠けているリクエストは400で拒否し、生成バックエンドへは送らない。
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("ボディの解析に失敗しました"))
		return
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingContentError())
		return
	}

	// 未知のプラットフォームはエラーにせず、生成側のデフォルトペルソナに委ねる
	platform, _ := model.ParsePlatform(req.Platform)

	comments, err := h.service.GenerateComments(r.Context(), platform, req.AuthorName, req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{Comments: comments})
}
