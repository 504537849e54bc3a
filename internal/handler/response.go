// Package handler はHTTP APIのエンドポイントを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vanshika-blip/pulse-backend/internal/model"
)

// apiErrorResponse はAPIエラーレスポンスの統一フォーマット。
// errorにメッセージ、codeとcategoryに機械可読の分類を持つ。
type apiErrorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code"`
	Category string `json:"category"`
	Action   string `json:"action,omitempty"`
}

// successResponse は副作用のみの操作の成功レスポンス。
type successResponse struct {
	Success bool `json:"success"`
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, apiErrorResponse{
		Error:    apiErr.Message,
		Code:     apiErr.Code,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層のエラーをHTTPレスポンスにマッピングする。
// APIErrorはカテゴリに応じたステータスコードで返し、
// それ以外のエラーは詳細をログのみに記録して一般的な500を返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorのカテゴリをHTTPステータスコードに変換する。
// クライアント入力エラーのみ400、それ以外（store/feed/generation/system）は500。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	if apiErr.Category == "validation" {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
