package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// StorePinger はストアの疎通確認のインターフェース。
type StorePinger interface {
	PingContext(ctx context.Context) error
}

// SourceCounter は設定済みフィードソース数の参照インターフェース。
type SourceCounter interface {
	SourceCount() int
}

// HealthHandler はヘルスチェックのHTTPハンドラー。
type HealthHandler struct {
	store   StorePinger
	sources SourceCounter
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(store StorePinger, sources SourceCounter) *HealthHandler {
	return &HealthHandler{
		store:   store,
		sources: sources,
	}
}

// healthResponse はヘルスチェックのレスポンス。
type healthResponse struct {
	Status string `json:"status"`
	Feeds  int    `json:"feeds"`
	Store  bool   `json:"store"`
}

// Health はサービスの稼働状態を返す。
// GET /health
// ストアに到達できない場合もプロセス自体は稼働しているため200を返し、
// storeフィールドで疎通状態を示す。
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	storeOK := true
	if err := h.store.PingContext(ctx); err != nil {
		storeOK = false
		slog.Warn("store ping failed", slog.String("error", err.Error()))
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Feeds:  h.sources.SourceCount(),
		Store:  storeOK,
	})
}
