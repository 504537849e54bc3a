package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vanshika-blip/pulse-backend/internal/metrics"
	"github.com/vanshika-blip/pulse-backend/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// サービス
	PostService     PostServiceInterface
	GenerateService GenerateServiceInterface
	CommentService  CommentServiceInterface
	Validator       StructValidator

	// ヘルスチェック
	Store   StorePinger
	Sources SourceCounter

	// メトリクス公開
	Gatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → SecurityHeadersMiddleware → RecoveryMiddleware → LoggingMiddleware → RateLimit(General)
//
// /generate には追加でRateLimit(Generate)がかかる。
// /metrics と /health はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	postHandler := NewPostHandler(deps.PostService)
	generateHandler := NewGenerateHandler(deps.GenerateService, deps.Validator)
	commentHandler := NewCommentHandler(deps.CommentService)
	healthHandler := NewHealthHandler(deps.Store, deps.Sources)

	// --- レート制限の外のルート ---

	r.Get("/health", healthHandler.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	// --- API全般のレート制限がかかるルート ---

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/posts", postHandler.ListPosts)
		r.Post("/remove-post", postHandler.RemovePost)

		r.Post("/save-comment", commentHandler.SaveComment)
		r.Get("/history", commentHandler.History)

		// コメント生成は外部バックエンドのコストが高いため追加の制限をかける
		r.Group(func(r chi.Router) {
			r.Use(deps.RateLimiter.GenerateMiddleware())
			r.Post("/generate", generateHandler.Generate)
		})
	})

	return r
}
