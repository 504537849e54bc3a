package handler

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/vanshika-blip/pulse-backend/internal/middleware"
	"github.com/vanshika-blip/pulse-backend/internal/validator"
)

func newTestRouter(t *testing.T, rl *middleware.RateLimiter) http.Handler {
	t.Helper()

	if rl == nil {
		rl = middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	}
	t.Cleanup(rl.Stop)

	return NewRouter(&RouterDeps{
		Logger:            slog.New(slog.NewJSONHandler(io.Discard, nil)),
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,

		PostService:     &mockPostService{},
		GenerateService: &mockGenerateService{},
		CommentService:  &mockCommentService{},
		Validator:       validator.New(),

		Store:   &mockStorePinger{},
		Sources: &mockSourceCounter{count: 2},

		Gatherer: prometheus.NewRegistry(),
	})
}

// 全エンドポイントがルーティングされていることを検証
func TestRouter_Routes(t *testing.T) {
	router := newTestRouter(t, nil)

	tests := []struct {
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{method: http.MethodGet, path: "/posts", wantStatus: http.StatusOK},
		{method: http.MethodPost, path: "/remove-post", body: `{"id": "p-1"}`, wantStatus: http.StatusOK},
		{method: http.MethodPost, path: "/generate", body: `{"platform": "reddit", "content": "x"}`, wantStatus: http.StatusOK},
		{method: http.MethodPost, path: "/save-comment", body: `{"comment": "x"}`, wantStatus: http.StatusOK},
		{method: http.MethodGet, path: "/history", wantStatus: http.StatusOK},
		{method: http.MethodGet, path: "/health", wantStatus: http.StatusOK},
		{method: http.MethodGet, path: "/metrics", wantStatus: http.StatusOK},
		{method: http.MethodGet, path: "/no-such-route", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}
			req.RemoteAddr = "192.0.2.1:12345"
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

// /generate に専用のレート制限がかかることを検証
func TestRouter_GenerateRateLimit(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     rate.Limit(1000),
		GeneralBurst:    1000,
		GenerateRate:    rate.Limit(0.001),
		GenerateBurst:   2,
		CleanupInterval: time.Minute,
	})
	router := newTestRouter(t, rl)

	body := `{"platform": "reddit", "content": "x"}`
	var lastStatus int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/generate", bytes.NewBufferString(body))
		req.RemoteAddr = "192.0.2.1:12345"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		lastStatus = rec.Code
	}

	if lastStatus != http.StatusTooManyRequests {
		t.Errorf("3rd request status = %d, want 429", lastStatus)
	}

	// 生成のレート制限は他のエンドポイントに影響しない
	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.RemoteAddr = "192.0.2.1:12345"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /posts status = %d, want 200", rec.Code)
	}
}

// CORSヘッダーが付与されることを検証
func TestRouter_CORSHeaders(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.RemoteAddr = "192.0.2.1:12345"
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
