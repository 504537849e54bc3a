// Package app はアプリケーションの起動・ワイヤリング・シャットダウンを提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/vanshika-blip/pulse-backend/internal/comment"
	"github.com/vanshika-blip/pulse-backend/internal/config"
	"github.com/vanshika-blip/pulse-backend/internal/database"
	"github.com/vanshika-blip/pulse-backend/internal/feed"
	"github.com/vanshika-blip/pulse-backend/internal/generate"
	"github.com/vanshika-blip/pulse-backend/internal/handler"
	"github.com/vanshika-blip/pulse-backend/internal/logger"
	"github.com/vanshika-blip/pulse-backend/internal/metrics"
	"github.com/vanshika-blip/pulse-backend/internal/middleware"
	"github.com/vanshika-blip/pulse-backend/internal/post"
	"github.com/vanshika-blip/pulse-backend/internal/repository"
	"github.com/vanshika-blip/pulse-backend/internal/security"
	"github.com/vanshika-blip/pulse-backend/internal/validator"
	"github.com/vanshika-blip/pulse-backend/internal/worker/refresh"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// buildPostService は取り込みパイプライン（集約→正規化→重複排除ゲート）を組み立てる。
// serveとworkerの両モードで共通のワイヤリング。
func buildPostService(cfg *config.Config, repo repository.PostRepository, collector *metrics.Collector) (*post.Service, *feed.Aggregator, error) {
	sources, err := feed.ParseSources(cfg.FeedSources)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed sources: %w", err)
	}

	ssrfGuard := security.NewSSRFGuard()
	stripper := security.NewContentStripper()

	fetcher := feed.NewHTTPFeedFetcher(ssrfGuard, cfg.FetchTimeout, cfg.FetchMaxSize)
	detector := feed.NewDetector(ssrfGuard, cfg.FetchTimeout, cfg.FetchMaxSize)
	normalizer := feed.NewNormalizer(stripper)

	aggregator := feed.NewAggregator(
		sources, fetcher, detector, normalizer,
		collector, slog.Default(), cfg.FetchMaxConcurrent,
	)

	postService := post.NewService(aggregator, repo, collector, slog.Default())

	return postService, aggregator, nil
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	postRepo := repository.NewPostgresPostRepo(db)
	commentRepo := repository.NewPostgresCommentRepo(db)

	// 3. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. 取り込みパイプラインの組み立て
	postService, aggregator, err := buildPostService(cfg, postRepo, collector)
	if err != nil {
		return err
	}

	// 5. 生成バックエンドの初期化
	ctx := context.Background()
	gemini, err := generate.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.MaxOutputTokens)
	if err != nil {
		return fmt.Errorf("failed to initialize generation backend: %w", err)
	}
	defer gemini.Close()

	generateService := generate.NewService(gemini, collector, slog.Default())
	commentService := comment.NewService(commentRepo)

	// 6. レート制限の構成（configはreq/min単位、rate.Limitはreq/sec単位）
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     rate.Limit(float64(cfg.RateLimitGeneral) / 60.0),
		GeneralBurst:    cfg.RateLimitGeneral,
		GenerateRate:    rate.Limit(float64(cfg.RateLimitGenerate) / 60.0),
		GenerateBurst:   cfg.RateLimitGenerate,
		CleanupInterval: 5 * time.Minute,
	})
	defer rateLimiter.Stop()

	// 7. ルーターの構築
	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,

		PostService:     postService,
		GenerateService: generateService,
		CommentService:  commentService,
		Validator:       validator.New(),

		Store:   db,
		Sources: aggregator,

		Gatherer: registry,
	})

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // コメント生成は外部バックエンド待ちで長くなる
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// DB接続を開き、取り込みスケジューラを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	// 2. 取り込みパイプラインの組み立て
	postRepo := repository.NewPostgresPostRepo(db)
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	postService, _, err := buildPostService(cfg, postRepo, collector)
	if err != nil {
		return err
	}

	// 3. スケジューラの起動
	scheduler := refresh.NewScheduler(postService, slog.Default())

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("refresh_interval", cfg.RefreshInterval),
		slog.Int("max_concurrent", cfg.FetchMaxConcurrent),
	)

	// 取り込みスケジューラをメインgoroutineで実行（ブロッキング）
	scheduler.Start(ctx, cfg.RefreshInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
