// Package app はアプリケーションの起動・依存関係のワイヤリング・
// グレースフルシャットダウンを提供する。
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

	"github.com/hitoshi/codedojo/internal/auth"
	"github.com/hitoshi/codedojo/internal/config"
	"github.com/hitoshi/codedojo/internal/database"
	"github.com/hitoshi/codedojo/internal/email"
	"github.com/hitoshi/codedojo/internal/handler"
	"github.com/hitoshi/codedojo/internal/logger"
	"github.com/hitoshi/codedojo/internal/metrics"
	"github.com/hitoshi/codedojo/internal/middleware"
	"github.com/hitoshi/codedojo/internal/repository"
	"github.com/hitoshi/codedojo/internal/security"
	"github.com/hitoshi/codedojo/internal/token"
	"github.com/hitoshi/codedojo/internal/verification"
	"github.com/hitoshi/codedojo/internal/worker/cleanup"
)

// cleanupInterval は期限切れ検証コードの定期削除の間隔。
// コードのTTLは5分のため、1時間ごとで十分に回収できる。
const cleanupInterval = time.Hour

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
		port := os.Getenv("SERVER_PORT")
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
		slog.String("env", cfg.AppEnv),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
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
	userRepo := repository.NewPostgresUserRepo(db)
	codeRepo := repository.NewPostgresVerificationCodeRepo(db)

	// 3. トークン・検証コードサービスの初期化
	tokenService := token.NewService(
		cfg.JWTSecret, cfg.SessionExpiration(), cfg.VerificationExpiration(),
	)
	codeService := verification.NewService(codeRepo, cfg.VerificationExpiration())

	// 4. ボット対策チャレンジ（非本番ではバイパス）
	challenge := security.NewTurnstileVerifier(cfg.TurnstileSecret, cfg.IsProduction())

	// 5. メール送信（APIキーがある本番ではResend、それ以外はログ出力）
	var sender email.Sender
	if cfg.IsProduction() && cfg.ResendAPIKey != "" {
		sender = email.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom)
	} else {
		sender = email.NewLogSender()
	}
	mailer := email.NewService(sender)

	// 6. メトリクス
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 7. 認証サービスの初期化
	authService := auth.NewService(
		userRepo, codeService, tokenService, challenge, mailer, collector,
		auth.ServiceConfig{Use2FA: cfg.Use2FA()},
	)

	// 8. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.AuthRateLimit),
	)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		SessionVerifier:   tokenService,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		AuthRateLimiter:   rateLimiter,
		Logger:            slog.Default(),

		AuthService: authService,
		Cookies: handler.CookieConfig{
			Secure:             cfg.CookieSecure,
			Domain:             cfg.CookieDomain,
			SessionMaxAge:      cfg.SessionMaxAge,
			VerificationMaxAge: cfg.VerificationMaxAge,
		},

		HealthChecker:  db,
		MetricsHandler: metrics.Handler(registry),
	}

	router := handler.NewRouter(deps)

	// 9. 期限切れ検証コードのクリーンアップをバックグラウンド実行
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	cleanupJob := cleanup.NewCleanupJob(codeRepo, slog.Default())
	go cleanupJob.Start(jobCtx, cleanupInterval)

	// 10. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
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
