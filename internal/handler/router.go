package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/codedojo/internal/middleware"
)

// defaultPublicPaths は認証不要の公開パス。
// "/"は完全一致、それ以外はプレフィックス一致で判定される。
// "/user"はハンドラーが自前でセッションを検証してJSONの401を返すため、
// ミドルウェアのリダイレクトを受けないようここに含める。
var defaultPublicPaths = []string{
	"/auth",
	"/api/v1/auth",
	"/",
	"/images",
	"/public",
	"/health",
	"/metrics",
	"/user",
}

// loginPath は未認証のWebリクエストのリダイレクト先。
const loginPath = "/auth/login"

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionVerifier   middleware.SessionVerifier
	CORSAllowedOrigin string
	AuthRateLimiter   *middleware.RateLimiter
	Logger            *slog.Logger

	// 認証
	AuthService AuthServiceInterface
	Cookies     CookieConfig

	// 運用
	HealthChecker  HealthChecker
	MetricsHandler http.Handler
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを
// 構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Access
//
// 認証エンドポイント（/auth/*）にはさらにIP単位のレート制限がかかる。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewAccessMiddleware(deps.SessionVerifier, middleware.AccessConfig{
		PublicPaths: defaultPublicPaths,
		LoginPath:   loginPath,
	}))

	authHandler := NewAuthHandler(deps.AuthService, deps.Cookies)
	userHandler := NewUserHandler(deps.SessionVerifier)
	healthHandler := NewHealthHandler(deps.HealthChecker)

	// --- 認証エンドポイント（レート制限あり）---
	r.Route("/auth", func(r chi.Router) {
		r.Use(deps.AuthRateLimiter.Middleware())

		r.Post("/login", authHandler.Login)
		r.Post("/signup", authHandler.Signup)
		r.Post("/verify", authHandler.Verify)
		r.Post("/send-code", authHandler.SendCode)
		r.Post("/reset-password", authHandler.ResetPassword)
		r.Post("/logout", authHandler.Logout)
	})

	// --- セッション参照 ---
	r.Get("/user", userHandler.Me)

	// --- 運用エンドポイント ---
	r.Get("/health", healthHandler.Health)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	return r
}
