package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/codedojo/internal/middleware"
)

// UserHandler はログイン中のユーザー情報を返すHTTPハンドラー。
type UserHandler struct {
	verifier middleware.SessionVerifier
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(verifier middleware.SessionVerifier) *UserHandler {
	return &UserHandler{
		verifier: verifier,
	}
}

// Me は現在のセッションのユーザー情報を返す。
// GET /user
//
// セッションCookieを自前で検証し、未認証・失効時はリダイレクトではなく
// JSONの401を返す。フロントエンドのナビゲーション表示が呼び出すため、
// アクセス制御ミドルウェアの公開パスに含める。
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	claims, err := h.verifier.VerifySessionToken(cookie.Value)
	if err != nil {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"user": map[string]string{
			"name": claims.Name,
			"role": claims.Role,
		},
	})
}

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// HealthHandler はヘルスチェックのHTTPハンドラー。
type HealthHandler struct {
	checker HealthChecker
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{
		checker: checker,
	}
}

// Health はDB接続を確認し、稼働状態を返す。
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.checker.PingContext(r.Context()); err != nil {
		middleware.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
		})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
