package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hitoshi/codedojo/internal/token"
)

// sessionCookieName はセッショントークンを保持するCookieの名前。
const sessionCookieName = "session_token"

// apiPathPrefix はこのプレフィックスを持つパスへの未認証リクエストに
// リダイレクトではなくJSONの401を返す。
const apiPathPrefix = "/api/"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// sessionContextKey はリクエストコンテキストにセッションクレームを格納するためのキー。
var sessionContextKey = contextKey("session_claims")

// SessionVerifier はセッショントークンの検証に必要なインターフェース。
// token.Serviceの部分集合として定義する。
type SessionVerifier interface {
	VerifySessionToken(tokenStr string) (*token.SessionClaims, error)
}

// AccessConfig はアクセス制御ミドルウェアの設定。
type AccessConfig struct {
	// PublicPaths は認証を免除するパスの許可リスト。
	// "/"は完全一致、それ以外はプレフィックス一致で判定する。
	PublicPaths []string
	// LoginPath は未認証のWebリクエストのリダイレクト先。
	LoginPath string
}

// NewAccessMiddleware はセッショントークンCookieを検証し、リクエストの
// 通過可否を決定するミドルウェアを返す。
//
// 公開パスは無条件に通過する。未認証の場合、APIパス（/api/）には
// JSONの401を、それ以外にはログインページへのリダイレクトを返す。
// リダイレクトURLには元のパスをredirectクエリパラメータとして付与する。
// 検証に成功したリクエストにはクレームをコンテキストに注入する。
func NewAccessMiddleware(verifier SessionVerifier, config AccessConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pathname := r.URL.Path

			// 1. 公開パスは認証不要
			if isPublicPath(pathname, config.PublicPaths) {
				next.ServeHTTP(w, r)
				return
			}

			// 2. セッショントークンCookieを取得
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				rejectUnauthenticated(w, r, config.LoginPath, "authentication required")
				return
			}

			// 3. トークンの署名と有効期限を検証
			claims, err := verifier.VerifySessionToken(cookie.Value)
			if err != nil {
				rejectUnauthenticated(w, r, config.LoginPath, "invalid or expired session")
				return
			}

			// 4. クレームをコンテキストに注入し、下流のロールチェックに渡す
			ctx := ContextWithSession(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CheckRole はリクエストのセッションクレームのロールがallowedRolesに
// 含まれるかを検証する。トークンの欠落・検証失敗はすべてfalse
// （フェイルクローズ）。
func CheckRole(r *http.Request, verifier SessionVerifier, allowedRoles []string) bool {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	claims, err := verifier.VerifySessionToken(cookie.Value)
	if err != nil {
		return false
	}

	for _, role := range allowedRoles {
		if claims.Role == role {
			return true
		}
	}
	return false
}

// SessionFromContext はリクエストコンテキストからセッションクレームを取得する。
// アクセス制御ミドルウェアを通過したリクエストでのみ有効。
func SessionFromContext(ctx context.Context) (*token.SessionClaims, error) {
	claims, ok := ctx.Value(sessionContextKey).(*token.SessionClaims)
	if !ok || claims == nil {
		return nil, fmt.Errorf("session claims not found in context")
	}
	return claims, nil
}

// ContextWithSession はコンテキストにセッションクレームを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithSession(ctx context.Context, claims *token.SessionClaims) context.Context {
	return context.WithValue(ctx, sessionContextKey, claims)
}

// isPublicPath はパスが公開パスの許可リストに含まれるかを判定する。
// "/"は完全一致のみ、それ以外はプレフィックス一致。
func isPublicPath(pathname string, publicPaths []string) bool {
	for _, path := range publicPaths {
		if path == "/" {
			if pathname == "/" {
				return true
			}
			continue
		}
		if strings.HasPrefix(pathname, path) {
			return true
		}
	}
	return false
}

// rejectUnauthenticated は未認証リクエストへの応答を書き込む。
// APIパスにはJSONの401、それ以外はログインページへリダイレクトする。
func rejectUnauthenticated(w http.ResponseWriter, r *http.Request, loginPath, reason string) {
	if strings.HasPrefix(r.URL.Path, apiPathPrefix) {
		WriteJSON(w, http.StatusUnauthorized, map[string]any{
			"success": false,
			"message": "Unauthorized: " + reason,
		})
		return
	}

	redirectURL := loginPath + "?redirect=" + url.QueryEscape(r.URL.Path)
	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}
