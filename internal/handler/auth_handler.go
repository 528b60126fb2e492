package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/codedojo/internal/auth"
	"github.com/hitoshi/codedojo/internal/middleware"
	"github.com/hitoshi/codedojo/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password, challengeToken string) (*auth.LoginResult, error)
	Signup(ctx context.Context, name, email, password, challengeToken string) (*auth.LoginResult, error)
	Verify(ctx context.Context, verificationToken, verificationID, code string) (*auth.VerifyResult, error)
	RequestPasswordReset(ctx context.Context, email, challengeToken string) (*auth.ResetRequestResult, error)
	ResetPassword(ctx context.Context, verificationToken, verificationID, code, newPassword string) error
}

// AuthHandler は認証フローのHTTPハンドラー。
// Cookieの読み書きとJSONレスポンスの組み立てを担い、
// ビジネスロジックはAuthServiceInterfaceに委譲する。
type AuthHandler struct {
	service AuthServiceInterface
	cookies CookieConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		cookies: cookies,
	}
}

// Login はメールアドレスとパスワードで認証する。
// POST /auth/login
//
// 二要素認証が有効な場合は検証Cookieペアを設定してコード入力を要求する。
// 無効な場合はセッションCookieを設定してログイン完了となる。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password, req.TurnstileToken)
	if err != nil {
		h.writeAuthError(w, err, false)
		return
	}

	if result.RequireVerification {
		setVerificationCookies(w, h.cookies, result.VerificationToken, result.VerificationID)
		middleware.WriteJSON(w, http.StatusOK, map[string]any{
			"message":             "Verification code sent",
			"requireVerification": true,
		})
		return
	}

	setSecureCookie(w, h.cookies, sessionCookieName, result.SessionToken, h.cookies.SessionMaxAge)
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    result.User.Public(),
	})
}

// Signup は新規ユーザーを登録する。
// POST /auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.service.Signup(r.Context(), req.Name, req.Email, req.Password, req.TurnstileToken)
	if err != nil {
		h.writeAuthError(w, err, false)
		return
	}

	if result.RequireVerification {
		setVerificationCookies(w, h.cookies, result.VerificationToken, result.VerificationID)
		middleware.WriteJSON(w, http.StatusCreated, map[string]any{
			"message":             "Verification code sent",
			"requireVerification": true,
		})
		return
	}

	setSecureCookie(w, h.cookies, sessionCookieName, result.SessionToken, h.cookies.SessionMaxAge)
	middleware.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user":    result.User.Public(),
	})
}

// Verify は二要素認証のコード入力を検証し、セッションを発行する。
// POST /auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	verificationToken := getCookie(r, verificationTokenCookieName)
	verificationID := getCookie(r, verificationIDCookieName)

	result, err := h.service.Verify(r.Context(), verificationToken, verificationID, req.Code)
	if err != nil {
		h.writeAuthError(w, err, true)
		return
	}

	// セッションを発行し、使い終わった検証Cookieを破棄する
	setSecureCookie(w, h.cookies, sessionCookieName, result.SessionToken, h.cookies.SessionMaxAge)
	clearVerificationCookies(w, h.cookies)

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Verification successful",
		"user":    result.User.Public(),
	})
}

// SendCode はパスワード再設定コードの発行を開始する。
// POST /auth/send-code
//
// アカウントの存在有無にかかわらず、常に同一のメッセージと200を返す。
func (h *AuthHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req sendCodeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.service.RequestPasswordReset(r.Context(), req.Email, req.TurnstileToken)
	if err != nil {
		h.writeAuthError(w, err, false)
		return
	}

	if result.Sent {
		setVerificationCookies(w, h.cookies, result.VerificationToken, result.VerificationID)
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "If the email exists, a reset code has been sent",
	})
}

// ResetPassword はコード検証の上でパスワードを更新する。
// POST /auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	verificationToken := getCookie(r, verificationTokenCookieName)
	verificationID := getCookie(r, verificationIDCookieName)

	err := h.service.ResetPassword(r.Context(), verificationToken, verificationID, req.Code, req.Password)
	if err != nil {
		h.writeAuthError(w, err, true)
		return
	}

	clearVerificationCookies(w, h.cookies)
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Password reset successful",
	})
}

// Logout はセッションCookieを削除する。冪等であり常に成功する。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearCookie(w, h.cookies, sessionCookieName)
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Logout successful",
	})
}

// writeAuthError はサービス層のエラーをHTTPレスポンスにマッピングする。
// clearOnSessionErrorがtrueの場合、検証セッションの失効・ユーザー消失時に
// 検証Cookieのペアを削除する。予期しないエラーは詳細をログにのみ記録し、
// クライアントには汎用の500を返す。
func (h *AuthHandler) writeAuthError(w http.ResponseWriter, err error, clearOnSessionError bool) {
	var authErr *model.AuthError
	if errors.As(err, &authErr) {
		if clearOnSessionError &&
			(authErr.Code == model.ErrCodeSessionExpired || authErr.Code == model.ErrCodeUserNotFound) {
			clearVerificationCookies(w, h.cookies)
		}
		middleware.WriteError(w, authErr.Status, authErr.Message)
		return
	}

	slog.Error("auth flow failed", slog.String("error", err.Error()))
	internal := model.NewInternalError()
	middleware.WriteError(w, internal.Status, internal.Message)
}
