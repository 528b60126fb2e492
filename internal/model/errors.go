package model

import (
	"fmt"
	"net/http"
)

// AuthError は認証フローの失敗を表す統一エラー型。
// Messageはそのままクライアントに返却されるため、内部情報を含めてはならない。
// 元の原因はサーバーログにのみ記録する。
type AuthError struct {
	Code    string // エラーコード
	Message string // クライアント向けメッセージ
	Status  int    // HTTPステータスコード
}

// Error はerrorインターフェースを実装する。
func (e *AuthError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeSecurityCheckFailed = "SECURITY_CHECK_FAILED"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeAccountDisabled     = "ACCOUNT_DISABLED"
	ErrCodeEmailTaken          = "EMAIL_TAKEN"
	ErrCodeSessionExpired      = "SESSION_EXPIRED"
	ErrCodeInvalidCode         = "INVALID_CODE"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// NewInvalidInputError は入力スキーマ検証の失敗エラーを生成する。
func NewInvalidInputError(message string) *AuthError {
	return &AuthError{
		Code:    ErrCodeInvalidInput,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewSecurityCheckFailedError はチャレンジゲート拒否のエラーを生成する。
// ネットワーク起因の失敗も同じメッセージに収斂させ、内部原因を漏らさない。
func NewSecurityCheckFailedError() *AuthError {
	return &AuthError{
		Code:    ErrCodeSecurityCheckFailed,
		Message: "Security verification failed",
		Status:  http.StatusBadRequest,
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// メールアドレス不存在とパスワード不一致を意図的に区別しない。
func NewInvalidCredentialsError() *AuthError {
	return &AuthError{
		Code:    ErrCodeInvalidCredentials,
		Message: "Invalid email or password",
		Status:  http.StatusUnauthorized,
	}
}

// NewAccountDisabledError は無効化アカウントのエラーを生成する。
func NewAccountDisabledError() *AuthError {
	return &AuthError{
		Code:    ErrCodeAccountDisabled,
		Message: "Account is disabled. Please contact support",
		Status:  http.StatusForbidden,
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *AuthError {
	return &AuthError{
		Code:    ErrCodeEmailTaken,
		Message: "This email is already registered",
		Status:  http.StatusConflict,
	}
}

// NewSessionExpiredError は検証セッションの欠落・失効エラーを生成する。
// Cookie欠落、トークン改ざん、自然失効のいずれも同じメッセージに収斂させる。
func NewSessionExpiredError() *AuthError {
	return &AuthError{
		Code:    ErrCodeSessionExpired,
		Message: "Verification session expired or invalid",
		Status:  http.StatusUnauthorized,
	}
}

// NewInvalidCodeError は検証コード不一致・失効エラーを生成する。
func NewInvalidCodeError() *AuthError {
	return &AuthError{
		Code:    ErrCodeInvalidCode,
		Message: "Invalid or expired code",
		Status:  http.StatusBadRequest,
	}
}

// NewUserNotFoundError はトークン検証後にユーザーが消失・無効化していた場合のエラーを生成する。
func NewUserNotFoundError() *AuthError {
	return &AuthError{
		Code:    ErrCodeUserNotFound,
		Message: "User not found or disabled",
		Status:  http.StatusNotFound,
	}
}

// NewInternalError は予期しない永続化・署名失敗の汎用エラーを生成する。
func NewInternalError() *AuthError {
	return &AuthError{
		Code:    ErrCodeInternal,
		Message: "Internal server error",
		Status:  http.StatusInternalServerError,
	}
}
