// Package handler はHTTPハンドラーとCookieトランスポートを提供する。
package handler

import "net/http"

// Cookieの名前。ミドルウェア側のセッションCookie名と一致させること。
const (
	sessionCookieName           = "session_token"
	verificationTokenCookieName = "verification_token"
	verificationIDCookieName    = "verification_id"
)

// CookieConfig はCookieの属性と有効期間の設定。
type CookieConfig struct {
	Secure             bool   // 本番環境ではtrue
	Domain             string // 空の場合はホストのみ
	SessionMaxAge      int    // セッションCookieの有効期間（秒）
	VerificationMaxAge int    // 検証Cookieの有効期間（秒）
}

// setSecureCookie はHTTP Only Cookieを設定する。
// SameSite=Laxでクロスサイトの送信を抑制する。
func setSecureCookie(w http.ResponseWriter, config CookieConfig, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   config.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearCookie はCookieを削除する。
// 属性が設定時と一致しないとブラウザによってはCookieが残るため、
// setSecureCookieと同一の属性で空値・負のMaxAgeを書き込む。
func clearCookie(w http.ResponseWriter, config CookieConfig, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   config.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// getCookie は指定名のCookie値を返す。存在しない場合は空文字。
func getCookie(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// setVerificationCookies は検証トークンとコードIDのCookieをペアで設定する。
// 検証ステップは署名付きクレームとコード行の両方を参照するため、
// 2つのCookieは常に一緒に書き込む。
func setVerificationCookies(w http.ResponseWriter, config CookieConfig, verificationToken, verificationID string) {
	setSecureCookie(w, config, verificationTokenCookieName, verificationToken, config.VerificationMaxAge)
	setSecureCookie(w, config, verificationIDCookieName, verificationID, config.VerificationMaxAge)
}

// clearVerificationCookies は検証用Cookieのペアを削除する。
func clearVerificationCookies(w http.ResponseWriter, config CookieConfig) {
	clearCookie(w, config, verificationTokenCookieName)
	clearCookie(w, config, verificationIDCookieName)
}
