// Package config は環境変数からのアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
// 各コンポーネントには必要な値を明示的に注入する。
type Config struct {
	// Database
	DatabaseURL string

	// JWT
	JWTSecret string

	// Session / Verification
	SessionMaxAge      int // セッショントークンの有効期間（秒）
	VerificationMaxAge int // 検証トークン・検証コードの有効期間（秒）

	// Turnstile（ボット対策チャレンジ）
	TurnstileSiteKey string
	TurnstileSecret  string

	// Email
	ResendAPIKey string
	EmailFrom    string

	// Rate Limit
	AuthRateLimit int // /auth/* エンドポイントのレート（req/min/IP）

	// Server
	ServerPort string
	BaseURL    string
	AppEnv     string // "production" または "development"

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 60*60*24*7) // 7日
	cfg.VerificationMaxAge = getEnvInt("VERIFICATION_MAX_AGE", 60*5)
	cfg.TurnstileSiteKey = getEnvString("TURNSTILE_SITE_KEY", "")
	cfg.TurnstileSecret = getEnvString("TURNSTILE_SECRET", "")
	cfg.ResendAPIKey = getEnvString("RESEND_API_KEY", "")
	cfg.EmailFrom = getEnvString("EMAIL_FROM", "noreply@example.com")
	cfg.AuthRateLimit = getEnvInt("AUTH_RATE_LIMIT", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.AppEnv = getEnvString("APP_ENV", "development")
	cfg.CookieSecure = cfg.IsProduction() || strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

// SessionExpiration はセッショントークンの有効期間を返す。
func (c *Config) SessionExpiration() time.Duration {
	return time.Duration(c.SessionMaxAge) * time.Second
}

// VerificationExpiration は検証トークン・検証コードの有効期間を返す。
func (c *Config) VerificationExpiration() time.Duration {
	return time.Duration(c.VerificationMaxAge) * time.Second
}

// IsProduction は本番環境かどうかを返す。
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Use2FA は二要素認証（メールコード）を強制するかどうかを返す。
// 本番環境でのみ有効。開発環境ではログインは直接セッションを発行する。
func (c *Config) Use2FA() bool {
	return c.IsProduction()
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}
