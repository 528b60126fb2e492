// Package token はセッショントークンと検証トークンの署名・検証を提供する。
//
// どちらもHMAC-SHA256で署名された自己完結型のJWTであり、サーバー側には
// 永続化しない。有効性は署名と有効期限のみで決まる。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/codedojo/internal/model"
)

// ErrInvalidToken はトークン検証の失敗を表す。
// 署名不正・形式不正・期限切れを呼び出し側が区別できないよう、
// すべての検証失敗をこのエラーに収斂させる。
var ErrInvalidToken = errors.New("token is invalid or expired")

// SessionClaims はセッショントークンのクレームセット。
type SessionClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// VerificationClaims は検証トークン（2FA・パスワード再設定）のクレームセット。
type VerificationClaims struct {
	UserID  string            `json:"userId"`
	Email   string            `json:"email"`
	Name    string            `json:"name,omitempty"`
	Purpose model.CodePurpose `json:"purpose"`
	jwt.RegisteredClaims
}

// Service はJWTの発行と検証を行う。
// 署名鍵はプロセス全体で共有される単一のシークレット。
// 鍵のローテーションは発行済みトークンをすべて無効化する（許容される設計）。
type Service struct {
	secret          []byte
	sessionTTL      time.Duration
	verificationTTL time.Duration
}

// NewService はServiceを生成する。
func NewService(secret string, sessionTTL, verificationTTL time.Duration) *Service {
	return &Service{
		secret:          []byte(secret),
		sessionTTL:      sessionTTL,
		verificationTTL: verificationTTL,
	}
}

// CreateSessionToken はユーザー情報からセッショントークンを発行する。
// 有効期限は now + sessionTTL。
func (s *Service) CreateSessionToken(user *model.User) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// CreateVerificationToken はユーザーと用途から検証トークンを発行する。
// 有効期限は now + verificationTTL（既定5分）。
func (s *Service) CreateVerificationToken(user *model.User, purpose model.CodePurpose) (string, error) {
	now := time.Now()
	claims := &VerificationClaims{
		UserID:  user.ID,
		Email:   user.Email,
		Name:    user.Name,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.verificationTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign verification token: %w", err)
	}
	return signed, nil
}

// VerifySessionToken はセッショントークンの署名と有効期限を検証する。
// いかなる検証失敗もErrInvalidTokenを返す。
func (s *Service) VerifySessionToken(tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := s.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyVerificationToken は検証トークンの署名と有効期限を検証する。
// いかなる検証失敗もErrInvalidTokenを返す。
func (s *Service) VerifyVerificationToken(tokenStr string) (*VerificationClaims, error) {
	claims := &VerificationClaims{}
	if err := s.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// parse は共通のJWT検証処理。アルゴリズムはHS256のみ許可する。
func (s *Service) parse(tokenStr string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
