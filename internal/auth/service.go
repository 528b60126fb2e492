// Package auth は認証フロー（ログイン、サインアップ、二要素認証、
// パスワード再設定）のオーケストレーションを提供する。
//
// サーバー側にセッション状態は持たない。各フローはCookieで運ばれる
// 署名付きトークンと、使い捨て検証コードのみで構成される。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/codedojo/internal/credential"
	"github.com/hitoshi/codedojo/internal/model"
	"github.com/hitoshi/codedojo/internal/repository"
	"github.com/hitoshi/codedojo/internal/security"
	"github.com/hitoshi/codedojo/internal/token"
	"github.com/hitoshi/codedojo/internal/verification"
)

// CodeStore は検証コードの保存・照合に必要なインターフェース。
// verification.Serviceの部分集合として定義する。
type CodeStore interface {
	Save(ctx context.Context, userID, code string, purpose model.CodePurpose) (string, error)
	Verify(ctx context.Context, codeID, submitted string) (bool, error)
}

// Mailer は検証コードメールの送信に必要なインターフェース。
// email.Serviceの部分集合として定義する。
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, code string, purpose model.CodePurpose) error
}

// MetricsRecorder は認証イベントのメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordLogin(success bool)
	RecordSignup()
	RecordCodeIssued(purpose model.CodePurpose)
	RecordCodeVerified(success bool)
	RecordChallenge(passed bool)
	RecordPasswordReset()
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	Use2FA bool // 本番環境ではログイン・サインアップにメールコード認証を要求する
}

// Service は認証に関するビジネスロジックを提供する。
// Cookieの読み書きはハンドラー層の責務であり、Serviceは発行すべき
// トークン値を結果として返すのみ。
type Service struct {
	users     repository.UserRepository
	codes     CodeStore
	tokens    *token.Service
	challenge security.ChallengeVerifier
	mailer    Mailer
	sanitizer *security.NameSanitizer
	metrics   MetricsRecorder
	config    ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	users repository.UserRepository,
	codes CodeStore,
	tokens *token.Service,
	challenge security.ChallengeVerifier,
	mailer Mailer,
	metrics MetricsRecorder,
	config ServiceConfig,
) *Service {
	return &Service{
		users:     users,
		codes:     codes,
		tokens:    tokens,
		challenge: challenge,
		mailer:    mailer,
		sanitizer: security.NewNameSanitizer(),
		metrics:   metrics,
		config:    config,
	}
}

// LoginResult はログイン・サインアップの結果を表す。
// RequireVerificationがtrueの場合、VerificationToken/VerificationIDを
// Cookieとして設定し、クライアントはコード入力ステップに進む。
// falseの場合はSessionTokenを設定してログイン完了となる。
type LoginResult struct {
	RequireVerification bool
	User                *model.User
	SessionToken        string
	VerificationToken   string
	VerificationID      string
}

// VerifyResult はコード検証成功の結果を表す。
type VerifyResult struct {
	User         *model.User
	SessionToken string
}

// ResetRequestResult はパスワード再設定リクエストの結果を表す。
// Sentがfalseの場合（ユーザー不存在・無効）でもハンドラーは成功時と
// 同一のレスポンスを返し、アカウントの存在を漏らさない。
type ResetRequestResult struct {
	Sent              bool
	VerificationToken string
	VerificationID    string
}

// Login はメールアドレスとパスワードで認証する。
//
// ユーザー不存在とパスワード不一致は同一のエラーを返し、アカウント列挙を
// 防ぐ。二要素認証が有効な場合はセッションを発行せず、検証コードを
// メール送信して検証トークンを返す。
func (s *Service) Login(ctx context.Context, email, password, challengeToken string) (*LoginResult, error) {
	if err := s.checkChallenge(ctx, challengeToken); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil {
		s.metrics.RecordLogin(false)
		return nil, model.NewInvalidCredentialsError()
	}

	if !user.IsActive {
		s.metrics.RecordLogin(false)
		return nil, model.NewAccountDisabledError()
	}

	if !credential.VerifyPassword(password, user.PasswordHash) {
		s.metrics.RecordLogin(false)
		return nil, model.NewInvalidCredentialsError()
	}

	if s.config.Use2FA {
		result, err := s.startVerification(ctx, user, model.PurposeTwoFactor)
		if err != nil {
			return nil, err
		}
		slog.Info("login verification code issued", slog.String("user_id", user.ID))
		return result, nil
	}

	sessionToken, err := s.tokens.CreateSessionToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create session token: %w", err)
	}

	s.metrics.RecordLogin(true)
	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role),
	)

	return &LoginResult{User: user, SessionToken: sessionToken}, nil
}

// Signup は新規ユーザーを登録する。
// メールアドレス重複はEmailTakenエラーとなる。表示名は保存前に
// HTMLタグを除去する。二要素認証の分岐はLoginと同じ。
func (s *Service) Signup(ctx context.Context, name, email, password, challengeToken string) (*LoginResult, error) {
	if err := s.checkChallenge(ctx, challengeToken); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if existing != nil {
		return nil, model.NewEmailTakenError()
	}

	passwordHash, err := credential.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         s.sanitizer.Sanitize(name),
		PasswordHash: passwordHash,
		Role:         model.RoleStudent,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.RecordSignup()
	slog.Info("new user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	if s.config.Use2FA {
		return s.startVerification(ctx, user, model.PurposeTwoFactor)
	}

	sessionToken, err := s.tokens.CreateSessionToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create session token: %w", err)
	}

	return &LoginResult{User: user, SessionToken: sessionToken}, nil
}

// Verify は二要素認証のコード入力を検証し、セッションを発行する。
//
// 検証トークンの欠落・失効・改ざんはすべてSessionExpiredに収斂する。
// コード不一致はInvalidCodeとなり、期限内の再入力を許容する。
func (s *Service) Verify(ctx context.Context, verificationToken, verificationID, code string) (*VerifyResult, error) {
	if verificationToken == "" || verificationID == "" {
		return nil, model.NewSessionExpiredError()
	}

	claims, err := s.tokens.VerifyVerificationToken(verificationToken)
	if err != nil {
		return nil, model.NewSessionExpiredError()
	}

	ok, err := s.codes.Verify(ctx, verificationID, code)
	if err != nil {
		return nil, fmt.Errorf("failed to verify code: %w", err)
	}
	s.metrics.RecordCodeVerified(ok)
	if !ok {
		return nil, model.NewInvalidCodeError()
	}

	// トークン発行後にユーザーが消失・無効化されている可能性があるため再取得する
	user, err := s.fetchActiveUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	sessionToken, err := s.tokens.CreateSessionToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create session token: %w", err)
	}

	s.metrics.RecordLogin(true)
	slog.Info("verification completed", slog.String("user_id", user.ID))

	return &VerifyResult{User: user, SessionToken: sessionToken}, nil
}

// RequestPasswordReset はパスワード再設定コードの発行を開始する。
//
// ユーザーが存在しない・無効な場合でもエラーにせずSent=falseを返す。
// ハンドラーは成功時と同一のレスポンスを返し、アカウント列挙を防ぐ。
func (s *Service) RequestPasswordReset(ctx context.Context, email, challengeToken string) (*ResetRequestResult, error) {
	if err := s.checkChallenge(ctx, challengeToken); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil || !user.IsActive {
		slog.Info("password reset requested for unknown or inactive account")
		return &ResetRequestResult{Sent: false}, nil
	}

	result, err := s.startVerification(ctx, user, model.PurposePasswordReset)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPasswordReset()
	slog.Info("password reset code issued", slog.String("user_id", user.ID))

	return &ResetRequestResult{
		Sent:              true,
		VerificationToken: result.VerificationToken,
		VerificationID:    result.VerificationID,
	}, nil
}

// ResetPassword はコード検証の上でパスワードを更新する。
// 検証トークンの用途がPASSWORD_RESETでない場合もSessionExpiredとする。
func (s *Service) ResetPassword(ctx context.Context, verificationToken, verificationID, code, newPassword string) error {
	if verificationToken == "" || verificationID == "" {
		return model.NewSessionExpiredError()
	}

	claims, err := s.tokens.VerifyVerificationToken(verificationToken)
	if err != nil {
		return model.NewSessionExpiredError()
	}
	if claims.Purpose != model.PurposePasswordReset {
		return model.NewSessionExpiredError()
	}

	ok, err := s.codes.Verify(ctx, verificationID, code)
	if err != nil {
		return fmt.Errorf("failed to verify code: %w", err)
	}
	s.metrics.RecordCodeVerified(ok)
	if !ok {
		return model.NewInvalidCodeError()
	}

	user, err := s.fetchActiveUser(ctx, claims.UserID)
	if err != nil {
		return err
	}

	passwordHash, err := credential.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.users.UpdatePasswordHash(ctx, user.ID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("password reset completed", slog.String("user_id", user.ID))
	return nil
}

// startVerification は検証コードの生成・保存・メール送信と検証トークンの
// 発行をまとめて行う。同一ユーザー・同一用途の既存コードは保存時に
// 無効化される（後勝ち）。
func (s *Service) startVerification(ctx context.Context, user *model.User, purpose model.CodePurpose) (*LoginResult, error) {
	code, err := verification.GenerateCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	codeID, err := s.codes.Save(ctx, user.ID, code, purpose)
	if err != nil {
		return nil, fmt.Errorf("failed to save code: %w", err)
	}

	if err := s.mailer.SendVerificationCode(ctx, user.Email, code, purpose); err != nil {
		return nil, fmt.Errorf("failed to send code email: %w", err)
	}

	verificationToken, err := s.tokens.CreateVerificationToken(user, purpose)
	if err != nil {
		return nil, fmt.Errorf("failed to create verification token: %w", err)
	}

	s.metrics.RecordCodeIssued(purpose)

	return &LoginResult{
		RequireVerification: true,
		User:                user,
		VerificationToken:   verificationToken,
		VerificationID:      codeID,
	}, nil
}

// checkChallenge はボット対策チャレンジを検証する。
// 非本番環境ではバイパスされる。失敗の原因（トークン不正・ネットワーク
// 障害）はクライアントに区別させない。
func (s *Service) checkChallenge(ctx context.Context, challengeToken string) error {
	passed := s.challenge.Verify(ctx, challengeToken)
	s.metrics.RecordChallenge(passed)
	if !passed {
		return model.NewSecurityCheckFailedError()
	}
	return nil
}

// fetchActiveUser はユーザーを再取得し、不存在・無効ならUserNotFoundを返す。
func (s *Service) fetchActiveUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}
