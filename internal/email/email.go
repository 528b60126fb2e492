// Package email は検証コードのメール配送を提供する。
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/codedojo/internal/model"
)

// resendAPIURL はResendのメール送信エンドポイント。
const resendAPIURL = "https://api.resend.com/emails"

// Sender はメール送信のインターフェース。
type Sender interface {
	// Send は単一のテキストメールを送信する。
	Send(ctx context.Context, to, subject, text string) error
}

// ResendSender はResend APIを使用したSenderの実装。
type ResendSender struct {
	apiKey     string
	from       string
	httpClient *http.Client
	apiURL     string
}

// NewResendSender はResendSenderを生成する。
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		apiKey:     apiKey,
		from:       from,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     resendAPIURL,
	}
}

// Send はResend API経由でテキストメールを送信する。
func (s *ResendSender) Send(ctx context.Context, to, subject, text string) error {
	payload, err := json.Marshal(map[string]any{
		"from":    s.from,
		"to":      []string{to},
		"subject": subject,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("failed to encode email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("email API returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// LogSender は開発環境向けのSender実装。
// 実際には送信せず、コードを含む本文をログに出力する。
type LogSender struct{}

// NewLogSender はLogSenderを生成する。
func NewLogSender() *LogSender {
	return &LogSender{}
}

// Send はメール内容をログに出力する。
func (s *LogSender) Send(_ context.Context, to, subject, text string) error {
	slog.Info("email (dev mode, not sent)",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("text", text),
	)
	return nil
}

// Service は用途に応じた件名・本文で検証コードメールを組み立てて送信する。
type Service struct {
	sender Sender
}

// NewService はServiceを生成する。
func NewService(sender Sender) *Service {
	return &Service{sender: sender}
}

// SendVerificationCode は検証コードを指定アドレスに送信する。
func (s *Service) SendVerificationCode(ctx context.Context, to, code string, purpose model.CodePurpose) error {
	var subject, text string
	switch purpose {
	case model.PurposePasswordReset:
		subject = "Your password reset code"
		text = fmt.Sprintf("Your password reset code is: %s. This code expires in 5 minutes.", code)
	default:
		subject = "Your verification code"
		text = fmt.Sprintf("Your verification code is: %s. This code expires in 5 minutes.", code)
	}

	if err := s.sender.Send(ctx, to, subject, text); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

// compile-time interface checks
var (
	_ Sender = (*ResendSender)(nil)
	_ Sender = (*LogSender)(nil)
)
