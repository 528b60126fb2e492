// Package verification は使い捨て検証コードの生成・保存・検証を提供する。
package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/codedojo/internal/model"
	"github.com/hitoshi/codedojo/internal/repository"
)

// Service は検証コードのライフサイクルを管理する。
// コードは使い捨てであり、検証成功時および期限切れ発見時に削除される。
type Service struct {
	repo repository.VerificationCodeRepository
	ttl  time.Duration
}

// NewService はServiceを生成する。ttlはコードの有効期間。
func NewService(repo repository.VerificationCodeRepository, ttl time.Duration) *Service {
	return &Service{repo: repo, ttl: ttl}
}

// GenerateCode は[100000, 999999]の一様乱数から6桁の数字コードを生成する。
// CSPRNGを使用する。
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Save は同一 (userID, purpose) の既存コードを無効化した上で新しいコードを
// 保存し、コードIDを返す。置き換えはリポジトリ側で単一トランザクションとして
// 実行される。
func (s *Service) Save(ctx context.Context, userID, code string, purpose model.CodePurpose) (string, error) {
	now := time.Now()
	vc := &model.VerificationCode{
		ID:        uuid.New().String(),
		UserID:    userID,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	if err := s.repo.Replace(ctx, vc); err != nil {
		return "", fmt.Errorf("failed to save verification code: %w", err)
	}

	return vc.ID, nil
}

// Verify はコードIDと入力コードを照合する。
//   - 行が存在しない場合はfalse。
//   - 期限切れの場合は行を削除してfalse。
//   - 一致した場合は行を削除してtrue（使い捨て）。
//   - 不一致の場合は行を残してfalse。期限内の再入力を許容する。
func (s *Service) Verify(ctx context.Context, codeID, submitted string) (bool, error) {
	vc, err := s.repo.FindByID(ctx, codeID)
	if err != nil {
		return false, fmt.Errorf("failed to find verification code: %w", err)
	}
	if vc == nil {
		return false, nil
	}

	if vc.Expired(time.Now()) {
		if err := s.repo.DeleteByID(ctx, codeID); err != nil {
			slog.Error("failed to delete expired code",
				slog.String("code_id", codeID),
				slog.String("error", err.Error()),
			)
		}
		return false, nil
	}

	if vc.Code != submitted {
		return false, nil
	}

	// 再利用を防ぐため、一致したコードは即座に削除する
	if err := s.repo.DeleteByID(ctx, codeID); err != nil {
		return false, fmt.Errorf("failed to consume verification code: %w", err)
	}

	return true, nil
}
