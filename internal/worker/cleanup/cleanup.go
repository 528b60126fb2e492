// Package cleanup は期限切れ検証コードの定期削除ジョブを提供する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ExpiredCodeDeleter は期限切れコードの一括削除に必要なインターフェース。
// repository.VerificationCodeRepositoryの部分集合として定義する。
type ExpiredCodeDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// CleanupJob は期限切れ検証コードをデータベースから削除するジョブ。
// 期限切れコードは照合時にも遅延削除されるが、一度も照合されなかった行は
// このジョブが回収する。
type CleanupJob struct {
	codes  ExpiredCodeDeleter
	logger *slog.Logger
}

// NewCleanupJob はCleanupJobを生成する。
func NewCleanupJob(codes ExpiredCodeDeleter, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		codes:  codes,
		logger: logger,
	}
}

// Run はクリーンアップを1回実行する。
func (j *CleanupJob) Run(ctx context.Context) error {
	deleted, err := j.codes.DeleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete expired verification codes: %w", err)
	}

	j.logger.Info("expired verification codes cleaned up",
		slog.Int64("deleted", deleted),
	)
	return nil
}

// Start は起動直後に1回実行した後、interval間隔でクリーンアップを
// 繰り返す。コンテキストのキャンセルで停止する（ブロッキング）。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	if err := j.Run(ctx); err != nil {
		j.logger.Error("cleanup job failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("cleanup job failed", slog.String("error", err.Error()))
			}
		}
	}
}
