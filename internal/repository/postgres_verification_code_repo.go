package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/codedojo/internal/model"
)

// PostgresVerificationCodeRepo はPostgreSQLを使用した検証コードリポジトリ。
type PostgresVerificationCodeRepo struct {
	db *sql.DB
}

// NewPostgresVerificationCodeRepo はPostgresVerificationCodeRepoを生成する。
func NewPostgresVerificationCodeRepo(db *sql.DB) *PostgresVerificationCodeRepo {
	return &PostgresVerificationCodeRepo{db: db}
}

// Replace は同一 (UserID, Purpose) の既存コードを削除してから新コードを挿入する。
// 削除と挿入を単一トランザクションで行い、並行リクエスト間でも
// 「有効なコードは常に1つ」の不変条件を保つ。後勝ちとなる。
func (r *PostgresVerificationCodeRepo) Replace(ctx context.Context, code *model.VerificationCode) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM verification_codes WHERE user_id = $1 AND purpose = $2`,
		code.UserID, string(code.Purpose),
	)
	if err != nil {
		return fmt.Errorf("failed to delete active codes: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO verification_codes (id, user_id, code, purpose, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		code.ID, code.UserID, code.Code, string(code.Purpose), code.ExpiresAt, code.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert verification code: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// FindByID は指定IDの検証コードを取得する。見つからない場合はnilを返す。
func (r *PostgresVerificationCodeRepo) FindByID(ctx context.Context, id string) (*model.VerificationCode, error) {
	code := &model.VerificationCode{}
	var purpose string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, code, purpose, expires_at, created_at
		 FROM verification_codes WHERE id = $1`,
		id,
	).Scan(&code.ID, &code.UserID, &code.Code, &purpose, &code.ExpiresAt, &code.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find verification code: %w", err)
	}

	code.Purpose = model.CodePurpose(purpose)
	return code, nil
}

// DeleteByID は指定IDの検証コードを削除する。存在しない場合もエラーにしない。
func (r *PostgresVerificationCodeRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM verification_codes WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete verification code: %w", err)
	}
	return nil
}

// DeleteExpired は期限切れの検証コードをすべて削除し、削除件数を返す。
func (r *PostgresVerificationCodeRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM verification_codes WHERE expires_at <= now()`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired codes: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// compile-time interface check
var _ VerificationCodeRepository = (*PostgresVerificationCodeRepo)(nil)
