// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/codedojo/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
// emailにはデータベース側でユニーク制約がかかっている。
type UserRepository interface {
	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// UpdatePasswordHash は指定ユーザーのパスワードハッシュを更新する。
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error
}

// VerificationCodeRepository は検証コードの永続化インターフェース。
type VerificationCodeRepository interface {
	// Replace は同一 (UserID, Purpose) の既存コードをすべて削除してから
	// 新しいコードを挿入する。削除と挿入は単一トランザクションで実行され、
	// 同一ユーザーへの並行リクエストでも有効なコードは常に1つに保たれる。
	Replace(ctx context.Context, code *model.VerificationCode) error

	// FindByID は指定IDの検証コードを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.VerificationCode, error)

	// DeleteByID は指定IDの検証コードを削除する。存在しない場合もエラーにしない。
	DeleteByID(ctx context.Context, id string) error

	// DeleteExpired は期限切れの検証コードをすべて削除し、削除件数を返す。
	// クリーンアップジョブから呼ばれる。
	DeleteExpired(ctx context.Context) (int64, error)
}
