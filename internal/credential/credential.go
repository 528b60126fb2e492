// Package credential はパスワードのハッシュ化と検証を提供する。
package credential

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost はパスワードハッシュのコストファクター。
const bcryptCost = 10

// HashPassword は平文パスワードからbcryptハッシュを生成する。
// ソルトはbcrypt内部で生成されるため、同じ入力でも出力は毎回異なる。
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword は平文パスワードとbcryptハッシュの一致を検証する。
// 不一致や不正なハッシュはfalseを返し、エラーにはしない。
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
