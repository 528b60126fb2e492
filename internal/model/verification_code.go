package model

import "time"

// CodePurpose は検証コードの用途を表す。
type CodePurpose string

const (
	// PurposeTwoFactor はログイン・サインアップ時の二要素認証コード。
	PurposeTwoFactor CodePurpose = "TWO_FACTOR"
	// PurposePasswordReset はパスワード再設定コード。
	PurposePasswordReset CodePurpose = "PASSWORD_RESET"
)

// Valid は既知の用途かどうかを返す。
func (p CodePurpose) Valid() bool {
	switch p {
	case PurposeTwoFactor, PurposePasswordReset:
		return true
	default:
		return false
	}
}

// VerificationCode はメールで配送される6桁の使い捨てコードを表す。
// 同一 (UserID, Purpose) に対して有効なコードは常に1つ。
// 新しいコードの発行は既存コードを削除してから行う。
type VerificationCode struct {
	ID        string
	UserID    string
	Code      string // 6桁のASCII数字
	Purpose   CodePurpose
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired は指定時刻においてコードが期限切れかどうかを返す。
func (c *VerificationCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
