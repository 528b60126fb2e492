package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// NameSanitizer はユーザー入力の表示名からHTMLを除去する。
// 表示名はそのままUIに描画されるため、保存前にタグを一切許可しない
// ポリシーでサニタイズする。
type NameSanitizer struct {
	policy *bluemonday.Policy
}

// NewNameSanitizer はNameSanitizerを生成する。
func NewNameSanitizer() *NameSanitizer {
	return &NameSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は表示名からHTMLタグを除去し、前後の空白を取り除く。
func (s *NameSanitizer) Sanitize(name string) string {
	return strings.TrimSpace(s.policy.Sanitize(name))
}
