package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/codedojo/internal/middleware"
)

// validate はリクエストボディのスキーマ検証に使用する共有バリデーター。
var validate = validator.New(validator.WithRequiredStructEnabled())

// loginRequest はPOST /auth/loginのリクエストボディ。
type loginRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	TurnstileToken string `json:"turnstileToken"`
}

// signupRequest はPOST /auth/signupのリクエストボディ。
type signupRequest struct {
	Name            string `json:"name" validate:"required,min=2"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	TurnstileToken  string `json:"turnstileToken"`
}

// verifyRequest はPOST /auth/verifyのリクエストボディ。
type verifyRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// sendCodeRequest はPOST /auth/send-codeのリクエストボディ。
type sendCodeRequest struct {
	Email          string `json:"email" validate:"required,email"`
	TurnstileToken string `json:"turnstileToken"`
}

// resetPasswordRequest はPOST /auth/reset-passwordのリクエストボディ。
type resetPasswordRequest struct {
	Code            string `json:"code" validate:"required,len=6,numeric"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// fieldError はフィールド単位の検証エラーの詳細。
type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// decodeAndValidate はJSONボディをデコードしてスキーマ検証する。
// 失敗した場合は400レスポンスを書き込み、falseを返す。
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			details := make([]fieldError, 0, len(validationErrs))
			for _, fe := range validationErrs {
				details = append(details, fieldError{Field: fe.Field(), Rule: fe.Tag()})
			}
			middleware.WriteJSON(w, http.StatusBadRequest, map[string]any{
				"error":   "Invalid input",
				"details": details,
			})
			return false
		}
		middleware.WriteError(w, http.StatusBadRequest, "Invalid input")
		return false
	}

	return true
}
