package credential

import (
	"strings"
	"testing"
)

func TestHashPassword_ProducesBcryptHash(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("hash = %q, want bcrypt format ($2...)", hash)
	}
	if hash == "correct horse battery staple" {
		t.Error("hash should not equal the plaintext password")
	}
}

func TestHashPassword_DifferentSaltPerCall(t *testing.T) {
	hash1, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	hash2, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	// ソルトが異なるため、同一パスワードでもハッシュは一致しない
	if hash1 == hash2 {
		t.Error("two hashes of the same password should differ")
	}

	if !VerifyPassword("same-password", hash1) {
		t.Error("hash1 should verify")
	}
	if !VerifyPassword("same-password", hash2) {
		t.Error("hash2 should verify")
	}
}

func TestVerifyPassword_CorrectPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if !VerifyPassword("secret123", hash) {
		t.Error("VerifyPassword() = false, want true for correct password")
	}
}

func TestVerifyPassword_WrongPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if VerifyPassword("secret124", hash) {
		t.Error("VerifyPassword() = true, want false for wrong password")
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	if VerifyPassword("secret123", "not-a-bcrypt-hash") {
		t.Error("VerifyPassword() = true, want false for malformed hash")
	}
	if VerifyPassword("secret123", "") {
		t.Error("VerifyPassword() = true, want false for empty hash")
	}
}
