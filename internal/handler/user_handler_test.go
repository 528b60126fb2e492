package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/codedojo/internal/model"
	"github.com/hitoshi/codedojo/internal/token"
)

// --- モック定義 ---

type mockSessionVerifier struct {
	verifyFn func(tokenStr string) (*token.SessionClaims, error)
}

func (m *mockSessionVerifier) VerifySessionToken(tokenStr string) (*token.SessionClaims, error) {
	if m.verifyFn != nil {
		return m.verifyFn(tokenStr)
	}
	return nil, errors.New("no session")
}

type mockHealthChecker struct {
	pingFn func(ctx context.Context) error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

// --- テスト ---

func TestUserHandler_Me_NoCookie_Returns401(t *testing.T) {
	h := NewUserHandler(&mockSessionVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	w := httptest.NewRecorder()

	h.Me(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	body := decodeBody(t, resp)
	if body["error"] != "Not authenticated" {
		t.Errorf("error = %q, want %q", body["error"], "Not authenticated")
	}
}

func TestUserHandler_Me_InvalidToken_Returns401(t *testing.T) {
	verifier := &mockSessionVerifier{
		verifyFn: func(tokenStr string) (*token.SessionClaims, error) {
			return nil, errors.New("invalid token")
		},
	}
	h := NewUserHandler(verifier)

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "tampered"})
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestUserHandler_Me_ValidSession_ReturnsNameAndRole(t *testing.T) {
	verifier := &mockSessionVerifier{
		verifyFn: func(tokenStr string) (*token.SessionClaims, error) {
			if tokenStr != "session-jwt" {
				t.Errorf("token = %q, want %q", tokenStr, "session-jwt")
			}
			return &token.SessionClaims{
				UserID: "user-1",
				Name:   "Jane",
				Role:   model.RoleStudent,
			}, nil
		},
	}
	h := NewUserHandler(verifier)

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "session-jwt"})
	w := httptest.NewRecorder()

	h.Me(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body := decodeBody(t, resp)
	user, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("body = %v, want user object", body)
	}
	if user["name"] != "Jane" {
		t.Errorf("name = %q, want %q", user["name"], "Jane")
	}
	if user["role"] != model.RoleStudent {
		t.Errorf("role = %q, want %q", user["role"], model.RoleStudent)
	}
}

func TestHealthHandler_Healthy(t *testing.T) {
	h := NewHealthHandler(&mockHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	h.Health(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body := decodeBody(t, resp)
	if body["status"] != "ok" {
		t.Errorf("status = %q, want %q", body["status"], "ok")
	}
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	checker := &mockHealthChecker{
		pingFn: func(ctx context.Context) error {
			return errors.New("connection refused")
		},
	}
	h := NewHealthHandler(checker)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	h.Health(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}
