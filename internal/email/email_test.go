package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/codedojo/internal/model"
)

func TestLogSender_NeverFails(t *testing.T) {
	s := NewLogSender()

	if err := s.Send(context.Background(), "jane@example.com", "subject", "text"); err != nil {
		t.Errorf("Send() error = %v, want nil", err)
	}
}

func TestResendSender_SendsExpectedPayload(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"email-1"}`))
	}))
	defer server.Close()

	s := NewResendSender("api-key-123", "noreply@example.com")
	s.apiURL = server.URL

	err := s.Send(context.Background(), "jane@example.com", "Your verification code", "code body")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if gotAuth != "Bearer api-key-123" {
		t.Errorf("Authorization = %q, want Bearer api-key-123", gotAuth)
	}
	if gotPayload["from"] != "noreply@example.com" {
		t.Errorf("from = %v", gotPayload["from"])
	}
	to, ok := gotPayload["to"].([]any)
	if !ok || len(to) != 1 || to[0] != "jane@example.com" {
		t.Errorf("to = %v, want [jane@example.com]", gotPayload["to"])
	}
	if gotPayload["subject"] != "Your verification code" {
		t.Errorf("subject = %v", gotPayload["subject"])
	}
}

func TestResendSender_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid from address"}`))
	}))
	defer server.Close()

	s := NewResendSender("api-key-123", "bad-from")
	s.apiURL = server.URL

	err := s.Send(context.Background(), "jane@example.com", "subject", "text")
	if err == nil {
		t.Fatal("Send() error = nil, want error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "422") {
		t.Errorf("error = %v, should mention status code", err)
	}
}

func TestService_SendVerificationCode_SubjectPerPurpose(t *testing.T) {
	var gotSubject, gotText string
	sender := &captureSender{
		fn: func(to, subject, text string) {
			gotSubject = subject
			gotText = text
		},
	}
	svc := NewService(sender)

	if err := svc.SendVerificationCode(context.Background(), "jane@example.com", "123456", model.PurposeTwoFactor); err != nil {
		t.Fatalf("SendVerificationCode() error = %v", err)
	}
	if gotSubject != "Your verification code" {
		t.Errorf("subject = %q", gotSubject)
	}
	if !strings.Contains(gotText, "123456") {
		t.Errorf("text %q should contain the code", gotText)
	}

	if err := svc.SendVerificationCode(context.Background(), "jane@example.com", "654321", model.PurposePasswordReset); err != nil {
		t.Fatalf("SendVerificationCode() error = %v", err)
	}
	if gotSubject != "Your password reset code" {
		t.Errorf("subject = %q", gotSubject)
	}
	if !strings.Contains(gotText, "654321") {
		t.Errorf("text %q should contain the code", gotText)
	}
}

type captureSender struct {
	fn func(to, subject, text string)
}

func (c *captureSender) Send(_ context.Context, to, subject, text string) error {
	if c.fn != nil {
		c.fn(to, subject, text)
	}
	return nil
}
