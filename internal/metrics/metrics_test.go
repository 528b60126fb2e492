package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/hitoshi/codedojo/internal/model"
)

func TestCollector_RecordLogin(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordLogin(true)
	c.RecordLogin(true)
	c.RecordLogin(false)

	if got := testutil.ToFloat64(c.login.WithLabelValues("success")); got != 2 {
		t.Errorf("login success count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.login.WithLabelValues("failure")); got != 1 {
		t.Errorf("login failure count = %v, want 1", got)
	}
}

func TestCollector_RecordCodeIssued_PerPurpose(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordCodeIssued(model.PurposeTwoFactor)
	c.RecordCodeIssued(model.PurposePasswordReset)
	c.RecordCodeIssued(model.PurposePasswordReset)

	if got := testutil.ToFloat64(c.codeIssued.WithLabelValues("TWO_FACTOR")); got != 1 {
		t.Errorf("TWO_FACTOR count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.codeIssued.WithLabelValues("PASSWORD_RESET")); got != 2 {
		t.Errorf("PASSWORD_RESET count = %v, want 2", got)
	}
}

func TestCollector_Counters(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordSignup()
	c.RecordPasswordReset()
	c.RecordCodeVerified(true)
	c.RecordChallenge(false)

	if got := testutil.ToFloat64(c.signup); got != 1 {
		t.Errorf("signup count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.passwordReset); got != 1 {
		t.Errorf("password reset count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.codeVerified.WithLabelValues("success")); got != 1 {
		t.Errorf("code verified success count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.challenge.WithLabelValues("failure")); got != 1 {
		t.Errorf("challenge failure count = %v, want 1", got)
	}
}

func TestNewCollector_RegistersWithoutConflict(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	// ラベル付きカウンターは観測されるまでGatherに現れないため、
	// ラベルなしの2つのみが登録直後に見える
	if len(metrics) != 2 {
		t.Errorf("gathered %d metric families, want 2", len(metrics))
	}
}
