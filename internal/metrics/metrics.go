// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hitoshi/codedojo/internal/model"
)

// Collector は認証イベントのPrometheusメトリクスを収集する。
type Collector struct {
	login         *prometheus.CounterVec
	signup        prometheus.Counter
	codeIssued    *prometheus.CounterVec
	codeVerified  *prometheus.CounterVec
	challenge     *prometheus.CounterVec
	passwordReset prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		login: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codedojo_auth_login_total",
			Help: "ログイン試行の結果別合計数",
		}, []string{"result"}),
		signup: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codedojo_auth_signup_total",
			Help: "新規ユーザー登録の合計数",
		}),
		codeIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codedojo_auth_code_issued_total",
			Help: "発行された検証コードの用途別合計数",
		}, []string{"purpose"}),
		codeVerified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codedojo_auth_code_verified_total",
			Help: "検証コード照合の結果別合計数",
		}, []string{"result"}),
		challenge: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codedojo_auth_challenge_total",
			Help: "ボット対策チャレンジの結果別合計数",
		}, []string{"result"}),
		passwordReset: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codedojo_auth_password_reset_total",
			Help: "パスワード再設定コード発行の合計数",
		}),
	}

	reg.MustRegister(
		c.login,
		c.signup,
		c.codeIssued,
		c.codeVerified,
		c.challenge,
		c.passwordReset,
	)

	return c
}

// RecordLogin はログイン試行の結果を記録する。
func (c *Collector) RecordLogin(success bool) {
	c.login.WithLabelValues(resultLabel(success)).Inc()
}

// RecordSignup は新規ユーザー登録を記録する。
func (c *Collector) RecordSignup() {
	c.signup.Inc()
}

// RecordCodeIssued は検証コードの発行を記録する。
func (c *Collector) RecordCodeIssued(purpose model.CodePurpose) {
	c.codeIssued.WithLabelValues(string(purpose)).Inc()
}

// RecordCodeVerified は検証コード照合の結果を記録する。
func (c *Collector) RecordCodeVerified(success bool) {
	c.codeVerified.WithLabelValues(resultLabel(success)).Inc()
}

// RecordChallenge はボット対策チャレンジの結果を記録する。
func (c *Collector) RecordChallenge(passed bool) {
	c.challenge.WithLabelValues(resultLabel(passed)).Inc()
}

// RecordPasswordReset はパスワード再設定コードの発行を記録する。
func (c *Collector) RecordPasswordReset() {
	c.passwordReset.Inc()
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
