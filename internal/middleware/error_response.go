// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"encoding/json"
	"net/http"
)

// WriteJSON はJSONレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したレスポンスを提供する。
func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// WriteError は統一エラーフォーマット {"error": message} でレスポンスを書き込む。
// messageには内部情報を含めてはならない。詳細はログのみに記録する。
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, map[string]string{"error": message})
}
