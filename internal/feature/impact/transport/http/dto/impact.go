// Package dto はimpactフィーチャーのリクエスト・レスポンス型を定義します。
package dto

// AnalyzeRequest は影響評価・ブリーフィングの任意のリクエストボディです。
type AnalyzeRequest struct {
	BusinessContext string `json:"business_context" binding:"max=2000"`
}

// ErrorResponse はエラー応答です。
type ErrorResponse struct {
	Error string `json:"error"`
}
