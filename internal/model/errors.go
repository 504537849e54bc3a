// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// 原因カテゴリと対処方法を含み、HTTPレスポンスへのマッピングに使用される。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, feed, store, generation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeStoreUnavailable    = "STORE_UNAVAILABLE"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeMissingContent      = "MISSING_CONTENT"
	ErrCodeGenerationFailed    = "GENERATION_FAILED"
	ErrCodeMalformedGeneration = "MALFORMED_GENERATION"
	ErrCodeFetchFailed         = "FETCH_FAILED"
	ErrCodeInvalidFeedSource   = "INVALID_FEED_SOURCE"
)

// NewStoreUnavailableError はストア障害エラーを生成する。
// ストアに到達できない場合は操作全体を失敗として報告する（フィードのみの部分結果への縮退はしない）。
func NewStoreUnavailableError(err error) *APIError {
	return &APIError{
		Code:     ErrCodeStoreUnavailable,
		Message:  fmt.Sprintf("データストアにアクセスできません: %s", err),
		Category: "store",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewInvalidRequestError はリクエスト解析失敗エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewMissingContentError はコメント生成時のcontent未指定エラーを生成する。
// content未指定のリクエストは生成バックエンドへ送らない。
func NewMissingContentError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingContent,
		Message:  "contentは必須です。",
		Category: "validation",
		Action:   "投稿本文をcontentフィールドに指定してください。",
	}
}

// NewGenerationFailedError は生成バックエンドの呼び出し失敗エラーを生成する。
func NewGenerationFailedError(err error) *APIError {
	return &APIError{
		Code:     ErrCodeGenerationFailed,
		Message:  fmt.Sprintf("コメント生成に失敗しました: %s", err),
		Category: "generation",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewMalformedGenerationError は生成結果の構造不正エラーを生成する。
// バックエンド呼び出し自体の失敗（GENERATION_FAILED）とは区別して報告する。
func NewMalformedGenerationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeMalformedGeneration,
		Message:  fmt.Sprintf("生成結果の解析に失敗しました: %s", reason),
		Category: "generation",
		Action:   "再度お試しください。",
	}
}

// NewInvalidFeedSourceError はフィードソース設定の不正エラーを生成する。
func NewInvalidFeedSourceError(entry string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFeedSource,
		Message:  fmt.Sprintf("フィードソース設定が不正です: %s", entry),
		Category: "feed",
		Action:   "FEED_SOURCESを platform|url のカンマ区切りで指定してください。",
	}
}
