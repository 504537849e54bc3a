// Package model はドメインモデルを定義する。
package model

import "time"

// Post はフィードから取り込んだ投稿の正規化済み表現を表す。
// 一度永続化された後は、Statusを除く全フィールドがイミュータブル。
type Post struct {
	// ID は投稿の安定した同一性文字列。
	// ソースのguid > link > ランダムトークンの優先順位で導出される。
	ID         string     `json:"id"`
	Platform   Platform   `json:"platform"`
	AuthorName string     `json:"authorName"`
	Title      string     `json:"title"`
	Content    string     `json:"content"` // HTMLタグ除去済みプレーンテキスト
	URL        string     `json:"url"`
	Timestamp  time.Time  `json:"timestamp"`
	Status     PostStatus `json:"status"`
	AddedAt    time.Time  `json:"addedAt"`
}

// Platform は投稿の取得元プラットフォームを表す。
type Platform string

const (
	// PlatformReddit はRedditを示す。
	PlatformReddit Platform = "reddit"
	// PlatformTwitter はTwitterを示す。
	PlatformTwitter Platform = "twitter"
	// PlatformLinkedIn はLinkedInを示す。
	PlatformLinkedIn Platform = "linkedin"
)

// ParsePlatform は文字列をPlatformに変換する。
// 既知のプラットフォームでない場合はfalseを返す。
func ParsePlatform(s string) (Platform, bool) {
	switch Platform(s) {
	case PlatformReddit, PlatformTwitter, PlatformLinkedIn:
		return Platform(s), true
	}
	return Platform(s), false
}

// PostStatus は投稿のライフサイクル状態を表す。
// 遷移はpending → removedの一方向のみで、再取り込みでは変化しない。
type PostStatus string

const (
	// PostStatusPending は表示対象の投稿を示す。
	PostStatusPending PostStatus = "pending"
	// PostStatusRemoved は論理削除された投稿を示す。物理削除は行わない。
	PostStatusRemoved PostStatus = "removed"
)

// UnknownAuthor は投稿者を特定できない場合の表示名。
const UnknownAuthor = "Unknown"
