// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentStripperService はフィード記事のHTMLコンテンツをプレーンテキストに変換し、
// XSS攻撃などのセキュリティリスクからユーザーを保護する。
// bluemondayライブラリの全タグ除去ポリシーを使用し、
// 残ったHTMLエンティティは空白に畳み込む。
package security

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentStripperService はHTMLコンテンツのプレーンテキスト化のインターフェースを定義する。
// 投稿の正規化時に使用される。
type ContentStripperService interface {
	// Strip はHTMLコンテンツからタグを全て除去し、
	// HTMLエンティティ（&amp;等）を空白1文字に置換したテキストを返す。
	// 前後の空白はトリムする。
	// 不正なマークアップに対しても失敗せず、ベストエフォートで除去した結果を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Strip(rawHTML string) string
}

// entityPattern はHTMLエンティティ（名前参照・数値参照）にマッチする。
var entityPattern = regexp.MustCompile(`&#?[a-zA-Z0-9]+;`)

// contentStripper はContentStripperServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフに変換処理を行う。
type contentStripper struct {
	policy *bluemonday.Policy
}

// NewContentStripper はContentStripperServiceの新しいインスタンスを生成する。
// StrictPolicyは許可タグを持たないため、全てのタグが除去される。
// script等の危険なタグもタグごと本文から落とされる。
func NewContentStripper() *contentStripper {
	return &contentStripper{
		policy: bluemonday.StrictPolicy(),
	}
}

// Strip はHTMLコンテンツからタグを除去し、エンティティを空白に畳み込む。
func (s *contentStripper) Strip(rawHTML string) string {
	if rawHTML == "" {
		return ""
	}

	// タグ除去。bluemondayは不正なマークアップでもパニックせず、
	// パース可能な範囲でベストエフォートの結果を返す。
	text := s.policy.Sanitize(rawHTML)

	// エンティティの畳み込み。デコードではなく空白への置換とすることで、
	// 実体参照経由のマークアップ再構成を防ぐ。
	text = entityPattern.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}
