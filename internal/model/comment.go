// Package model はドメインモデルを定義する。
package model

import (
	"encoding/json"
	"time"
)

// Comment は保存されたコメントを表す。
// Payloadはクライアントが指定した任意のフィールド（platform、postId、
// authorName、選択したコメント本文など）をそのまま保持する。
// SavedAtはサーバー側で採番され、保存後は一切変更されない。
type Comment struct {
	ID      string
	Payload map[string]any
	SavedAt time.Time
}

// MarshalJSON はPayloadのフィールドを展開し、savedAtを付与してシリアライズする。
// クライアントがsavedAtという名前のフィールドを送ってきた場合はサーバー採番値で上書きする。
func (c Comment) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Payload)+1)
	for k, v := range c.Payload {
		out[k] = v
	}
	out["savedAt"] = c.SavedAt
	return json.Marshal(out)
}

// HistoryLimit はコメント履歴の最大返却件数。
const HistoryLimit = 200
