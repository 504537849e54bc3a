package feed

import (
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"github.com/vanshika-blip/pulse-backend/internal/model"
	"github.com/vanshika-blip/pulse-backend/internal/security"
)

// Normalizer は生のフィードアイテムを正規化済みのPostに変換する。
// 副作用のない純粋な変換であり、同一入力（と同一now）に対して常に同一の結果を返す。
type Normalizer struct {
	stripper security.ContentStripperService
}

// NewNormalizer はNormalizerの新しいインスタンスを生成する。
func NewNormalizer(stripper security.ContentStripperService) *Normalizer {
	return &Normalizer{stripper: stripper}
}

// Normalize は1件のフィードアイテムをPostに変換する。
// フィールド規則:
//   - id: guid > link > ランダムトークン。フィードレベルの同一性が存在する場合は
//     必ずそれを使用し、再フェッチ時に同一投稿が新規と判定されないようにする。
//   - authorName: Dublin Core creator > author > フィードタイトル > "Unknown"。
//   - content: snippet（description） > 本文 > summary拡張の優先順で採用し、
//     HTMLタグ除去とエンティティ畳み込みを適用する。
//   - timestamp: 公開日時。ソースが省略している場合はnow（取り込み時刻）で代用する。
//   - status: pending固定。addedAt: now固定（以後不変）。
func (n *Normalizer) Normalize(item *gofeed.Item, feedTitle string, platform model.Platform, now time.Time) model.Post {
	id := item.GUID
	if id == "" {
		id = item.Link
	}
	if id == "" {
		id = uuid.New().String()
	}

	timestamp := now
	if item.PublishedParsed != nil {
		timestamp = *item.PublishedParsed
	}

	return model.Post{
		ID:         id,
		Platform:   platform,
		AuthorName: resolveAuthor(item, feedTitle),
		Title:      item.Title,
		Content:    n.stripper.Strip(rawContent(item)),
		URL:        item.Link,
		Timestamp:  timestamp,
		Status:     model.PostStatusPending,
		AddedAt:    now,
	}
}

// resolveAuthor は投稿者名をベストエフォートで解決する。
// 優先順位: Dublin Core creator > author > フィードタイトル > "Unknown"。
func resolveAuthor(item *gofeed.Item, feedTitle string) string {
	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 && item.DublinCoreExt.Creator[0] != "" {
		return item.DublinCoreExt.Creator[0]
	}
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	if feedTitle != "" {
		return feedTitle
	}
	return model.UnknownAuthor
}

// rawContent は本文の候補フィールドを優先順で選択する。
// 優先順位: description（snippet相当） > content:encoded > summary拡張。
func rawContent(item *gofeed.Item) string {
	if item.Description != "" {
		return item.Description
	}
	if item.Content != "" {
		return item.Content
	}
	return item.Custom["summary"]
}
