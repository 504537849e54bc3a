// Package feed はフィードソースの取得・正規化・集約のドメインロジックを提供する。
package feed

import (
	"strings"

	"github.com/vanshika-blip/pulse-backend/internal/model"
)

// Source は設定されたフィードソース（URL + プラットフォームタグ）を表す。
// プロセス全体で読み取り専用の設定であり、実行時に変更されない。
type Source struct {
	Platform model.Platform
	URL      string
}

// defaultSources はFEED_SOURCES未設定時に使用するフィードソース。
var defaultSources = []Source{
	{Platform: model.PlatformReddit, URL: "https://www.reddit.com/r/programming/.rss"},
	{Platform: model.PlatformReddit, URL: "https://www.reddit.com/r/technology/.rss"},
	{Platform: model.PlatformTwitter, URL: "https://nitter.net/hackernewsbot/rss"},
	{Platform: model.PlatformLinkedIn, URL: "https://www.linkedin.com/news/rss"},
}

// ParseSources はFEED_SOURCES環境変数の値をフィードソース一覧に変換する。
// 形式は "platform|url" のカンマ区切り（例: "reddit|https://example.com/.rss"）。
// 空文字列の場合は組み込みのデフォルトソースを返す。
// 不正なエントリや未知のプラットフォームはエラーを返す。
func ParseSources(raw string) ([]Source, error) {
	if strings.TrimSpace(raw) == "" {
		sources := make([]Source, len(defaultSources))
		copy(sources, defaultSources)
		return sources, nil
	}

	var sources []Source
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.SplitN(entry, "|", 2)
		if len(parts) != 2 {
			return nil, model.NewInvalidFeedSourceError(entry)
		}

		platform, ok := model.ParsePlatform(strings.TrimSpace(parts[0]))
		if !ok {
			return nil, model.NewInvalidFeedSourceError(entry)
		}

		feedURL := strings.TrimSpace(parts[1])
		if feedURL == "" {
			return nil, model.NewInvalidFeedSourceError(entry)
		}

		sources = append(sources, Source{Platform: platform, URL: feedURL})
	}

	if len(sources) == 0 {
		return nil, model.NewInvalidFeedSourceError(raw)
	}

	return sources, nil
}
