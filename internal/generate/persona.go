// Package generate はAIコメント生成のプロンプト組み立てとオーケストレーションを提供する。
package generate

import (
	"fmt"

	"github.com/vanshika-blip/pulse-backend/internal/model"
)

// personas はプラットフォームごとのペルソナ・文体指示の固定テーブル。
var personas = map[model.Platform]string{
	model.PlatformReddit: "You are a long-time Reddit user. You write casual, witty comments " +
		"that sound like a real person in a comment thread. You are comfortable with light " +
		"sarcasm and internet slang, but you never insult anyone.",
	model.PlatformTwitter: "You are an active Twitter user. You write short, punchy replies " +
		"that fit the fast pace of the timeline. You get to the point immediately and favor " +
		"strong, memorable phrasing.",
	model.PlatformLinkedIn: "You are a professional posting on LinkedIn. You write polished, " +
		"constructive comments in a business-appropriate tone. You highlight insights and add " +
		"value to the discussion without sounding stiff.",
}

// defaultPersona は未知のプラットフォームに対するフォールバックのペルソナ指示。
const defaultPersona = "You are a thoughtful social media user. You write natural, engaging " +
	"comments that add something to the conversation."

// PersonaFor はプラットフォームに対応するペルソナ指示を返す。
// テーブルにないプラットフォームの場合はデフォルトペルソナを返す。
func PersonaFor(platform model.Platform) string {
	if p, ok := personas[platform]; ok {
		return p
	}
	return defaultPersona
}

// BuildTaskPrompt は投稿内容を埋め込んだタスク指示を構築する。
// 応答の形状（ちょうど3件の相異なるコメントをJSON文字列配列のみで返すこと）と
// 文体制約（長さ、トーン、禁止要素）を指示文に織り込む。
// contentが空でないことは呼び出し側（ハンドラー）が保証する。
func BuildTaskPrompt(authorName, content string) string {
	return fmt.Sprintf(`Here is a social media post by %q:

%s

Write exactly 3 distinct comment suggestions replying to this post.

Rules:
- Each comment is 1-2 sentences, under 280 characters.
- The three comments must differ in angle and tone from each other.
- No hashtags, no emojis, no @-mentions, no quotation of the post.
- Do not mention that you are an AI.
- Respond with ONLY a JSON array of 3 strings, no other text and no markdown.
  Example: ["first comment", "second comment", "third comment"]`,
		authorName, content)
}
