package generate

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/vanshika-blip/pulse-backend/internal/model"
)

// commentCount は1回の生成で要求・検証するコメント件数。
const commentCount = 3

// GenerateMetrics は生成結果のメトリクス記録インターフェース。
type GenerateMetrics interface {
	RecordGenerateSuccess()
	RecordGenerateFailure(reason string)
}

// Service はコメント生成のオーケストレーションを行う。
// プロンプト組み立て、バックエンド呼び出し、構造化出力の解析と検証を担当し、
// バックエンド障害（GENERATION_FAILED）と出力構造不正（MALFORMED_GENERATION）を
// 区別して報告する。リトライはどこでも行わない。
type Service struct {
	generator TextGenerator
	metrics   GenerateMetrics
	logger    *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(generator TextGenerator, metrics GenerateMetrics, logger *slog.Logger) *Service {
	return &Service{
		generator: generator,
		metrics:   metrics,
		logger:    logger,
	}
}

// GenerateComments は指定プラットフォームのペルソナで投稿へのコメント候補を生成する。
// 成功時はちょうど3件のコメントを返す。部分的な成功は報告しない（全件か失敗か）。
// 意味的な正しさや安全性は保証せず、構造的な整形式性のみを検証する。
func (s *Service) GenerateComments(ctx context.Context, platform model.Platform, authorName, content string) ([]string, error) {
	persona := PersonaFor(platform)
	task := BuildTaskPrompt(authorName, content)

	reply, err := s.generator.Generate(ctx, persona, task)
	if err != nil {
		s.logger.Error("生成バックエンドの呼び出しに失敗しました",
			slog.String("platform", string(platform)),
			slog.String("error", err.Error()),
		)
		s.metrics.RecordGenerateFailure("backend")
		return nil, model.NewGenerationFailedError(err)
	}

	comments, err := parseComments(reply)
	if err != nil {
		s.logger.Error("生成結果の解析に失敗しました",
			slog.String("platform", string(platform)),
			slog.String("error", err.Error()),
		)
		s.metrics.RecordGenerateFailure("parse")
		return nil, model.NewMalformedGenerationError(err.Error())
	}

	s.metrics.RecordGenerateSuccess()
	return comments, nil
}

// parseComments は生成された生テキストからコメント配列を抽出・検証する。
// Markdownコードフェンスを除去した上でJSON配列としてデコードし、
// ちょうど3件の空でない文字列であることを検証する。
// 解析に失敗した場合は黙って補正せず、エラーを返す。
func parseComments(reply string) ([]string, error) {
	cleaned := stripCodeFences(reply)

	var comments []string
	if err := json.Unmarshal([]byte(cleaned), &comments); err != nil {
		return nil, &parseError{reason: "応答がJSON配列ではありません"}
	}

	if len(comments) != commentCount {
		return nil, &parseError{reason: "コメント件数が3件ではありません"}
	}

	for _, c := range comments {
		if strings.TrimSpace(c) == "" {
			return nil, &parseError{reason: "空のコメントが含まれています"}
		}
	}

	return comments, nil
}

// parseError は生成結果の構造不正を表す。
type parseError struct {
	reason string
}

func (e *parseError) Error() string {
	return e.reason
}

// stripCodeFences は応答テキストの前後の空白とMarkdownコードフェンスを除去する。
func stripCodeFences(reply string) string {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
