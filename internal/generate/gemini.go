package generate

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// TextGenerator は生成バックエンド呼び出しのインターフェース。
// ロール付きの指示（ペルソナ + タスク）を受け取り、生成された生テキストを返す。
type TextGenerator interface {
	Generate(ctx context.Context, persona, task string) (string, error)
}

// GeminiClient はGemini APIを使用したTextGeneratorの実装。
type GeminiClient struct {
	client          *genai.Client
	modelID         string
	maxOutputTokens int32
}

// NewGeminiClient はGeminiClientの新しいインスタンスを生成する。
// maxOutputTokensで生成出力サイズに上限をかける。
func NewGeminiClient(ctx context.Context, apiKey, modelID string, maxOutputTokens int) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client:          client,
		modelID:         modelID,
		maxOutputTokens: int32(maxOutputTokens),
	}, nil
}

// Generate はペルソナをシステム指示、タスクをユーザーメッセージとして
// Geminiを呼び出し、最初の候補のテキストを返す。
// リトライは行わず、失敗は即座に呼び出し元へ報告する。
func (c *GeminiClient) Generate(ctx context.Context, persona, task string) (string, error) {
	m := c.client.GenerativeModel(c.modelID)
	m.SetMaxOutputTokens(c.maxOutputTokens)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(persona)},
	}

	resp, err := m.GenerateContent(ctx, genai.Text(task))
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response candidates from gemini")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt), nil
		}
	}

	return "", fmt.Errorf("no text part in response")
}

// Close は下位のAPIクライアントを閉じる。
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// compile-time interface check
var _ TextGenerator = (*GeminiClient)(nil)
