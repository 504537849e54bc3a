package feed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// SSRFValidator はSSRF検証のインターフェース。
// security.SSRFGuardServiceを抽象化してテスタビリティを向上させる。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client
}

// FeedFetcher はフィードURLのフェッチとパースのインターフェース。
type FeedFetcher interface {
	// FetchFeed は指定URLのフィードを取得してパースする。
	FetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error)
}

// HTTPFeedFetcher はSSRF防止付きHTTPクライアントとgofeedによるFeedFetcherの実装。
type HTTPFeedFetcher struct {
	ssrfGuard   SSRFValidator
	timeout     time.Duration
	maxBodySize int64
}

// NewHTTPFeedFetcher はHTTPFeedFetcherの新しいインスタンスを生成する。
func NewHTTPFeedFetcher(ssrfGuard SSRFValidator, timeout time.Duration, maxBodySize int64) *HTTPFeedFetcher {
	return &HTTPFeedFetcher{
		ssrfGuard:   ssrfGuard,
		timeout:     timeout,
		maxBodySize: maxBodySize,
	}
}

// FetchFeed は指定URLのフィードを取得してパースする。
// SSRF検証に失敗したURL、ネットワークエラー、パース不能なボディはエラーを返す。
func (f *HTTPFeedFetcher) FetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	if err := f.ssrfGuard.ValidateURL(feedURL); err != nil {
		return nil, fmt.Errorf("SSRF検証に失敗: %w", err)
	}

	parser := gofeed.NewParser()
	parser.Client = f.ssrfGuard.NewSafeClient(f.timeout, f.maxBodySize)
	parser.UserAgent = "Pulse/1.0 Feed Aggregator"

	parsed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("フィードの取得に失敗: %w", err)
	}

	return parsed, nil
}

// compile-time interface check
var _ FeedFetcher = (*HTTPFeedFetcher)(nil)
