package generator

import (
	"context"
	"time"

	"github.com/shouni/go-chibi-kit/pkg/domain"
	"google.golang.org/genai"
)

// ImageGenerator はビジネスロジック層が利用する画像生成の窓口です。
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req domain.ImageGenerationRequest) (*domain.ImageResponse, error)
}

// ContentGenerator は Gemini の generateContent 呼び出しを抽象化します。
// *genai.Models がそのまま満たすのだ。
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// HTTPClient は、URLからデータを取得するためのインターフェースです。
type HTTPClient interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// ImageCacher は、取得した参照画像をキャッシュするためのインターフェースです。
type ImageCacher interface {
	Get(key string) (any, bool)
	Set(key string, value any, d time.Duration)
}
