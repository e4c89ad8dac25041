package builder

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"google.golang.org/genai"

	"github.com/shouni/go-chibi-kit/pkg/config"
	"github.com/shouni/go-chibi-kit/pkg/generator"
	"github.com/shouni/go-chibi-kit/pkg/prompts"
	"github.com/shouni/go-chibi-kit/pkg/runner"
)

// Runners は1つの生成パイプラインを共有する Runner の組です。
type Runners struct {
	Single *runner.SingleRunner
	Rarity *runner.RarityRunner
}

// InitializeAIClient は Gemini API バックエンドの genai クライアントを初期化します。
func InitializeAIClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY が設定されていません")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return client, nil
}

// InitializeImageCore は参照画像の取得とキャッシュを担う画像処理コアを生成します。
func InitializeImageCore(httpClient generator.HTTPClient, cacheTTL time.Duration) *generator.ImageCore {
	if cacheTTL <= 0 {
		cacheTTL = config.DefaultReferenceCacheTTL
	}
	// 参照画像のダウンロード結果を保持するキャッシュ
	imgCache := cache.New(cacheTTL, config.DefaultReferenceCacheTick)

	return generator.NewImageCore(httpClient, imgCache, cacheTTL)
}

// InitializeImageGenerator は Gemini 画像生成クライアントを初期化します。
func InitializeImageGenerator(core *generator.ImageCore, models generator.ContentGenerator, cfg config.Config) (generator.ImageGenerator, error) {
	imgGen, err := generator.NewGeminiImageClient(core, models, cfg.ImageModel, cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("画像生成クライアントの初期化に失敗しました: %w", err)
	}
	return imgGen, nil
}

// BuildRunners はプロンプトビルダーと画像生成クライアントから Runner 一式を組み立てるのだ。
func BuildRunners(imgGen generator.ImageGenerator, cfg config.Config) (*Runners, error) {
	pb, err := prompts.NewImagePromptBuilder(cfg.StyleSuffix)
	if err != nil {
		return nil, fmt.Errorf("プロンプトビルダーの初期化に失敗しました: %w", err)
	}

	composer, err := runner.NewCardComposer(pb, imgGen, cfg.RateInterval)
	if err != nil {
		return nil, fmt.Errorf("コンポーザーの初期化に失敗しました: %w", err)
	}

	return &Runners{
		Single: runner.NewSingleRunner(composer),
		Rarity: runner.NewRarityRunner(composer),
	}, nil
}
