package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-chibi-kit/pkg/domain"
	"github.com/shouni/go-chibi-kit/pkg/generator"
	"github.com/shouni/go-chibi-kit/pkg/prompts"

	"golang.org/x/time/rate"
)

const (
	// CardAspectRatio はトレーディングカードの縦長比率です。
	CardAspectRatio = "3:4"
	// CharacterAspectRatio はキャラクター単体画像の比率です。
	CharacterAspectRatio = "1:1"

	defaultRateBurst = 1
)

// ProgressFunc は1件の結果が確定するたびに、その位置と結果を受け取ります。
type ProgressFunc func(index int, result domain.GenerationResult)

// CardComposer はプロンプト構築と画像生成をまとめて1件のカードを作るのだ。
type CardComposer struct {
	PromptBuilder  prompts.ImagePrompt
	ImageGenerator generator.ImageGenerator
	RateLimiter    *rate.Limiter
}

// NewCardComposer は CardComposer を初期化します。
// interval が 0 以下ならリクエスト間隔の制御は行いません。
func NewCardComposer(pb prompts.ImagePrompt, imgGen generator.ImageGenerator, interval time.Duration) (*CardComposer, error) {
	if pb == nil {
		return nil, fmt.Errorf("PromptBuilder は必須です")
	}
	if imgGen == nil {
		return nil, fmt.Errorf("ImageGenerator は必須です")
	}

	var limiter *rate.Limiter
	if interval > 0 {
		limiter = rate.NewLimiter(rate.Every(interval), defaultRateBurst)
	}

	return &CardComposer{
		PromptBuilder:  pb,
		ImageGenerator: imgGen,
		RateLimiter:    limiter,
	}, nil
}

// Compose は1件分のリクエストを処理します。
// 失敗時も失敗マーカー付きの結果を返し、エラーは常に domain.ErrGenerationFailure を含みます。
func (c *CardComposer) Compose(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	if c.RateLimiter != nil {
		if err := c.RateLimiter.Wait(ctx); err != nil {
			return c.fail(req, err)
		}
	}

	prompt, err := c.PromptBuilder.Build(req)
	if err != nil {
		return c.fail(req, fmt.Errorf("プロンプトの構築に失敗しました: %w", err))
	}

	img, err := c.ImageGenerator.GenerateImage(ctx, domain.ImageGenerationRequest{
		Prompt:       prompt,
		ReferenceURL: req.ReferenceURL,
		AspectRatio:  aspectRatioFor(req.Mode),
	})
	if err != nil {
		return c.fail(req, err)
	}

	result := domain.NewSuccessResult(req, img)
	if !result.Succeeded() {
		return result, domain.ErrGenerationFailure
	}
	return result, nil
}

func (c *CardComposer) fail(req domain.GenerationRequest, err error) (domain.GenerationResult, error) {
	if !errors.Is(err, domain.ErrGenerationFailure) {
		err = fmt.Errorf("%w: %w", domain.ErrGenerationFailure, err)
	}
	return domain.NewFailureResult(req, err), err
}

func aspectRatioFor(mode domain.Mode) string {
	if mode == domain.ModeCharacter {
		return CharacterAspectRatio
	}
	return CardAspectRatio
}

// logResult は1件の結果をログに残します。
func logResult(ctx context.Context, logger *slog.Logger, result domain.GenerationResult, err error, startTime time.Time) {
	duration := time.Since(startTime).Round(time.Millisecond)
	if err != nil {
		logger.WarnContext(ctx, "Card generation failed", "duration", duration, "error", err)
		return
	}
	logger.InfoContext(ctx, "Card generation completed", "duration", duration, "file_name", result.FileName)
}
