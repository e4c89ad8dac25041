package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-chibi-kit/pkg/domain"
)

// RarityRunner は全レア度ぶんの画像を、ティア順に1件ずつ生成します。
type RarityRunner struct {
	composer *CardComposer
}

// NewRarityRunner は RarityRunner を初期化します。
func NewRarityRunner(composer *CardComposer) *RarityRunner {
	return &RarityRunner{composer: composer}
}

// Run は Common→Rare→Epic→Legendary→Shiny の順に逐次生成します。
// 各ティアは独立していて、失敗しても失敗マーカーを記録して次へ進むのだ。
// 結果は確定するたびに onProgress へ渡され、戻り値は常にティア数ぶんの結果です。
// ctx がキャンセルされた場合、残りのティアは失敗として記録し、キャンセル理由を返します。
func (r *RarityRunner) Run(ctx context.Context, req domain.GenerationRequest, onProgress ProgressFunc) ([]domain.GenerationResult, error) {
	rarities := domain.Rarities()
	results := make([]domain.GenerationResult, 0, len(rarities))

	slog.InfoContext(ctx, "Starting multi-rarity generation", "theme", req.Theme, "tiers", len(rarities))

	succeeded := 0
	for i, rarity := range rarities {
		tierReq := req.WithRarity(rarity)

		var result domain.GenerationResult
		if cause := context.Cause(ctx); cause != nil {
			result = domain.NewFailureResult(tierReq, fmt.Errorf("%w: %w", domain.ErrGenerationFailure, cause))
		} else {
			logger := slog.With("tier_index", i+1, "rarity", rarity)
			startTime := time.Now()

			var err error
			result, err = r.composer.Compose(ctx, tierReq)
			logResult(ctx, logger, result, err, startTime)
		}

		if result.Succeeded() {
			succeeded++
		}
		results = append(results, result)
		if onProgress != nil {
			onProgress(i, result)
		}
	}

	slog.InfoContext(ctx, "Multi-rarity generation finished", "succeeded", succeeded, "failed", len(results)-succeeded)
	return results, context.Cause(ctx)
}
