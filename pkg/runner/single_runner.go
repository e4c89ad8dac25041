package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/shouni/go-chibi-kit/pkg/domain"
)

// SingleRunner は1回の送信につき1件の画像を生成します。
type SingleRunner struct {
	composer *CardComposer
}

// NewSingleRunner は SingleRunner を初期化します。
func NewSingleRunner(composer *CardComposer) *SingleRunner {
	return &SingleRunner{composer: composer}
}

// Run はリクエストのレア度で1件生成するのだ。
// 失敗しても結果（失敗マーカー）は返すので、呼び出し側は通知だけすればよいのだ。
func (r *SingleRunner) Run(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	logger := slog.With("theme", req.Theme, "rarity", req.Rarity, "mode", req.Mode)
	logger.InfoContext(ctx, "Starting card generation")

	startTime := time.Now()
	result, err := r.composer.Compose(ctx, req)
	logResult(ctx, logger, result, err, startTime)
	return result, err
}
