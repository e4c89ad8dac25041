package builder

import (
	"context"
	"fmt"

	"github.com/shouni/go-http-kit/httpkit"

	"github.com/shouni/go-chibi-kit/internal/config"
	"github.com/shouni/go-chibi-kit/internal/server"
	kitbuilder "github.com/shouni/go-chibi-kit/pkg/builder"
	"github.com/shouni/go-chibi-kit/pkg/runner"
	"github.com/shouni/go-chibi-kit/pkg/session"
)

// BuildAppContext は設定から外部クライアントを初期化して AppContext を組み立てます。
func BuildAppContext(ctx context.Context, cfg *config.Config) (*AppContext, error) {
	aiClient, err := kitbuilder.InitializeAIClient(ctx, cfg.Kit.GeminiAPIKey)
	if err != nil {
		return nil, err
	}
	httpClient := httpkit.New(cfg.Kit.RequestTimeout)

	appCtx := NewAppContext(cfg, httpClient, aiClient.Models, runner.LocalFileWriter{})
	return &appCtx, nil
}

// BuildRunners は単発と全レア度の Runner を構築します。
func BuildRunners(appCtx *AppContext) (*kitbuilder.Runners, error) {
	core := kitbuilder.InitializeImageCore(appCtx.httpClient, appCtx.Config.Kit.ReferenceCacheTTL)
	imgGen, err := kitbuilder.InitializeImageGenerator(core, appCtx.models, appCtx.Config.Kit)
	if err != nil {
		return nil, fmt.Errorf("画像生成クライアントの初期化に失敗したのだ: %w", err)
	}
	return kitbuilder.BuildRunners(imgGen, appCtx.Config.Kit)
}

// BuildSaveRunner は生成画像を保存する Runner を構築します。
func BuildSaveRunner(appCtx *AppContext) (*runner.SaveRunner, error) {
	return runner.NewSaveRunner(appCtx.Writer)
}

// BuildServer は HTTP サーバーのハンドラー一式を構築します。
func BuildServer(appCtx *AppContext) (*server.Server, error) {
	runners, err := BuildRunners(appCtx)
	if err != nil {
		return nil, err
	}
	board := session.NewBoard(appCtx.Config.SessionTTL)

	return server.New(server.Options{
		Single:         runners.Single,
		Rarity:         runners.Rarity,
		Board:          board,
		AllowedOrigins: appCtx.Config.AllowedOrigins,
	})
}
