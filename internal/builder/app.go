package builder

import (
	"github.com/shouni/go-chibi-kit/internal/config"
	"github.com/shouni/go-chibi-kit/pkg/generator"
	"github.com/shouni/go-chibi-kit/pkg/runner"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各Build関数に渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config     *config.Config             // Configは、環境変数から読み込まれたグローバルな設定です（APIキー、モデル名など）。
	Options    config.GenerateOptions     // Optionsは、コマンドラインから渡された実行時の設定です。
	Writer     runner.OutputWriter        // Writerは、生成画像を保存するための出力先です。
	models     generator.ContentGenerator // models はGeminiの通信に使う共通クライアント
	httpClient generator.HTTPClient       // httpClient は参照画像の取得に使う共通クライアント
}

// NewAppContext は AppContext の新しいインスタンスを生成する
func NewAppContext(
	cfg *config.Config,
	httpClient generator.HTTPClient,
	models generator.ContentGenerator,
	writer runner.OutputWriter,
) AppContext {
	return AppContext{
		Config:     cfg,
		Options:    cfg.Options,
		Writer:     writer,
		models:     models,
		httpClient: httpClient,
	}
}
