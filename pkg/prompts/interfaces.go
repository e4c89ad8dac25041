package prompts

import "github.com/shouni/go-chibi-kit/pkg/domain"

// ImagePrompt は、画像生成用のプロンプトを構築する契約です。
type ImagePrompt interface {
	// Build は、リクエストのモード（card / character）に応じたプロンプト文字列を生成します。
	Build(req domain.GenerationRequest) (string, error)
}
