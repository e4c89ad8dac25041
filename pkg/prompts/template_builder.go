package prompts

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/shouni/go-chibi-kit/pkg/domain"
)

// DefaultStyleSuffix はすべてのプロンプトの末尾に付ける共通の画風指定です。
const DefaultStyleSuffix = "chibi anime style, soft cel shading, clean line art, vibrant colors, high quality"

// ImagePromptBuilder はモードごとのテンプレートを保持し、プロンプトを構築します。
type ImagePromptBuilder struct {
	templates   map[domain.Mode]*template.Template
	styleSuffix string
}

// NewImagePromptBuilder は埋め込みテンプレートを解析して ImagePromptBuilder を初期化します。
func NewImagePromptBuilder(styleSuffix string) (*ImagePromptBuilder, error) {
	parsedTemplates := make(map[domain.Mode]*template.Template, len(allTemplates))
	for mode, content := range allTemplates {
		if content == "" {
			return nil, fmt.Errorf("プロンプトテンプレート '%s' (go:embed) の読み込みに失敗しました: 内容が空です", mode)
		}

		tmpl, err := template.New(string(mode)).Option("missingkey=error").Parse(content)
		if err != nil {
			return nil, fmt.Errorf("プロンプト '%s' の解析に失敗: %w", mode, err)
		}
		parsedTemplates[mode] = tmpl
	}

	return &ImagePromptBuilder{
		templates:   parsedTemplates,
		styleSuffix: strings.TrimSpace(styleSuffix),
	}, nil
}

// Build はリクエストのモードに応じたテンプレートを実行します。
// 未知のモードはカード用テンプレートで組み立てるのだ。
func (b *ImagePromptBuilder) Build(req domain.GenerationRequest) (string, error) {
	mode, ok := domain.ParseMode(string(req.Mode))
	if !ok {
		mode = domain.ModeCard
	}
	tmpl := b.templates[mode]

	var sb strings.Builder
	if err := tmpl.Execute(&sb, newTemplateData(req, b.styleSuffix)); err != nil {
		return "", fmt.Errorf("プロンプトテンプレートの実行に失敗しました: %w", err)
	}

	return strings.TrimSpace(sb.String()), nil
}
