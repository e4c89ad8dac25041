package prompts

import (
	_ "embed"
	"strconv"
	"strings"

	"github.com/shouni/go-chibi-kit/pkg/domain"
)

var (
	//go:embed card.md
	CardPrompt string
	//go:embed character.md
	CharacterPrompt string
)

// allTemplates はモードとテンプレート文字列を紐づけるマップなのだ。
var allTemplates = map[domain.Mode]string{
	domain.ModeCard:      CardPrompt,
	domain.ModeCharacter: CharacterPrompt,
}

// TemplateData はプロンプトテンプレートに渡すデータ構造です。
// 数値は未指定と 0 を区別するため、文字列に変換してから渡します。
type TemplateData struct {
	Subject         string
	Rarity          domain.Rarity
	RarityDirective string
	Attack          string
	Defense         string
	Size            string
	Height          string
	StyleSuffix     string
}

// newTemplateData はリクエストからテンプレート用データを組み立てます。
func newTemplateData(req domain.GenerationRequest, styleSuffix string) TemplateData {
	rarity := req.Rarity
	if !rarity.IsValid() {
		rarity = domain.RarityCommon
	}

	return TemplateData{
		Subject:         BuildSubject(req.Theme, req.Description),
		Rarity:          rarity,
		RarityDirective: RarityDirective(rarity),
		Attack:          formatStat(req.Attack),
		Defense:         formatStat(req.Defense),
		Size:            string(req.Size),
		Height:          strings.TrimSpace(req.Height),
		StyleSuffix:     styleSuffix,
	}
}

// BuildSubject はテーマと追加の説明から主題の一文を作ります。
// 例: "Robot", "holding a sword" -> "A robot themed chibi character. holding a sword"
func BuildSubject(theme, detail string) string {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		theme = "mystery"
	}
	s := "A " + strings.ToLower(theme) + " themed chibi character. " + strings.TrimSpace(detail)
	return strings.TrimSpace(s)
}

func formatStat(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
