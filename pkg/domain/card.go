package domain

import "strings"

// Rarity はカードのレア度（背景と全体の雰囲気を決める品質ティア）なのだ。
type Rarity string

const (
	RarityCommon    Rarity = "Common"
	RarityRare      Rarity = "Rare"
	RarityEpic      Rarity = "Epic"
	RarityLegendary Rarity = "Legendary"
	RarityShiny     Rarity = "Shiny"
)

// rarityOrder は複数レア度生成で使うティアの固定順序です。
var rarityOrder = []Rarity{
	RarityCommon,
	RarityRare,
	RarityEpic,
	RarityLegendary,
	RarityShiny,
}

// Rarities はティア順 (Common→Rare→Epic→Legendary→Shiny) のレア度一覧を返します。
// 呼び出し元が変更しても内部の順序が壊れないよう、毎回コピーを返すのだ。
func Rarities() []Rarity {
	out := make([]Rarity, len(rarityOrder))
	copy(out, rarityOrder)
	return out
}

// ParseRarity は大文字小文字を無視してレア度を解釈します。
func ParseRarity(s string) (Rarity, bool) {
	s = strings.TrimSpace(s)
	for _, r := range rarityOrder {
		if strings.EqualFold(string(r), s) {
			return r, true
		}
	}
	return "", false
}

// IsValid は既知のレア度かどうかを返します。
func (r Rarity) IsValid() bool {
	_, ok := ParseRarity(string(r))
	return ok
}

func (r Rarity) String() string {
	return string(r)
}

// Size はキャラクターの大きさの選択肢です。
type Size string

const (
	SizeTiny   Size = "Tiny"
	SizeSmall  Size = "Small"
	SizeMedium Size = "Medium"
	SizeLarge  Size = "Large"
	SizeGiant  Size = "Giant"
)

var sizeOrder = []Size{SizeTiny, SizeSmall, SizeMedium, SizeLarge, SizeGiant}

// Sizes は選択可能なサイズ一覧を返します。
func Sizes() []Size {
	out := make([]Size, len(sizeOrder))
	copy(out, sizeOrder)
	return out
}

// ParseSize は大文字小文字を無視してサイズを解釈します。
func ParseSize(s string) (Size, bool) {
	s = strings.TrimSpace(s)
	for _, v := range sizeOrder {
		if strings.EqualFold(string(v), s) {
			return v, true
		}
	}
	return "", false
}

// themes はフォームで選べるキャラクターテーマの固定リストなのだ。
var themes = []string{
	"Pirate", "Ninja", "Ice Cream", "Robot", "Unicorn",
	"Wizard", "Cat", "Astronaut", "Superhero", "Dragon",
	"Fairy", "Alien", "Zombie", "Vampire", "Ghost",
}

// Themes は選択可能なテーマ一覧を返します。
func Themes() []string {
	out := make([]string, len(themes))
	copy(out, themes)
	return out
}

// CanonicalTheme は入力を固定リスト上の正規表記に変換します。
// 見つからない場合は false を返します。
func CanonicalTheme(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, t := range themes {
		if strings.EqualFold(t, s) {
			return t, true
		}
	}
	return "", false
}

// Mode は生成する成果物の種類です。
type Mode string

const (
	// ModeCard は攻撃力・防御力つきのバトルカードを生成します。
	ModeCard Mode = "card"
	// ModeCharacter はカード枠なしのちびキャラ単体を生成します。
	ModeCharacter Mode = "character"
)

// ParseMode はモード文字列を解釈します。空文字はカードモードとして扱うのだ。
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeCard):
		return ModeCard, true
	case string(ModeCharacter):
		return ModeCharacter, true
	default:
		return "", false
	}
}

// フォームの初期値（元アプリのデフォルトと同じ）
const (
	DefaultTheme   = "Pirate"
	DefaultRarity  = RarityCommon
	DefaultAttack  = 10
	DefaultDefense = 10
	DefaultSize    = SizeMedium
	DefaultHeight  = "5cm"

	// MaxStatValue は攻撃力・防御力の上限です。
	MaxStatValue = 100
	// MaxHeightLength は身長欄の最大文字数です。
	MaxHeightLength = 20
)
