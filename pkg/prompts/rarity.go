package prompts

import "github.com/shouni/go-chibi-kit/pkg/domain"

// rarityDirectives はレア度ごとの背景指示文（1ティアにつき固定の1文）なのだ。
var rarityDirectives = map[domain.Rarity]string{
	domain.RarityCommon:    "Simple, clean, or blank background. Minimal extra effects.",
	domain.RarityRare:      "Cool blue-themed background. May include subtle patterns, light water or air-like effects.",
	domain.RarityEpic:      "Impressive purple-themed background. Could feature magical glows, swirling energy, or arcane symbols.",
	domain.RarityLegendary: "Majestic golden or bright yellow-themed background. Should feel powerful and prestigious, possibly with ornate details, sunbeam effects, or a regal aura.",
	domain.RarityShiny:     "Vibrant, sparkling, holographic-style background with prominent stars, glitter, and rainbow refractions. The character itself might also have a slight shimmer.",
}

// RarityDirective はレア度に対応する指示文を返します。
// 未知のレア度は Common の指示文にフォールバックします。
func RarityDirective(r domain.Rarity) string {
	if parsed, ok := domain.ParseRarity(string(r)); ok {
		return rarityDirectives[parsed]
	}
	return rarityDirectives[domain.RarityCommon]
}
