package domain

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	unsafeFileChar = regexp.MustCompile(`[/\\:*?"<>|]`)
)

// DownloadFileName はダウンロード時のファイル名を組み立てます。
// 同じ入力からは常に同じ名前を返し、テーマやレア度の空白は "_" に置き換えるのだ。
//
//	card:      ChibiCard-<theme>-<rarity>-A<attack>-D<defense>.png
//	character: ChibiCharacter-<theme>-<rarity>-<size>-<height>.png
func DownloadFileName(req GenerationRequest, mimeType string) string {
	theme := fileNamePart(req.Theme, "Chibi")
	rarity := fileNamePart(string(req.Rarity), "Card")

	parts := []string{"ChibiCard", theme, rarity}
	if req.Mode == ModeCharacter {
		parts[0] = "ChibiCharacter"
		if req.Size != "" {
			parts = append(parts, fileNamePart(string(req.Size), ""))
		}
		if req.Height != "" {
			parts = append(parts, fileNamePart(req.Height, ""))
		}
	} else {
		if req.Attack != nil {
			parts = append(parts, "A"+strconv.Itoa(*req.Attack))
		}
		if req.Defense != nil {
			parts = append(parts, "D"+strconv.Itoa(*req.Defense))
		}
	}

	return strings.Join(parts, "-") + FileExtension(mimeType)
}

func fileNamePart(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	s = whitespaceRun.ReplaceAllString(s, "_")
	return unsafeFileChar.ReplaceAllString(s, "_")
}
