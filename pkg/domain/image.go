package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DefaultImageMimeType は MIME タイプ不明の画像に使う既定値です。
const DefaultImageMimeType = "image/png"

// ImageGenerationRequest は画像生成クライアントへの単一の要求です。
type ImageGenerationRequest struct {
	Prompt       string
	SystemPrompt string
	ReferenceURL string
	AspectRatio  string
}

// ImageResponse は生成された画像データとそのメタデータです。
type ImageResponse struct {
	Data     []byte
	MimeType string
}

// DataURI は "data:<mimetype>;base64,<data>" 形式の文字列を返します。
func (r *ImageResponse) DataURI() string {
	if r == nil {
		return ""
	}
	mimeType := r.MimeType
	if mimeType == "" {
		mimeType = DefaultImageMimeType
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(r.Data)
}

// ParseDataURI は base64 形式の data URI を ImageResponse に戻します。
func ParseDataURI(uri string) (*ImageResponse, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, fmt.Errorf("data URI ではありません")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("data URI にペイロードがありません")
	}
	mimeType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return nil, fmt.Errorf("base64 エンコードされた data URI のみ対応しています")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("data URI のデコードに失敗しました: %w", err)
	}
	if mimeType == "" {
		mimeType = DefaultImageMimeType
	}
	return &ImageResponse{Data: data, MimeType: mimeType}, nil
}

// FileExtension は MIME タイプに対応する拡張子を返します。
func FileExtension(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
