package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-chibi-kit/pkg/domain"
	"google.golang.org/genai"
)

// GeminiImageClient は Gemini の画像生成モデルを1回呼び出して画像を取得するクライアントです。
type GeminiImageClient struct {
	imgCore *ImageCore
	models  ContentGenerator
	model   string
	timeout time.Duration
}

// NewGeminiImageClient は GeminiImageClient を初期化するのだ。
// timeout が 0 以下の場合は DefaultRequestTimeout を使います。
func NewGeminiImageClient(core *ImageCore, models ContentGenerator, model string, timeout time.Duration) (*GeminiImageClient, error) {
	if core == nil {
		return nil, fmt.Errorf("core (ImageCore) is required")
	}
	if models == nil {
		return nil, fmt.Errorf("models (ContentGenerator) is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return &GeminiImageClient{
		imgCore: core,
		models:  models,
		model:   model,
		timeout: timeout,
	}, nil
}

// GenerateImage はプロンプト（と任意の参照画像）を送信し、最初に返された画像を取り出すのだ。
// テキストと画像の両方のレスポンスモダリティを要求します。
func (g *GeminiImageClient) GenerateImage(ctx context.Context, req domain.ImageGenerationRequest) (*domain.ImageResponse, error) {
	parts := []*genai.Part{{Text: req.Prompt}}

	if req.ReferenceURL != "" {
		if imgPart := g.imgCore.PrepareImagePart(ctx, req.ReferenceURL); imgPart != nil {
			parts = append(parts, imgPart)
		}
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{modalityText, modalityImage},
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}
	if req.AspectRatio != "" {
		config.ImageConfig = &genai.ImageConfig{AspectRatio: req.AspectRatio}
	}

	contents := []*genai.Content{{Role: userRole, Parts: parts}}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	startTime := time.Now()
	resp, err := g.models.GenerateContent(callCtx, g.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("Gemini画像生成リクエストに失敗しました: %w", err)
	}

	out, err := g.imgCore.ParseToResponse(resp)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "Gemini画像生成が完了したのだ",
		"model", g.model,
		"mime_type", out.MimeType,
		"bytes", len(out.Data),
		"duration", time.Since(startTime).Round(time.Millisecond))
	return out, nil
}
