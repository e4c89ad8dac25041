package generator

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shouni/go-chibi-kit/pkg/domain"
	"github.com/shouni/go-chibi-kit/pkg/imgutil"

	"google.golang.org/genai"
)

// ImageCore は参照画像の準備とレスポンス解析を受け持つ共通コンポーネントです。
type ImageCore struct {
	httpClient HTTPClient
	imageCache ImageCacher
	cacheTTL   time.Duration
	urlChecker func(rawURL string) (bool, error)
}

// NewImageCore は依存関係を注入して ImageCore のインスタンスを生成します。
// httpClient が nil の場合、参照画像は常に無視されます。imageCache も nil を許容します。
func NewImageCore(httpClient HTTPClient, imageCache ImageCacher, cacheTTL time.Duration) *ImageCore {
	return &ImageCore{
		httpClient: httpClient,
		imageCache: imageCache,
		cacheTTL:   cacheTTL,
		urlChecker: isSafeURL,
	}
}

// PrepareImagePart は URL から参照画像を準備して genai.Part に変換します。
// 取得に失敗してもエラーにはせず nil を返し、テキストのみで生成を続行させるのだ。
func (c *ImageCore) PrepareImagePart(ctx context.Context, rawURL string) *genai.Part {
	if rawURL == "" || c.httpClient == nil {
		return nil
	}

	cacheKey := cacheKeyReferenceImage + rawURL
	if c.imageCache != nil {
		if cached, found := c.imageCache.Get(cacheKey); found {
			if data, ok := cached.([]byte); ok {
				return c.ToPart(data)
			}
			slog.WarnContext(ctx, "キャッシュデータが不正な型です", "url", rawURL, "type", fmt.Sprintf("%T", cached))
		}
	}

	// SSRF対策のバリデーション
	if safe, err := c.urlChecker(rawURL); !safe || err != nil {
		slog.WarnContext(ctx, "SSRFの可能性がある、または不正なURLをブロックしました", "url", rawURL, "error", err)
		return nil
	}

	imgBytes, err := c.httpClient.FetchBytes(ctx, rawURL)
	if err != nil {
		slog.WarnContext(ctx, "参照画像のダウンロードに失敗しました。テキストのみで続行します", "url", rawURL, "error", err)
		return nil
	}

	finalData := imgBytes
	if UseImageCompression {
		if compressed, err := imgutil.CompressToJPEG(imgBytes, ImageCompressionQuality); err == nil {
			finalData = compressed
		}
	}

	if c.imageCache != nil {
		c.imageCache.Set(cacheKey, finalData, c.cacheTTL)
	}
	return c.ToPart(finalData)
}

// ToPart はバイト列を genai.Part (InlineData) に変換します。
func (c *ImageCore) ToPart(data []byte) *genai.Part {
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		slog.Warn("MIMEタイプが画像ではないためPartに変換できませんでした", "detected_mime_type", mimeType)
		return nil
	}
	return &genai.Part{
		InlineData: &genai.Blob{
			MIMEType: mimeType,
			Data:     data,
		},
	}
}

// ParseToResponse は Gemini のレスポンスから最初の画像を取り出します。
// 画像が含まれない場合は domain.ErrGenerationFailure をラップしたエラーを返します。
func (c *ImageCore) ParseToResponse(resp *genai.GenerateContentResponse) (*domain.ImageResponse, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return nil, fmt.Errorf("%w: プロンプトがブロックされました (BlockReason: %s)", domain.ErrGenerationFailure, resp.PromptFeedback.BlockReason)
		}
		return nil, fmt.Errorf("%w: Geminiからの有効な応答がありませんでした", domain.ErrGenerationFailure)
	}

	// 最初の候補 (Candidate) のみを利用する。
	candidate := resp.Candidates[0]

	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				mimeType := part.InlineData.MIMEType
				if mimeType == "" {
					mimeType = http.DetectContentType(part.InlineData.Data)
				}
				return &domain.ImageResponse{
					Data:     part.InlineData.Data,
					MimeType: mimeType,
				}, nil
			}
		}
	}

	// 安全フィルター等によるブロックの確認
	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return nil, fmt.Errorf("%w: 画像生成が異常終了しました (FinishReason: %s)", domain.ErrGenerationFailure, candidate.FinishReason)
	}

	return nil, fmt.Errorf("%w: 画像データが見つかりませんでした", domain.ErrGenerationFailure)
}
