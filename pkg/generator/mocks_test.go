package generator

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"google.golang.org/genai"
)

// --- Mocks ---

type mockModels struct {
	calls        int
	lastModel    string
	lastParts    []*genai.Part
	lastCfg      *genai.GenerateContentConfig
	hadDeadline  bool
	generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func (m *mockModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.calls++
	m.lastModel = model
	m.lastCfg = config
	if len(contents) > 0 {
		m.lastParts = contents[0].Parts
	}
	_, m.hadDeadline = ctx.Deadline()
	if m.generateFunc != nil {
		return m.generateFunc(ctx, model, contents, config)
	}
	return imageResponse("image/png", []byte("fake")), nil
}

type mockHTTPClient struct {
	calls int
	data  []byte
	err   error
}

func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.calls++
	return m.data, m.err
}

type mockCache struct {
	data map[string]any
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string]any)}
}

func (m *mockCache) Get(key string) (any, bool) {
	val, ok := m.data[key]
	return val, ok
}

func (m *mockCache) Set(key string, value any, d time.Duration) {
	m.data[key] = value
}

// --- Helpers ---

func imageResponse(mimeType string, data []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{
					{Text: "here is your card"},
					{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
				},
			},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func textOnlyResponse(reason genai.FinishReason) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Parts: []*genai.Part{{Text: "sorry"}}},
			FinishReason: reason,
		}},
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{0, 128, 255, 255})
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func allowAllURLs(string) (bool, error) { return true, nil }
