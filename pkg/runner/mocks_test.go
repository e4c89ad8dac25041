package runner

import (
	"context"
	"errors"
	"sync"

	"github.com/shouni/go-chibi-kit/pkg/domain"
)

var errMockAPI = errors.New("mock api error")

// mockPrompt はリクエストのテーマとレア度だけを並べたプロンプトを返します。
type mockPrompt struct {
	err error
}

func (m *mockPrompt) Build(req domain.GenerationRequest) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return req.Theme + ":" + req.Rarity.String(), nil
}

// mockImageGenerator は呼び出しを記録し、failOn に含まれるレア度だけ失敗させます。
type mockImageGenerator struct {
	mu       sync.Mutex
	prompts  []string
	ratios   []string
	failOn   map[string]bool
	onCall   func(n int)
	response *domain.ImageResponse
}

func (m *mockImageGenerator) GenerateImage(ctx context.Context, req domain.ImageGenerationRequest) (*domain.ImageResponse, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, req.Prompt)
	m.ratios = append(m.ratios, req.AspectRatio)
	n := len(m.prompts)
	m.mu.Unlock()

	if m.onCall != nil {
		m.onCall(n)
	}
	if m.failOn[req.Prompt] {
		return nil, errMockAPI
	}
	if m.response != nil {
		return m.response, nil
	}
	return &domain.ImageResponse{Data: []byte("img"), MimeType: "image/png"}, nil
}

func (m *mockImageGenerator) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// mockWriter は書き込まれたデータをメモリに保持します。
type mockWriter struct {
	files map[string][]byte
	err   error
}

func newMockWriter() *mockWriter {
	return &mockWriter{files: make(map[string][]byte)}
}

func (m *mockWriter) Write(ctx context.Context, path string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.files[path] = data
	return nil
}
