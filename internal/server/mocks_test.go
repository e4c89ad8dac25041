package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shouni/go-chibi-kit/pkg/domain"
	"github.com/shouni/go-chibi-kit/pkg/runner"
)

var errUpstream = fmt.Errorf("%w: upstream returned no image", domain.ErrGenerationFailure)

type mockSingle struct {
	err     error
	lastReq domain.GenerationRequest
}

func (m *mockSingle) Run(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	m.lastReq = req
	if m.err != nil {
		return domain.NewFailureResult(req, m.err), m.err
	}
	return domain.NewSuccessResult(req, &domain.ImageResponse{Data: []byte("png-bytes"), MimeType: "image/png"}), nil
}

// mockRarity は failOn のレア度だけ失敗させ、block が閉じられるまで最初の結果の後で待機できます。
type mockRarity struct {
	mu     sync.Mutex
	failOn domain.Rarity
	block  chan struct{}
	runs   int
	cause  error
}

// stoppedBy は待機中にキャンセルされた場合、その理由を返します。
func (m *mockRarity) stoppedBy() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cause
}

func (m *mockRarity) Run(ctx context.Context, req domain.GenerationRequest, onProgress runner.ProgressFunc) ([]domain.GenerationResult, error) {
	m.mu.Lock()
	m.runs++
	m.mu.Unlock()

	var out []domain.GenerationResult
	for i, r := range domain.Rarities() {
		tierReq := req.WithRarity(r)
		var res domain.GenerationResult
		if r == m.failOn {
			res = domain.NewFailureResult(tierReq, errors.New("tier failed"))
		} else {
			res = domain.NewSuccessResult(tierReq, &domain.ImageResponse{Data: []byte(r.String()), MimeType: "image/png"})
		}
		out = append(out, res)
		if onProgress != nil {
			onProgress(i, res)
		}
		if i == 0 && m.block != nil {
			select {
			case <-m.block:
			case <-ctx.Done():
				m.mu.Lock()
				m.cause = context.Cause(ctx)
				m.mu.Unlock()
				return out, context.Cause(ctx)
			}
		}
	}
	return out, nil
}
