package builder

import (
	"context"
	"testing"

	"github.com/shouni/go-chibi-kit/internal/config"
	"github.com/shouni/go-chibi-kit/pkg/runner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHTTP struct{}

func (stubHTTP) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	return nil, nil
}

func TestNewAppContext(t *testing.T) {
	cfg := config.LoadConfig()
	cfg.Options = config.GenerateOptions{Theme: "Robot", AllRarities: true, OutputDir: "cards"}

	appCtx := NewAppContext(cfg, stubHTTP{}, nil, runner.LocalFileWriter{})

	t.Run("CLI オプションが引き継がれる", func(t *testing.T) {
		assert.Equal(t, "Robot", appCtx.Options.Theme)
		assert.True(t, appCtx.Options.AllRarities)
		assert.Equal(t, "cards", appCtx.Options.OutputDir)
	})

	t.Run("保存 Runner を組み立てられる", func(t *testing.T) {
		saver, err := BuildSaveRunner(&appCtx)
		require.NoError(t, err)
		assert.NotNil(t, saver)
	})

	t.Run("生成クライアントがなければ Runner は組み立てられない", func(t *testing.T) {
		_, err := BuildRunners(&appCtx)
		assert.Error(t, err)
	})
}
