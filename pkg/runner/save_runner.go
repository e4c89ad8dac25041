package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/shouni/go-chibi-kit/pkg/domain"
)

// OutputWriter は生成画像を保存先へ書き出すためのインターフェースです。
type OutputWriter interface {
	Write(ctx context.Context, path string, data []byte) error
}

// LocalFileWriter はローカルファイルシステムへ書き込む OutputWriter です。
type LocalFileWriter struct{}

// Write は親ディレクトリを作成してからファイルを書き込みます。
func (LocalFileWriter) Write(ctx context.Context, p string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("出力ディレクトリの作成に失敗しました: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("ファイルの書き込みに失敗しました: %w", err)
	}
	return nil
}

// SaveRunner は成功した結果をダウンロード用ファイル名で保存します。
type SaveRunner struct {
	writer OutputWriter
}

// NewSaveRunner は SaveRunner を初期化します。
func NewSaveRunner(writer OutputWriter) (*SaveRunner, error) {
	if writer == nil {
		return nil, fmt.Errorf("OutputWriter は必須です")
	}
	return &SaveRunner{writer: writer}, nil
}

// Run は成功した結果だけを outputDir に保存し、保存先パスを返すのだ。
// 失敗マーカーの結果はスキップします。
func (r *SaveRunner) Run(ctx context.Context, results []domain.GenerationResult, outputDir string) ([]string, error) {
	paths := make([]string, 0, len(results))
	for _, result := range results {
		if !result.Succeeded() {
			slog.WarnContext(ctx, "Skipping failed result", "rarity", result.Rarity, "error", result.Error)
			continue
		}

		img, err := domain.ParseDataURI(result.ImageDataURI)
		if err != nil {
			return paths, fmt.Errorf("画像データの復元に失敗しました (rarity: %s): %w", result.Rarity, err)
		}

		fullPath := path.Join(outputDir, result.FileName)
		if err := r.writer.Write(ctx, fullPath, img.Data); err != nil {
			return paths, fmt.Errorf("画像の保存に失敗しました (%s): %w", fullPath, err)
		}
		slog.InfoContext(ctx, "Image saved", "path", fullPath)
		paths = append(paths, fullPath)
	}
	return paths, nil
}
