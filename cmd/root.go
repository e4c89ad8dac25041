package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shouni/go-chibi-kit/internal/config"
)

var (
	cfg  *config.Config
	opts config.GenerateOptions
)

var rootCmd = &cobra.Command{
	Use:               "chibi",
	Short:             "ちびキャラのトレーディングカードを Gemini で生成するのだ。",
	SilenceUsage:      true,
	PersistentPreRunE: preRunAppE,
}

func init() {
	rootCmd.AddCommand(serveCmd, generateCmd)
}

// preRunAppE は、コマンド実行前に設定の読み込みと必須チェックを行うのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	cfg = config.LoadConfig()
	setupLogger(cfg.LogLevel)

	// Gemini APIを利用するため、APIキーの存在チェックは欠かせないのだ！
	if cfg.Kit.GeminiAPIKey == "" {
		return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ")
	}
	return nil
}

func setupLogger(level string) {
	var lv slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lv = slog.LevelDebug
	case "warn", "warning":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv})))
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("コマンドの実行に失敗したのだ", "error", err)
		stop()
		os.Exit(1)
	}
}
