package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/shouni/go-chibi-kit/internal/builder"
)

const shutdownTimeout = 10 * time.Second

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "フォーム画面と JSON API を提供する HTTP サーバーを起動するのだ。",
	RunE:  serveCommand,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "待ち受けポート（未指定なら PORT 環境変数）なのだ。")
}

// ginModeFor は LOG_LEVEL が debug のときだけ gin をデバッグモードにします。
func ginModeFor(level string) string {
	if strings.EqualFold(strings.TrimSpace(level), "debug") {
		return gin.DebugMode
	}
	return gin.ReleaseMode
}

func serveCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if servePort != "" {
		cfg.Port = servePort
	}
	gin.SetMode(ginModeFor(cfg.LogLevel))

	appCtx, err := builder.BuildAppContext(ctx, cfg)
	if err != nil {
		return err
	}
	srv, err := builder.BuildServer(appCtx)
	if err != nil {
		return fmt.Errorf("サーバーの構築に失敗したのだ: %w", err)
	}

	httpServer := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		slog.Info("HTTP サーバーを起動するのだ", "addr", httpServer.Addr, "image_model", cfg.Kit.ImageModel)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP サーバーが異常終了したのだ: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		slog.Info("シャットダウンを開始するのだ")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP サーバーの停止に失敗したのだ: %w", err)
		}
		return srv.Close(shutdownCtx)
	})

	return eg.Wait()
}
