package server

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/shouni/go-chibi-kit/pkg/domain"
	"github.com/shouni/go-chibi-kit/pkg/runner"
	"github.com/shouni/go-chibi-kit/pkg/session"
)

//go:embed web/index.html
var indexHTML []byte

// SingleGenerator は1件の生成を行う Runner の窓口です。
type SingleGenerator interface {
	Run(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error)
}

// RarityGenerator は全レア度の逐次生成を行う Runner の窓口です。
type RarityGenerator interface {
	Run(ctx context.Context, req domain.GenerationRequest, onProgress runner.ProgressFunc) ([]domain.GenerationResult, error)
}

// Options は Server の依存関係です。
type Options struct {
	Single         SingleGenerator
	Rarity         RarityGenerator
	Board          *session.Board
	AllowedOrigins []string
}

// Server はフォーム画面と JSON API を提供する HTTP ハンドラーなのだ。
type Server struct {
	single SingleGenerator
	rarity RarityGenerator
	board  *session.Board
	engine *gin.Engine

	// バックグラウンド生成の寿命を管理する
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New は依存関係を検証してルーティング済みの Server を返します。
func New(opts Options) (*Server, error) {
	if opts.Single == nil {
		return nil, fmt.Errorf("SingleGenerator は必須です")
	}
	if opts.Rarity == nil {
		return nil, fmt.Errorf("RarityGenerator は必須です")
	}
	if opts.Board == nil {
		return nil, fmt.Errorf("session.Board は必須です")
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	s := &Server{
		single:  opts.Single,
		rarity:  opts.Rarity,
		board:   opts.Board,
		baseCtx: baseCtx,
		cancel:  cancel,
	}
	s.engine = s.routes(opts.AllowedOrigins)
	return s, nil
}

// Handler は http.Server に渡すハンドラーを返します。
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Close は実行中のバックグラウンド生成をキャンセルし、終了を待ちます。
func (s *Server) Close(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("バックグラウンド生成の終了待ちがタイムアウトしました: %w", ctx.Err())
	}
}

func (s *Server) routes(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestTracking())
	r.Use(corsMiddleware(allowedOrigins))

	r.GET("/", s.handleIndex)
	r.GET("/health", s.handleHealth)

	api := r.Group("/api")
	api.Use(clientIdentity())
	{
		api.GET("/options", s.handleOptions)
		api.POST("/cards", s.handleGenerateCard)
		api.POST("/cards/rarities", s.handleGenerateRarities)
		api.GET("/generations/:id", s.handleGetGeneration)
		api.GET("/generations/:id/images/:rarity", s.handleDownloadImage)
	}
	return r
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
