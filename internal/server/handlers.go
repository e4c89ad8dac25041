package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shouni/go-chibi-kit/pkg/domain"
)

// 画面のトースト表示に使うメッセージ
const (
	messageGenerated = "Card Generated!"
	messageFailed    = "Generation Failed"
	messageStarted   = "Generating all rarities..."
	messageInvalid   = "Invalid Request"
)

// cardResponse は単発生成の応答です。
type cardResponse struct {
	OK      bool                     `json:"ok"`
	Message string                   `json:"message"`
	Result  *domain.GenerationResult `json:"result,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

type startResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	ID      string `json:"id"`
	Total   int    `json:"total"`
}

type optionsResponse struct {
	Themes   []string                 `json:"themes"`
	Rarities []domain.Rarity          `json:"rarities"`
	Sizes    []domain.Size            `json:"sizes"`
	Modes    []domain.Mode            `json:"modes"`
	Defaults domain.GenerationRequest `json:"defaults"`
	Limits   map[string]int           `json:"limits"`
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, optionsResponse{
		Themes:   domain.Themes(),
		Rarities: domain.Rarities(),
		Sizes:    domain.Sizes(),
		Modes:    []domain.Mode{domain.ModeCard, domain.ModeCharacter},
		Defaults: domain.DefaultRequest(),
		Limits: map[string]int{
			"maxStat":         domain.MaxStatValue,
			"maxHeightLength": domain.MaxHeightLength,
		},
	})
}

func (s *Server) handleGenerateCard(c *gin.Context) {
	req, ok := bindRequest(c)
	if !ok {
		return
	}

	// 新しい送信なので、同じクライアントの実行中の全レア度生成は止めるのだ
	s.board.Supersede(c.Request.Context(), clientID(c))

	result, err := s.single.Run(c.Request.Context(), req)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, context.Canceled) {
			status = http.StatusRequestTimeout
		}
		c.JSON(status, cardResponse{OK: false, Message: messageFailed, Result: &result, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, cardResponse{OK: true, Message: messageGenerated, Result: &result})
}

func (s *Server) handleGenerateRarities(c *gin.Context) {
	req, ok := bindRequest(c)
	if !ok {
		return
	}

	total := len(domain.Rarities())
	runCtx, token := s.board.Begin(s.baseCtx, clientID(c), req, total)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_, err := s.rarity.Run(runCtx, req, func(_ int, result domain.GenerationResult) {
			s.board.Publish(token, result)
		})
		if !s.board.Finish(token, err) {
			slog.Info("Discarded stale generation", "generation_id", token, "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, startResponse{OK: true, Message: messageStarted, ID: token, Total: total})
}

func (s *Server) handleGetGeneration(c *gin.Context) {
	snap, ok := s.board.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "generation not found"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleDownloadImage(c *gin.Context) {
	snap, ok := s.board.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "generation not found"})
		return
	}
	rarity, ok := domain.ParseRarity(c.Param("rarity"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unknown rarity"})
		return
	}
	result, ok := snap.Result(rarity)
	if !ok || !result.Succeeded() {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "image not available"})
		return
	}

	img, err := domain.ParseDataURI(result.ImageDataURI)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Stored image could not be decoded", "generation_id", snap.ID, "rarity", rarity, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "image could not be decoded"})
		return
	}

	c.Header("Content-Disposition", contentDisposition(result.FileName))
	c.Data(http.StatusOK, img.MimeType, img.Data)
}

// contentDisposition は添付ファイル用のヘッダー値を組み立てます。
// ASCII 以外を含む名前は "_" に置き換えた filename と、RFC 5987 形式の filename* を併記するのだ。
func contentDisposition(name string) string {
	fallback := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, name)

	v := "attachment; filename=" + strconv.Quote(fallback)
	if fallback != name {
		v += "; filename*=UTF-8''" + url.PathEscape(name)
	}
	return v
}

// bindRequest はフォームの初期値の上に JSON を重ねて読み込み、正規化と検証を行います。
// 失敗時は 400 を書き込んで false を返すのだ。
func bindRequest(c *gin.Context) (domain.GenerationRequest, bool) {
	req := domain.DefaultRequest()
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, cardResponse{OK: false, Message: messageInvalid, Error: err.Error()})
		return req, false
	}
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, cardResponse{OK: false, Message: messageInvalid, Error: err.Error()})
		return req, false
	}
	return req, true
}
