package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	clientCookieName   = "chibi_client"
	clientCookieMaxAge = 60 * 60 * 24 * 30
	clientIDKey        = "client_id"
	requestIDKey       = "request_id"
)

// requestTracking はリクエストIDを付与し、完了時に構造化ログを出します。
func requestTracking() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Set(requestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"request_id", requestID,
			"duration", time.Since(start).Round(time.Millisecond),
			"status_code", status,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		}
		ctx := c.Request.Context()
		switch {
		case status >= http.StatusInternalServerError:
			slog.ErrorContext(ctx, "Request failed with server error", attrs...)
		case status >= http.StatusBadRequest:
			slog.WarnContext(ctx, "Request failed with client error", attrs...)
		default:
			slog.InfoContext(ctx, "Request completed", attrs...)
		}
	}
}

// clientIdentity は chibi_client クッキーでクライアントを識別するのだ。
// クッキーが無いか不正なら新しい UUID を発行します。
func clientIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(clientCookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(clientCookieName, id, clientCookieMaxAge, "/", "", false, true)
		}
		c.Set(clientIDKey, id)
		c.Next()
	}
}

func clientID(c *gin.Context) string {
	return c.GetString(clientIDKey)
}
