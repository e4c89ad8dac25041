package config

import (
	"time"

	"github.com/shouni/go-chibi-kit/pkg/prompts"
)

// デフォルト値の定義
const (
	DefaultImageModel         = "gemini-2.0-flash-exp"
	DefaultRequestTimeout     = 2 * time.Minute
	DefaultRateInterval       = 0
	DefaultReferenceCacheTTL  = 30 * time.Minute
	DefaultStyleSuffix        = prompts.DefaultStyleSuffix
	DefaultReferenceCacheTick = 10 * time.Minute
)

// Config は Go Chibi Kit の各 Runner を動作させるための基本設定です。
type Config struct {
	// --- Google AI (Gemini API) Settings ---
	GeminiAPIKey string
	ImageModel   string

	// --- Generation Settings ---
	StyleSuffix  string
	RateInterval time.Duration // 0 なら連続リクエストの間隔を空けない

	// --- Timeout & Cache ---
	RequestTimeout    time.Duration
	ReferenceCacheTTL time.Duration
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	return Config{
		ImageModel:        DefaultImageModel,
		StyleSuffix:       DefaultStyleSuffix,
		RateInterval:      DefaultRateInterval,
		RequestTimeout:    DefaultRequestTimeout,
		ReferenceCacheTTL: DefaultReferenceCacheTTL,
	}
}
