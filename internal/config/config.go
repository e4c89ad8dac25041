package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shouni/go-utils/envutil"

	kitconfig "github.com/shouni/go-chibi-kit/pkg/config"
)

// デフォルト値の定義なのだ
const (
	DefaultPort           = "8080"
	DefaultSessionTTL     = 30 * time.Minute
	DefaultAllowedOrigins = "*"
	DefaultOutputDir      = "output"
)

// Config はアプリケーション全体の環境設定を保持する構造体なのだ。
type Config struct {
	Kit kitconfig.Config

	Port           string
	SessionTTL     time.Duration
	AllowedOrigins []string
	LogLevel       string

	Options GenerateOptions
}

// LoadConfig は .env と環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env ファイルは読み込まれませんでした", "error", err)
	}

	kit := kitconfig.DefaultConfig()
	kit.GeminiAPIKey = envutil.GetEnv("GEMINI_API_KEY", "")
	kit.ImageModel = envutil.GetEnv("IMAGE_GEMINI_MODEL", kitconfig.DefaultImageModel)
	kit.StyleSuffix = envutil.GetEnv("STYLE_SUFFIX", kitconfig.DefaultStyleSuffix)
	kit.RequestTimeout = getDuration("REQUEST_TIMEOUT", kitconfig.DefaultRequestTimeout)
	kit.RateInterval = getDuration("RATE_INTERVAL", kitconfig.DefaultRateInterval)

	return &Config{
		Kit:            kit,
		Port:           envutil.GetEnv("PORT", DefaultPort),
		SessionTTL:     getDuration("SESSION_TTL", DefaultSessionTTL),
		AllowedOrigins: splitList(envutil.GetEnv("ALLOWED_ORIGINS", DefaultAllowedOrigins)),
		LogLevel:       envutil.GetEnv("LOG_LEVEL", "info"),
	}
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	Mode        string // --mode: card / character
	Theme       string // --theme
	Description string // --description
	Rarity      string // --rarity
	Attack      int    // --attack
	Defense     int    // --defense
	Size        string // --size
	Height      string // --height
	Reference   string // --reference-url

	AllRarities bool   // --all-rarities
	OutputDir   string // --out
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		slog.Warn("期間の指定が不正なため既定値を使います", "key", key, "value", raw, "default", def)
		return def
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
