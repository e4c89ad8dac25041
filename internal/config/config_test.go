package config

import (
	"os"
	"testing"
	"time"

	kitconfig "github.com/shouni/go-chibi-kit/pkg/config"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("未設定なら既定値", func(t *testing.T) {
		for _, k := range []string{"IMAGE_GEMINI_MODEL", "PORT", "REQUEST_TIMEOUT", "RATE_INTERVAL", "SESSION_TTL", "ALLOWED_ORIGINS", "STYLE_SUFFIX"} {
			t.Setenv(k, "")
			os.Unsetenv(k)
		}
		cfg := LoadConfig()
		assert.Equal(t, kitconfig.DefaultImageModel, cfg.Kit.ImageModel)
		assert.Equal(t, DefaultPort, cfg.Port)
		assert.Equal(t, kitconfig.DefaultRequestTimeout, cfg.Kit.RequestTimeout)
		assert.Equal(t, time.Duration(0), cfg.Kit.RateInterval)
		assert.Equal(t, DefaultSessionTTL, cfg.SessionTTL)
		assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
		assert.Equal(t, kitconfig.DefaultStyleSuffix, cfg.Kit.StyleSuffix)
	})

	t.Run("環境変数で上書きできる", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "key")
		t.Setenv("IMAGE_GEMINI_MODEL", "custom-model")
		t.Setenv("PORT", "9090")
		t.Setenv("REQUEST_TIMEOUT", "45s")
		t.Setenv("RATE_INTERVAL", "2s")
		t.Setenv("SESSION_TTL", "5m")
		t.Setenv("ALLOWED_ORIGINS", "http://a.example, http://b.example")

		cfg := LoadConfig()
		assert.Equal(t, "key", cfg.Kit.GeminiAPIKey)
		assert.Equal(t, "custom-model", cfg.Kit.ImageModel)
		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, 45*time.Second, cfg.Kit.RequestTimeout)
		assert.Equal(t, 2*time.Second, cfg.Kit.RateInterval)
		assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
		assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins)
	})

	t.Run("不正な期間は既定値にフォールバック", func(t *testing.T) {
		t.Setenv("REQUEST_TIMEOUT", "soon")
		t.Setenv("SESSION_TTL", "-1m")
		cfg := LoadConfig()
		assert.Equal(t, kitconfig.DefaultRequestTimeout, cfg.Kit.RequestTimeout)
		assert.Equal(t, DefaultSessionTTL, cfg.SessionTTL)
	})
}
