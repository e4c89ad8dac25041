package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shouni/go-chibi-kit/pkg/domain"
	"github.com/shouni/go-chibi-kit/pkg/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, single *mockSingle, rarity *mockRarity) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s, err := New(Options{
		Single: single,
		Rarity: rarity,
		Board:  session.NewBoard(time.Minute),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close(context.Background())
	})
	return s
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func clientCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == clientCookieName {
			return c
		}
	}
	return nil
}

func waitDone(t *testing.T, h http.Handler, id string, cookie *http.Cookie) session.Snapshot {
	t.Helper()
	var snap session.Snapshot
	require.Eventually(t, func() bool {
		rr := doJSON(t, h, http.MethodGet, "/api/generations/"+id, nil, cookie)
		if rr.Code != http.StatusOK {
			return false
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
		return snap.Done
	}, 2*time.Second, 10*time.Millisecond)
	return snap
}

func TestContentDisposition(t *testing.T) {
	t.Run("ASCII の名前はそのまま", func(t *testing.T) {
		assert.Equal(t, `attachment; filename="ChibiCard-Robot-Epic-A10-D10.png"`, contentDisposition("ChibiCard-Robot-Epic-A10-D10.png"))
	})

	t.Run("ASCII 以外は filename* で渡す", func(t *testing.T) {
		got := contentDisposition("ChibiCharacter-Cat-Rare-Tiny-5センチ.png")
		assert.True(t, strings.HasPrefix(got, `attachment; filename="ChibiCharacter-Cat-Rare-Tiny-5___.png"`), got)
		assert.Contains(t, got, "filename*=UTF-8''ChibiCharacter-Cat-Rare-Tiny-5%E3%82%BB%E3%83%B3%E3%83%81.png")
		for _, r := range got {
			assert.LessOrEqual(t, r, rune(0x7e), "ヘッダー値は ASCII のみ")
		}
	})
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Options{Rarity: &mockRarity{}, Board: session.NewBoard(0)})
	assert.Error(t, err)
	_, err = New(Options{Single: &mockSingle{}, Board: session.NewBoard(0)})
	assert.Error(t, err)
	_, err = New(Options{Single: &mockSingle{}, Rarity: &mockRarity{}})
	assert.Error(t, err)
}

func TestStaticRoutes(t *testing.T) {
	h := newTestServer(t, &mockSingle{}, &mockRarity{}).Handler()

	t.Run("ヘルスチェック", func(t *testing.T) {
		rr := doJSON(t, h, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "healthy")
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	})

	t.Run("フォーム画面", func(t *testing.T) {
		rr := doJSON(t, h, http.MethodGet, "/", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rr.Body.String(), "Chibi Card Generator")
	})

	t.Run("選択肢と既定値", func(t *testing.T) {
		rr := doJSON(t, h, http.MethodGet, "/api/options", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var opts optionsResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &opts))
		assert.Equal(t, domain.Themes(), opts.Themes)
		assert.Equal(t, domain.Rarities(), opts.Rarities)
		assert.Equal(t, domain.DefaultTheme, opts.Defaults.Theme)
		assert.Equal(t, domain.MaxStatValue, opts.Limits["maxStat"])
		assert.NotNil(t, clientCookie(rr), "初回アクセスでクライアントIDが発行される")
	})
}

func TestGenerateCard(t *testing.T) {
	t.Run("成功すると data URI を返す", func(t *testing.T) {
		single := &mockSingle{}
		h := newTestServer(t, single, &mockRarity{}).Handler()

		rr := doJSON(t, h, http.MethodPost, "/api/cards", map[string]any{"theme": "robot", "rarity": "epic"})
		require.Equal(t, http.StatusOK, rr.Code)

		var resp cardResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.True(t, resp.OK)
		assert.Equal(t, messageGenerated, resp.Message)
		require.NotNil(t, resp.Result)
		assert.True(t, strings.HasPrefix(resp.Result.ImageDataURI, "data:image/png;base64,"))
		assert.Equal(t, "ChibiCard-Robot-Epic-A10-D10.png", resp.Result.FileName)

		assert.Equal(t, "Robot", single.lastReq.Theme, "テーマは正規表記にそろう")
		assert.Equal(t, domain.RarityEpic, single.lastReq.Rarity)
	})

	t.Run("検証エラーは400", func(t *testing.T) {
		h := newTestServer(t, &mockSingle{}, &mockRarity{}).Handler()

		cases := []map[string]any{
			{"theme": "Banana", "rarity": "Common"},
			{"theme": "Robot", "rarity": "Mythic"},
			{"theme": "Robot", "rarity": "Common", "attack": 101},
			{"theme": "Robot", "rarity": "Common", "height": strings.Repeat("x", 21)},
		}
		for _, body := range cases {
			rr := doJSON(t, h, http.MethodPost, "/api/cards", body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, "body: %v", body)
			assert.Contains(t, rr.Body.String(), messageInvalid)
		}
	})

	t.Run("壊れた JSON は400", func(t *testing.T) {
		h := newTestServer(t, &mockSingle{}, &mockRarity{}).Handler()
		req := httptest.NewRequest(http.MethodPost, "/api/cards", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("生成失敗は502と失敗メッセージ", func(t *testing.T) {
		h := newTestServer(t, &mockSingle{err: errUpstream}, &mockRarity{}).Handler()

		rr := doJSON(t, h, http.MethodPost, "/api/cards", map[string]any{"theme": "Robot", "rarity": "Epic"})
		require.Equal(t, http.StatusBadGateway, rr.Code)

		var resp cardResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.False(t, resp.OK)
		assert.Equal(t, messageFailed, resp.Message)
		assert.NotEmpty(t, resp.Error)
	})
}

func TestGenerateRarities(t *testing.T) {
	t.Run("全レア度の進捗と画像ダウンロード", func(t *testing.T) {
		h := newTestServer(t, &mockSingle{}, &mockRarity{failOn: domain.RarityLegendary}).Handler()

		rr := doJSON(t, h, http.MethodPost, "/api/cards/rarities", map[string]any{"theme": "Robot", "rarity": "Common"})
		require.Equal(t, http.StatusAccepted, rr.Code)
		cookie := clientCookie(rr)
		require.NotNil(t, cookie)

		var start startResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &start))
		assert.Equal(t, 5, start.Total)

		snap := waitDone(t, h, start.ID, cookie)
		require.Len(t, snap.Results, 5)
		for i, res := range snap.Results {
			assert.Equal(t, domain.Rarities()[i], res.Rarity)
			assert.Equal(t, res.Rarity != domain.RarityLegendary, res.Succeeded())
		}

		dl := doJSON(t, h, http.MethodGet, "/api/generations/"+start.ID+"/images/epic", nil, cookie)
		require.Equal(t, http.StatusOK, dl.Code)
		assert.Equal(t, `attachment; filename="ChibiCard-Robot-Epic-A10-D10.png"`, dl.Header().Get("Content-Disposition"))
		assert.Equal(t, "image/png", dl.Header().Get("Content-Type"))
		assert.Equal(t, "Epic", dl.Body.String())

		failed := doJSON(t, h, http.MethodGet, "/api/generations/"+start.ID+"/images/Legendary", nil, cookie)
		assert.Equal(t, http.StatusNotFound, failed.Code)

		bad := doJSON(t, h, http.MethodGet, "/api/generations/"+start.ID+"/images/Mythic", nil, cookie)
		assert.Equal(t, http.StatusBadRequest, bad.Code)
	})

	t.Run("新しい送信で古い生成は参照できなくなる", func(t *testing.T) {
		rarity := &mockRarity{block: make(chan struct{})}
		h := newTestServer(t, &mockSingle{}, rarity).Handler()

		first := doJSON(t, h, http.MethodPost, "/api/cards/rarities", map[string]any{"theme": "Cat", "rarity": "Common"})
		require.Equal(t, http.StatusAccepted, first.Code)
		cookie := clientCookie(first)
		var firstStart startResponse
		require.NoError(t, json.Unmarshal(first.Body.Bytes(), &firstStart))

		close(rarity.block)
		second := doJSON(t, h, http.MethodPost, "/api/cards/rarities", map[string]any{"theme": "Dragon", "rarity": "Common"}, cookie)
		require.Equal(t, http.StatusAccepted, second.Code)
		var secondStart startResponse
		require.NoError(t, json.Unmarshal(second.Body.Bytes(), &secondStart))

		old := doJSON(t, h, http.MethodGet, "/api/generations/"+firstStart.ID, nil, cookie)
		assert.Equal(t, http.StatusNotFound, old.Code)

		snap := waitDone(t, h, secondStart.ID, cookie)
		assert.Equal(t, "Dragon", snap.Theme)
		assert.Len(t, snap.Results, 5)
	})

	t.Run("単発生成の送信で実行中の全レア度生成が止まる", func(t *testing.T) {
		rarity := &mockRarity{block: make(chan struct{})}
		defer close(rarity.block)
		h := newTestServer(t, &mockSingle{}, rarity).Handler()

		start := doJSON(t, h, http.MethodPost, "/api/cards/rarities", map[string]any{"theme": "Cat", "rarity": "Common"})
		require.Equal(t, http.StatusAccepted, start.Code)
		cookie := clientCookie(start)
		var started startResponse
		require.NoError(t, json.Unmarshal(start.Body.Bytes(), &started))

		single := doJSON(t, h, http.MethodPost, "/api/cards", map[string]any{"theme": "Robot", "rarity": "Epic"}, cookie)
		require.Equal(t, http.StatusOK, single.Code)

		require.Eventually(t, func() bool {
			return errors.Is(rarity.stoppedBy(), session.ErrSuperseded)
		}, 2*time.Second, 10*time.Millisecond)

		old := doJSON(t, h, http.MethodGet, "/api/generations/"+started.ID, nil, cookie)
		assert.Equal(t, http.StatusNotFound, old.Code)
	})

	t.Run("別クライアントの単発生成では止まらない", func(t *testing.T) {
		rarity := &mockRarity{block: make(chan struct{})}
		h := newTestServer(t, &mockSingle{}, rarity).Handler()

		start := doJSON(t, h, http.MethodPost, "/api/cards/rarities", map[string]any{"theme": "Cat", "rarity": "Common"})
		require.Equal(t, http.StatusAccepted, start.Code)
		cookie := clientCookie(start)
		var started startResponse
		require.NoError(t, json.Unmarshal(start.Body.Bytes(), &started))

		other := doJSON(t, h, http.MethodPost, "/api/cards", map[string]any{"theme": "Robot", "rarity": "Epic"})
		require.Equal(t, http.StatusOK, other.Code)

		close(rarity.block)
		snap := waitDone(t, h, started.ID, cookie)
		assert.Len(t, snap.Results, 5)
		assert.NoError(t, rarity.stoppedBy())
	})

	t.Run("未知のIDは404", func(t *testing.T) {
		h := newTestServer(t, &mockSingle{}, &mockRarity{}).Handler()
		rr := doJSON(t, h, http.MethodGet, "/api/generations/unknown", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
