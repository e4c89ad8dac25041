package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/shouni/go-chibi-kit/pkg/domain"
)

const (
	// DefaultTTL は生成状況を保持する既定の期間です。
	DefaultTTL = 30 * time.Minute

	generationKeyPrefix = "gen:"
	clientKeyPrefix     = "client:"
)

var (
	// ErrSuperseded は同じクライアントが新しい生成を開始したことを表します。
	ErrSuperseded = errors.New("superseded by a newer submission")
	// ErrExpired は保持期間が過ぎて生成状況が破棄されたことを表します。
	ErrExpired = errors.New("generation expired")
)

// Snapshot はある時点の生成状況のコピーです。
type Snapshot struct {
	ID        string                    `json:"id"`
	Theme     string                    `json:"theme"`
	Total     int                       `json:"total"`
	Results   []domain.GenerationResult `json:"results"`
	Done      bool                      `json:"done"`
	Error     string                    `json:"error,omitempty"`
	StartedAt time.Time                 `json:"startedAt"`
}

// Result は指定レア度の結果を探します。
func (s Snapshot) Result(rarity domain.Rarity) (domain.GenerationResult, bool) {
	for _, r := range s.Results {
		if r.Rarity == rarity {
			return r, true
		}
	}
	return domain.GenerationResult{}, false
}

type generation struct {
	mu       sync.Mutex
	clientID string
	snapshot Snapshot
	cancel   context.CancelCauseFunc
}

// Board はクライアントごとの現在の生成を追跡するインメモリの掲示板なのだ。
// 生成トークン（ID）が最新でない書き込みは捨てられます。
type Board struct {
	mu    sync.Mutex
	store *cache.Cache
	ttl   time.Duration
}

// NewBoard は Board を初期化します。ttl が 0 以下なら DefaultTTL を使います。
func NewBoard(ttl time.Duration) *Board {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	store := cache.New(ttl, ttl/2)
	store.OnEvicted(func(key string, v any) {
		if g, ok := v.(*generation); ok {
			g.cancel(ErrExpired)
		}
	})
	return &Board{store: store, ttl: ttl}
}

// Begin は clientID の新しい生成を登録し、その生成用のコンテキストとトークンを返します。
// 同じクライアントの実行中の生成はキャンセルされ、以後その書き込みは無視されるのだ。
func (b *Board) Begin(ctx context.Context, clientID string, req domain.GenerationRequest, total int) (context.Context, string) {
	runCtx, cancel := context.WithCancelCause(ctx)
	token := uuid.NewString()

	g := &generation{
		clientID: clientID,
		cancel:   cancel,
		snapshot: Snapshot{
			ID:        token,
			Theme:     req.Theme,
			Total:     total,
			Results:   make([]domain.GenerationResult, 0, total),
			StartedAt: time.Now(),
		},
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.supersedeLocked(ctx, clientID)
	b.store.Set(generationKeyPrefix+token, g, cache.DefaultExpiration)
	b.store.Set(clientKeyPrefix+clientID, token, cache.DefaultExpiration)

	return runCtx, token
}

// Supersede は clientID の実行中の生成をキャンセルして破棄します。
// 単発生成のように掲示板に載らない送信でも、古い生成を止めるために呼ぶのだ。
func (b *Board) Supersede(ctx context.Context, clientID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.supersedeLocked(ctx, clientID)
	b.store.Delete(clientKeyPrefix + clientID)
}

// supersedeLocked は b.mu を保持した状態で呼びます。
func (b *Board) supersedeLocked(ctx context.Context, clientID string) {
	prev, ok := b.store.Get(clientKeyPrefix + clientID)
	if !ok {
		return
	}
	token := prev.(string)
	old, found := b.lookup(token)
	if !found {
		return
	}
	old.cancel(ErrSuperseded)
	b.store.Delete(generationKeyPrefix + token)
	slog.InfoContext(ctx, "Previous generation superseded", "client_id", clientID, "generation_id", token)
}

// Publish は1件の結果を追記します。token が最新でなければ false を返して何もしません。
func (b *Board) Publish(token string, result domain.GenerationResult) bool {
	g, ok := b.current(token)
	if !ok {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.snapshot.Done {
		return false
	}
	g.snapshot.Results = append(g.snapshot.Results, result)
	return true
}

// Finish は生成の完了を記録します。token が最新でなければ false を返します。
func (b *Board) Finish(token string, err error) bool {
	g, ok := b.current(token)
	if !ok {
		return false
	}
	g.mu.Lock()
	g.snapshot.Done = true
	if err != nil {
		g.snapshot.Error = err.Error()
	}
	g.mu.Unlock()

	g.cancel(nil)
	return true
}

// Get は最新の生成の状況を返します。未知または置き換え済みのトークンは見つからない扱いです。
func (b *Board) Get(token string) (Snapshot, bool) {
	g, ok := b.current(token)
	if !ok {
		return Snapshot{}, false
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := g.snapshot
	snap.Results = append([]domain.GenerationResult(nil), g.snapshot.Results...)
	return snap, true
}

// current は token が所有クライアントの最新の生成を指しているときだけ返します。
func (b *Board) current(token string) (*generation, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, ok := b.lookup(token)
	if !ok {
		return nil, false
	}
	latest, ok := b.store.Get(clientKeyPrefix + g.clientID)
	if !ok || latest.(string) != token {
		return nil, false
	}
	return g, true
}

func (b *Board) lookup(token string) (*generation, bool) {
	v, ok := b.store.Get(generationKeyPrefix + token)
	if !ok {
		return nil, false
	}
	g, ok := v.(*generation)
	return g, ok
}

// Len は保持している生成の数を返します。
func (b *Board) Len() int {
	n := 0
	for k := range b.store.Items() {
		if strings.HasPrefix(k, generationKeyPrefix) {
			n++
		}
	}
	return n
}
