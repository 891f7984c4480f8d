package carrier

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/devkarki/shopveda-backend/pkg/errors"
	"github.com/devkarki/shopveda-backend/pkg/logger"
)

const defaultTokenTTL = 240 * time.Hour

// authenticator performs the carrier login call.
type authenticator interface {
	Login(ctx context.Context) (*LoginResponse, error)
}

// TokenStore persists the credential so other processes can reuse it.
type TokenStore interface {
	LoadToken(ctx context.Context) (token string, expiresAt time.Time, err error)
	SaveToken(ctx context.Context, token string, expiresAt time.Time) error
	ClearToken(ctx context.Context) error
}

// SharedCache is the cross-instance token slot (Redis in production). A nil
// cache degrades to per-process memory plus the persisted store.
type SharedCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CarrierTokenKey() string
}

type cachedToken struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (c cachedToken) valid(now time.Time) bool {
	return strings.TrimSpace(c.Value) != "" && now.Before(c.ExpiresAt)
}

// Manager owns the lifecycle of the shared carrier credential. Lookup order
// is memory, shared cache, persisted store, then a fresh login; every branch
// that produces a token writes it through the slower layers.
type Manager struct {
	mu    sync.Mutex
	token cachedToken

	auth   authenticator
	store  TokenStore
	cache  SharedCache
	ttl    time.Duration
	logger *logger.Logger

	now func() time.Time
}

// NewManager builds the token manager. store is required; cache is optional.
func NewManager(auth authenticator, store TokenStore, cache SharedCache, ttl time.Duration, logg *logger.Logger) (*Manager, error) {
	if auth == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConfig, "carrier authenticator required")
	}
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConfig, "carrier token store required")
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Manager{
		auth:   auth,
		store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: logg,
		now:    time.Now,
	}, nil
}

// Token returns the current credential, logging in only when no valid token
// is cached anywhere. Login failures are not retried here; they surface as
// the failure of whichever operation needed the token.
func (m *Manager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.token.valid(now) {
		return m.token.Value, nil
	}

	if tok, ok := m.fromSharedCache(ctx, now); ok {
		m.token = tok
		return tok.Value, nil
	}

	if tok, ok := m.fromStore(ctx, now); ok {
		m.token = tok
		m.writeSharedCache(ctx, tok)
		return tok.Value, nil
	}

	resp, err := m.auth.Login(ctx)
	if err != nil {
		return "", err
	}

	tok := cachedToken{Value: resp.Token, ExpiresAt: now.Add(m.ttl)}
	m.token = tok

	if err := m.store.SaveToken(ctx, tok.Value, tok.ExpiresAt); err != nil {
		// The fresh token is still usable in-process; persistence is a
		// write-through cache, not a second source of truth.
		m.warn(ctx, "persisting carrier token failed", err)
	}
	m.writeSharedCache(ctx, tok)
	return tok.Value, nil
}

// Invalidate clears every layer so the next Token call performs a fresh
// login. Called when a downstream carrier call reports the token as rejected.
func (m *Manager) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = cachedToken{}
	if m.cache != nil {
		if err := m.cache.Del(ctx, m.cache.CarrierTokenKey()); err != nil {
			m.warn(ctx, "clearing shared carrier token failed", err)
		}
	}
	return m.store.ClearToken(ctx)
}

func (m *Manager) fromSharedCache(ctx context.Context, now time.Time) (cachedToken, bool) {
	if m.cache == nil {
		return cachedToken{}, false
	}
	raw, err := m.cache.Get(ctx, m.cache.CarrierTokenKey())
	if err != nil || raw == "" {
		return cachedToken{}, false
	}
	var tok cachedToken
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return cachedToken{}, false
	}
	if !tok.valid(now) {
		return cachedToken{}, false
	}
	return tok, true
}

func (m *Manager) fromStore(ctx context.Context, now time.Time) (cachedToken, bool) {
	token, expiresAt, err := m.store.LoadToken(ctx)
	if err != nil || strings.TrimSpace(token) == "" {
		return cachedToken{}, false
	}
	if expiresAt.IsZero() {
		// Legacy rows carry no expiry; adopt the token and let the local
		// cache own the expiry decision from here.
		expiresAt = now.Add(m.ttl)
	}
	tok := cachedToken{Value: token, ExpiresAt: expiresAt}
	if !tok.valid(now) {
		return cachedToken{}, false
	}
	return tok, true
}

func (m *Manager) writeSharedCache(ctx context.Context, tok cachedToken) {
	if m.cache == nil {
		return
	}
	raw, err := json.Marshal(tok)
	if err != nil {
		return
	}
	ttl := time.Until(tok.ExpiresAt)
	if ttl <= 0 {
		return
	}
	if err := m.cache.Set(ctx, m.cache.CarrierTokenKey(), string(raw), ttl); err != nil {
		m.warn(ctx, "writing shared carrier token failed", err)
	}
}

func (m *Manager) warn(ctx context.Context, msg string, err error) {
	if m.logger == nil {
		return
	}
	m.logger.Error(ctx, msg, err)
}
