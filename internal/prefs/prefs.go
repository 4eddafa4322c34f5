// Package prefs persists the visitor's presentation preferences.
package prefs

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/securecookie"
)

// Storage keys.
const (
	KeyTheme    = "site-theme"
	KeyLanguage = "site-language"
)

const (
	defaultCookiePath = "/"
	defaultMaxAge     = 365 * 24 * time.Hour
)

// ErrInvalidConfig indicates the cookie codec was built with unusable keys.
var ErrInvalidConfig = errors.New("prefs: invalid config")

// Storage is a string key/value store for preferences.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// MemoryStorage keeps preferences in process memory.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage returns a store seeded with values.
func NewMemoryStorage(seed map[string]string) *MemoryStorage {
	values := make(map[string]string, len(seed))
	for k, v := range seed {
		values[k] = v
	}
	return &MemoryStorage{values: values}
}

// Get implements Storage.
func (s *MemoryStorage) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set implements Storage.
func (s *MemoryStorage) Set(key, value string) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

// CookieConfig controls preference cookie encoding.
type CookieConfig struct {
	HashKey  []byte
	BlockKey []byte
	Secure   bool
	MaxAge   time.Duration
}

// CookieCodec signs (and optionally encrypts) preference cookies.
type CookieCodec struct {
	codec  *securecookie.SecureCookie
	secure bool
	maxAge time.Duration
}

// NewCookieCodec builds a codec. The hash key is required.
func NewCookieCodec(cfg CookieConfig) (*CookieCodec, error) {
	if len(cfg.HashKey) == 0 {
		return nil, fmt.Errorf("%w: hash key is required", ErrInvalidConfig)
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = defaultMaxAge
	}
	codec := securecookie.New(cfg.HashKey, cfg.BlockKey)
	codec.MaxAge(int(cfg.MaxAge.Seconds()))
	return &CookieCodec{codec: codec, secure: cfg.Secure, maxAge: cfg.MaxAge}, nil
}

// RandomKey returns a fresh key for development setups without configured secrets.
func RandomKey() []byte {
	return securecookie.GenerateRandomKey(32)
}

// Storage returns a request-scoped store reading cookies from r and writing them to w.
func (c *CookieCodec) Storage(w http.ResponseWriter, r *http.Request) *CookieStorage {
	return &CookieStorage{codec: c, w: w, r: r, written: map[string]string{}}
}

// CookieStorage is a Storage backed by signed cookies for one request.
type CookieStorage struct {
	codec   *CookieCodec
	w       http.ResponseWriter
	r       *http.Request
	mu      sync.Mutex
	written map[string]string
}

// Get implements Storage. Values set earlier in the same request win over the request cookie;
// tampered cookies read as absent.
func (s *CookieStorage) Get(key string) (string, bool) {
	s.mu.Lock()
	v, ok := s.written[key]
	s.mu.Unlock()
	if ok {
		return v, true
	}
	if s.r == nil {
		return "", false
	}
	cookie, err := s.r.Cookie(key)
	if err != nil {
		return "", false
	}
	var value string
	if err := s.codec.codec.Decode(key, cookie.Value, &value); err != nil {
		return "", false
	}
	return value, true
}

// Set implements Storage.
func (s *CookieStorage) Set(key, value string) error {
	encoded, err := s.codec.codec.Encode(key, value)
	if err != nil {
		return fmt.Errorf("prefs: encode %s: %w", key, err)
	}
	if s.w != nil {
		http.SetCookie(s.w, &http.Cookie{
			Name:     key,
			Value:    encoded,
			Path:     defaultCookiePath,
			MaxAge:   int(s.codec.maxAge.Seconds()),
			Secure:   s.codec.secure,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	s.mu.Lock()
	s.written[key] = value
	s.mu.Unlock()
	return nil
}
