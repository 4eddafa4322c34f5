package prefs

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStorage(t *testing.T) {
	seed := map[string]string{KeyTheme: "dark"}
	s := NewMemoryStorage(seed)

	v, ok := s.Get(KeyTheme)
	require.True(t, ok)
	require.Equal(t, "dark", v)

	require.NoError(t, s.Set(KeyLanguage, "fr"))
	v, _ = s.Get(KeyLanguage)
	require.Equal(t, "fr", v)

	seed[KeyTheme] = "light"
	v, _ = s.Get(KeyTheme)
	require.Equal(t, "dark", v, "seed is copied")
}

func TestCookieStorageRoundTrip(t *testing.T) {
	codec, err := NewCookieCodec(CookieConfig{HashKey: []byte("0123456789abcdef0123456789abcdef"), Secure: true})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s := codec.Storage(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, s.Set(KeyLanguage, "yo"))
	v, ok := s.Get(KeyLanguage)
	require.True(t, ok)
	require.Equal(t, "yo", v)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, KeyLanguage, cookies[0].Name)
	require.True(t, cookies[0].Secure)
	require.True(t, cookies[0].HttpOnly)
	require.NotEqual(t, "yo", cookies[0].Value)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	v, ok = codec.Storage(httptest.NewRecorder(), next).Get(KeyLanguage)
	require.True(t, ok)
	require.Equal(t, "yo", v)
}

func TestCookieStorageRejectsTampering(t *testing.T) {
	codec, err := NewCookieCodec(CookieConfig{HashKey: RandomKey()})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: KeyTheme, Value: "dark"})
	_, ok := codec.Storage(httptest.NewRecorder(), req).Get(KeyTheme)
	require.False(t, ok)
}

func TestCookieCodecRequiresHashKey(t *testing.T) {
	_, err := NewCookieCodec(CookieConfig{})
	require.ErrorIs(t, err, ErrInvalidConfig)
}
