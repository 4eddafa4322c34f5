package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	chiMid "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/puzzo-dev/sitefront/internal/i18n"
	"github.com/puzzo-dev/sitefront/internal/observability"
	"github.com/puzzo-dev/sitefront/internal/prefs"
)

func newStack(t *testing.T, h http.Handler) (http.Handler, *prefs.CookieCodec) {
	t.Helper()
	bundle, err := i18n.LoadEmbedded("en", []string{"en", "fr", "yo", "ig", "ha"})
	require.NoError(t, err)
	codec, err := prefs.NewCookieCodec(prefs.CookieConfig{HashKey: prefs.RandomKey()})
	require.NoError(t, err)
	return Preferences(codec)(Locale(bundle)(h)), codec
}

func echoLang(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(Lang(r, "none")))
}

func TestLocaleFromAcceptLanguage(t *testing.T) {
	h, _ := newStack(t, http.HandlerFunc(echoLang))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "de-DE, fr;q=0.8, en;q=0.5")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "fr", rec.Body.String())
	require.Equal(t, "fr", rec.Header().Get("Content-Language"))
	require.Empty(t, rec.Result().Cookies(), "negotiated language is not persisted")
}

func TestLocaleQueryOverridePersists(t *testing.T) {
	h, _ := newStack(t, http.HandlerFunc(echoLang))
	req := httptest.NewRequest(http.MethodGet, "/?lang=YO", nil)
	req.Header.Set("Accept-Language", "fr")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "yo", rec.Body.String())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, prefs.KeyLanguage, cookies[0].Name)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.Header.Set("Accept-Language", "fr")
	next.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, next)
	require.Equal(t, "yo", rec.Body.String(), "stored preference beats Accept-Language")
}

func TestLangOutsideMiddleware(t *testing.T) {
	require.Equal(t, "en", Lang(httptest.NewRequest(http.MethodGet, "/", nil), "en"))
}

func TestPrefsDefaultsToMemory(t *testing.T) {
	s := Prefs(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	require.NoError(t, s.Set(prefs.KeyTheme, "dark"))
}

func TestLoggerEmitsOneLinePerRequest(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	var sawLogger bool
	h := chiMid.RequestID(Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLogger = observability.FromContext(r.Context()) != nil
		_, ok := RequestID(r.Context())
		require.True(t, ok)
		w.Header().Set("Content-Language", "fr")
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/pages/home", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 203.0.113.9")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, sawLogger)
	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, zap.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	require.Equal(t, "/pages/home", fields["path"])
	require.Equal(t, int64(http.StatusTeapot), fields["status"])
	require.Equal(t, "203.0.113.9", fields["remote_ip"])
	require.Equal(t, "fr", fields["locale"])
	require.NotEmpty(t, fields["request_id"])
}

type failingStorage struct{}

func (failingStorage) Get(string) (string, bool) { return "", false }

func (failingStorage) Set(string, string) error { return errors.New("cookie jar full") }

func TestLocaleOverrideLogsPersistFailure(t *testing.T) {
	bundle, err := i18n.LoadEmbedded("en", []string{"en", "fr", "yo", "ig", "ha"})
	require.NoError(t, err)
	core, logs := observer.New(zap.WarnLevel)
	h := Locale(bundle)(http.HandlerFunc(echoLang))

	req := httptest.NewRequest(http.MethodGet, "/?lang=ig", nil)
	ctx := observability.WithLogger(WithPrefs(req.Context(), failingStorage{}), zap.New(core))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(ctx))

	require.Equal(t, "ig", rec.Body.String(), "the override still applies to this request")
	entries := logs.FilterMessage("lang: persist override").All()
	require.Len(t, entries, 1)
	require.Equal(t, "ig", entries[0].ContextMap()["code"])
	require.Equal(t, "cookie jar full", entries[0].ContextMap()["error"])
}
