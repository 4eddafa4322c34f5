package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/puzzo-dev/sitefront/internal/i18n"
	"github.com/puzzo-dev/sitefront/internal/lang"
	"github.com/puzzo-dev/sitefront/internal/observability"
	"github.com/puzzo-dev/sitefront/internal/prefs"
)

// LangParam is the query parameter that overrides the language for a request and persists it.
const LangParam = "lang"

// Preferences exposes signed-cookie preference storage to downstream handlers.
func Preferences(codec *prefs.CookieCodec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if codec == nil {
				next.ServeHTTP(w, r)
				return
			}
			store := codec.Storage(w, r)
			next.ServeHTTP(w, r.WithContext(WithPrefs(r.Context(), store)))
		})
	}
}

// Locale resolves the request language and stores a Localizer in context. Precedence: the
// ?lang= override (persisted), the stored site-language preference, then Accept-Language.
func Locale(bundle *i18n.Bundle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := Prefs(r.Context())
			loc := i18n.NewLocalizer(bundle, "")
			state := lang.New(loc, store)

			if q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(LangParam))); q != "" {
				if err := state.Set(q); err != nil {
					observability.FromContext(r.Context()).Warn("lang: persist override", zap.String("code", q), zap.Error(err))
				}
			} else if stored, ok := state.Stored(); ok && stored != "" {
				loc.ChangeLocale(stored)
			} else {
				loc.ChangeLocale(bundle.Resolve(r.Header.Get("Accept-Language")))
			}

			w.Header().Add("Vary", "Accept-Language")
			w.Header().Set("Content-Language", state.Current())
			next.ServeHTTP(w, r.WithContext(WithPrefs(WithLocalizer(r.Context(), loc), store)))
		})
	}
}

// Lang returns the request language truncated to its base code, or fallback when no Localizer is
// present.
func Lang(r *http.Request, fallback string) string {
	if l := Localizer(r.Context()); l != nil {
		code, _, _ := strings.Cut(l.Locale(), "-")
		return code
	}
	return fallback
}
