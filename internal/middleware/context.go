package middleware

import (
	"context"

	"github.com/puzzo-dev/sitefront/internal/i18n"
	"github.com/puzzo-dev/sitefront/internal/prefs"
)

// context keys are unexported to avoid collisions
type ctxKey string

const (
	ctxKeyRequestID ctxKey = "req_id"
	ctxKeyLocalizer ctxKey = "localizer"
	ctxKeyPrefs     ctxKey = "prefs"
)

// WithRequestID stores request id in context
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// RequestID gets request id from context
func RequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyRequestID).(string)
	return v, ok
}

// WithLocalizer stores the request localizer in context.
func WithLocalizer(ctx context.Context, l *i18n.Localizer) context.Context {
	return context.WithValue(ctx, ctxKeyLocalizer, l)
}

// Localizer returns the request localizer, or nil outside the Locale middleware.
func Localizer(ctx context.Context) *i18n.Localizer {
	l, _ := ctx.Value(ctxKeyLocalizer).(*i18n.Localizer)
	return l
}

// WithPrefs stores the request preference storage in context.
func WithPrefs(ctx context.Context, s prefs.Storage) context.Context {
	return context.WithValue(ctx, ctxKeyPrefs, s)
}

// Prefs returns the request preference storage. Outside the Preferences middleware it returns a
// throwaway in-memory store.
func Prefs(ctx context.Context) prefs.Storage {
	if s, ok := ctx.Value(ctxKeyPrefs).(prefs.Storage); ok && s != nil {
		return s
	}
	return prefs.NewMemoryStorage(nil)
}
