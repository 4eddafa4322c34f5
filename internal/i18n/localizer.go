package i18n

import (
	"strings"
	"sync"
)

// Localizer is a translation runtime bound to one active locale.
type Localizer struct {
	bundle *Bundle

	mu     sync.RWMutex
	locale string
}

// NewLocalizer binds bundle to locale; an empty locale selects the bundle fallback.
func NewLocalizer(bundle *Bundle, locale string) *Localizer {
	if strings.TrimSpace(locale) == "" {
		locale = bundle.Fallback()
	}
	return &Localizer{bundle: bundle, locale: locale}
}

// Locale returns the active locale as set, e.g. "en-US".
func (l *Localizer) Locale() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.locale
}

// ChangeLocale switches the active locale. Codes without a locale file still resolve through
// the fallback language.
func (l *Localizer) ChangeLocale(code string) {
	l.mu.Lock()
	l.locale = strings.TrimSpace(code)
	l.mu.Unlock()
}

// T translates key in the active locale, returning fallback when no translation exists.
func (l *Localizer) T(key, fallback string) string {
	return l.bundle.TOr(l.Locale(), key, fallback)
}
