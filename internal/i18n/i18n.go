package i18n

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

type Bundle struct {
	dict      map[string]map[string]string
	fallback  string
	supported map[string]struct{}
	tags      []language.Tag
	codes     []string
	matcher   language.Matcher
}

// Load reads "<lang>.json" for every supported language from fsys. Only the fallback locale
// file is mandatory.
func Load(fsys fs.FS, fallback string, supported []string) (*Bundle, error) {
	b := &Bundle{
		dict:      map[string]map[string]string{},
		fallback:  fallback,
		supported: map[string]struct{}{},
	}
	if len(supported) == 0 {
		supported = []string{fallback}
	}
	// the matcher treats its first tag as the default
	ordered := append([]string{fallback}, supported...)
	for _, l := range ordered {
		if _, dup := b.supported[l]; dup {
			continue
		}
		b.supported[l] = struct{}{}
		b.codes = append(b.codes, l)
		b.tags = append(b.tags, language.Make(l))

		raw, err := fs.ReadFile(fsys, l+".json")
		if err != nil {
			if l == fallback || !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("load locale %s: %w", l, err)
			}
			continue
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", l, err)
		}
		b.dict[l] = m
	}
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

// LoadEmbedded loads the locales compiled into the binary.
func LoadEmbedded(fallback string, supported []string) (*Bundle, error) {
	sub, err := fs.Sub(localeFS, "locales")
	if err != nil {
		return nil, err
	}
	return Load(sub, fallback, supported)
}

func (b *Bundle) Supported() []string {
	out := make([]string, 0, len(b.supported))
	for k := range b.supported {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Fallback returns the configured fallback language.
func (b *Bundle) Fallback() string { return b.fallback }

// IsSupported reports whether lang is one of the configured languages.
func (b *Bundle) IsSupported(lang string) bool {
	_, ok := b.supported[lang]
	return ok
}

// Lookup finds key for lang, then for its base language, then for the fallback language.
func (b *Bundle) Lookup(lang, key string) (string, bool) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	candidates := []string{lang}
	if base, _, ok := strings.Cut(lang, "-"); ok {
		candidates = append(candidates, base)
	}
	candidates = append(candidates, b.fallback)
	for _, l := range candidates {
		if m, ok := b.dict[l]; ok {
			if v, ok := m[key]; ok {
				return v, true
			}
		}
	}
	return "", false
}

// T returns translation for key in lang, falling back to default and finally key.
func (b *Bundle) T(lang, key string) string {
	if v, ok := b.Lookup(lang, key); ok {
		return v
	}
	return key
}

// TOr is T with an explicit default for missing keys.
func (b *Bundle) TOr(lang, key, def string) string {
	if v, ok := b.Lookup(lang, key); ok {
		return v
	}
	return def
}

// Resolve chooses best language from Accept-Language header.
func (b *Bundle) Resolve(acceptLang string) string {
	prefs, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(prefs) == 0 {
		return b.fallback
	}
	_, idx, conf := b.matcher.Match(prefs...)
	if conf == language.No || idx < 0 || idx >= len(b.codes) {
		return b.fallback
	}
	return b.codes[idx]
}
