// Package lang tracks the active UI language between the i18n runtime and persisted preferences.
package lang

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/puzzo-dev/sitefront/internal/prefs"
)

// Supported lists the language codes the site ships translations for.
var Supported = []string{"en", "fr", "yo", "ig", "ha"}

// FallbackFlag is shown for codes without a mapped flag.
const FallbackFlag = "🌐"

// Info is display metadata for one language.
type Info struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"nativeName"`
	Flag       string `json:"flag"`
}

var infoTable = map[string]Info{
	"en": {Code: "en", Name: "English", NativeName: "English", Flag: "🇬🇧"},
	"fr": {Code: "fr", Name: "French", NativeName: "Français", Flag: "🇫🇷"},
	"yo": {Code: "yo", Name: "Yoruba", NativeName: "Yorùbá", Flag: "🇳🇬"},
	"ig": {Code: "ig", Name: "Igbo", NativeName: "Igbo", Flag: "🇳🇬"},
	"ha": {Code: "ha", Name: "Hausa", NativeName: "Hausa", Flag: "🇳🇬"},
}

// Lookup returns display metadata for code. Unmapped codes get the fallback flag and a name
// from the CLDR display tables, or the code itself when even that is unknown.
func Lookup(code string) Info {
	if info, ok := infoTable[code]; ok {
		return info
	}
	info := Info{Code: code, Name: code, NativeName: code, Flag: FallbackFlag}
	tag, err := language.Parse(code)
	if err != nil {
		return info
	}
	if name := display.English.Tags().Name(tag); name != "" {
		info.Name = name
	}
	if native := display.Self.Name(tag); native != "" {
		info.NativeName = native
	}
	return info
}

// Options returns display metadata for every supported language, in order.
func Options() []Info {
	out := make([]Info, 0, len(Supported))
	for _, code := range Supported {
		out = append(out, Lookup(code))
	}
	return out
}

// IsSupported reports whether code is in Supported.
func IsSupported(code string) bool {
	for _, s := range Supported {
		if s == code {
			return true
		}
	}
	return false
}

// Runtime is the i18n capability the state drives.
type Runtime interface {
	Locale() string
	ChangeLocale(code string)
}

// State keeps the runtime locale and the stored preference in step.
type State struct {
	runtime Runtime
	store   prefs.Storage
}

// New binds a State to runtime and store.
func New(runtime Runtime, store prefs.Storage) *State {
	return &State{runtime: runtime, store: store}
}

// Current returns the runtime locale truncated at the first "-", so "en-US" reads as "en".
func (s *State) Current() string {
	code, _, _ := strings.Cut(s.runtime.Locale(), "-")
	return code
}

// Set switches the runtime to code and persists it. code is not checked against Supported.
func (s *State) Set(code string) error {
	s.runtime.ChangeLocale(code)
	if s.store == nil {
		return nil
	}
	return s.store.Set(prefs.KeyLanguage, code)
}

// Stored returns the persisted language preference, if any.
func (s *State) Stored() (string, bool) {
	if s.store == nil {
		return "", false
	}
	return s.store.Get(prefs.KeyLanguage)
}

// CurrentInfo returns display metadata for the current language.
func (s *State) CurrentInfo() Info {
	return Lookup(s.Current())
}
