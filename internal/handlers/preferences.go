package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/puzzo-dev/sitefront/internal/lang"
	"github.com/puzzo-dev/sitefront/internal/middleware"
	"github.com/puzzo-dev/sitefront/internal/observability"
	"github.com/puzzo-dev/sitefront/internal/theme"
)

// ThemeData reports the selected mode and the scheme it resolves to for this request.
type ThemeData struct {
	Mode   theme.Mode   `json:"mode"`
	Actual theme.Scheme `json:"actual"`
	Label  string       `json:"label"`
}

type themeRequest struct {
	Mode string `json:"mode"`
}

func (h *Handlers) themeMachine(r *http.Request) *theme.Machine {
	return theme.New(theme.Options{
		Clock: h.clock,
		Store: middleware.Prefs(r.Context()),
		Probe: theme.ProbeFromHeader(r.Header),
	})
}

func (h *Handlers) themeData(r *http.Request, m *theme.Machine) ThemeData {
	mode := m.Mode()
	label := h.translate(middleware.Lang(r, h.fallbackLang()), "theme."+string(mode), string(mode))
	return ThemeData{Mode: mode, Actual: m.Actual(), Label: label}
}

func (h *Handlers) GetTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.themeData(r, h.themeMachine(r)))
}

func (h *Handlers) PutTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	mode, err := theme.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	m := h.themeMachine(r)
	if err := m.SetMode(mode); err != nil {
		observability.FromContext(r.Context()).Error("theme: set mode", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save preference")
		return
	}
	writeJSON(w, http.StatusOK, h.themeData(r, m))
}

// LanguageData describes the active language and the selectable options.
type LanguageData struct {
	Current lang.Info   `json:"current"`
	Options []lang.Info `json:"options"`
}

type languageRequest struct {
	Code string `json:"code"`
}

func (h *Handlers) languageState(r *http.Request) *lang.State {
	if loc := middleware.Localizer(r.Context()); loc != nil {
		return lang.New(loc, middleware.Prefs(r.Context()))
	}
	return lang.New(&requestRuntime{locale: h.fallbackLang()}, middleware.Prefs(r.Context()))
}

func (h *Handlers) GetLanguage(w http.ResponseWriter, r *http.Request) {
	s := h.languageState(r)
	writeJSON(w, http.StatusOK, LanguageData{Current: s.CurrentInfo(), Options: lang.Options()})
}

// PutLanguage switches and persists the language. The code is stored as given; only an empty
// code is refused.
func (h *Handlers) PutLanguage(w http.ResponseWriter, r *http.Request) {
	var req languageRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		writeError(w, http.StatusBadRequest, "language code is required")
		return
	}
	s := h.languageState(r)
	if err := s.Set(code); err != nil {
		observability.FromContext(r.Context()).Error("lang: set", zap.String("code", code), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save preference")
		return
	}
	w.Header().Set("Content-Language", s.Current())
	writeJSON(w, http.StatusOK, LanguageData{Current: s.CurrentInfo(), Options: lang.Options()})
}

// requestRuntime is the language runtime used outside the Locale middleware.
type requestRuntime struct{ locale string }

func (r *requestRuntime) Locale() string           { return r.locale }
func (r *requestRuntime) ChangeLocale(code string) { r.locale = code }
