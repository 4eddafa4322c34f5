// Package handlers exposes resolved page models, navigation, derived entities, preferences and
// forms as JSON over chi.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/puzzo-dev/sitefront/internal/catalog"
	"github.com/puzzo-dev/sitefront/internal/clock"
	"github.com/puzzo-dev/sitefront/internal/derived"
	"github.com/puzzo-dev/sitefront/internal/forms"
	"github.com/puzzo-dev/sitefront/internal/i18n"
	"github.com/puzzo-dev/sitefront/internal/lang"
	"github.com/puzzo-dev/sitefront/internal/nav"
	"github.com/puzzo-dev/sitefront/internal/observability"
	"github.com/puzzo-dev/sitefront/internal/page"
)

// Deps are the collaborators the handlers read from.
type Deps struct {
	Catalog  *catalog.Catalog
	Derived  *derived.Set
	Composer *page.Composer
	Nav      *nav.Resolver
	Bundle   *i18n.Bundle
	Forms    *forms.Submitter
	Clock    clock.Clock
	Logger   *zap.Logger
}

// Handlers serves the site API.
type Handlers struct {
	cat      *catalog.Catalog
	derived  *derived.Set
	composer *page.Composer
	nav      *nav.Resolver
	bundle   *i18n.Bundle
	forms    *forms.Submitter
	clock    clock.Clock
	logger   *zap.Logger

	footerCols []catalog.FooterSection
}

// New wires Handlers. Missing collaborators are built from Catalog and the embedded locales.
func New(d Deps) *Handlers {
	h := &Handlers{
		cat:      d.Catalog,
		derived:  d.Derived,
		composer: d.Composer,
		nav:      d.Nav,
		bundle:   d.Bundle,
		forms:    d.Forms,
		clock:    d.Clock,
		logger:   observability.OrNop(d.Logger),
	}
	if h.cat == nil {
		h.cat = &catalog.Catalog{}
	}
	if h.derived == nil {
		h.derived = derived.Extract(h.cat)
	}
	if h.composer == nil {
		h.composer = page.NewComposer(h.cat, h.derived, nil, h.logger)
	}
	if h.bundle == nil {
		b, err := i18n.LoadEmbedded("en", lang.Supported)
		if err != nil {
			h.logger.Error("i18n: load embedded bundle", zap.Error(err))
		}
		h.bundle = b
	}
	if h.nav == nil {
		h.nav = nav.NewResolver(nil, h.cat.Navigation, h.translate)
	}
	if h.forms == nil {
		h.forms = forms.NewSubmitter(forms.Options{Logger: h.logger})
	}
	if h.clock == nil {
		h.clock = clock.Real()
	}
	h.footerCols = derived.FooterColumns(h.cat)
	return h
}

// Routes mounts the API under r.
func (h *Handlers) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/site", h.Site)
		r.Get("/pages", h.Pages)
		r.Get("/pages/{slug}", h.Page)
		r.Get("/hero", h.Hero)
		r.Get("/policies/{slug}", h.Policy)
		r.Get("/content/{kind}/{slug}", h.Content)
		r.Get("/nav", h.Navigation)
		r.Get("/footer", h.Footer)
		r.Get("/benefits", h.Benefits)
		r.Get("/faqs", h.FAQs)

		r.Get("/preferences/theme", h.GetTheme)
		r.Put("/preferences/theme", h.PutTheme)
		r.Get("/preferences/language", h.GetLanguage)
		r.Put("/preferences/language", h.PutLanguage)

		r.Post("/forms/contact", h.Contact)
		r.Post("/forms/booking", h.Booking)
		r.Post("/forms/newsletter", h.Newsletter)
	})
}

// translate adapts the bundle to nav.Translator; without a bundle every lookup falls back.
func (h *Handlers) translate(lang, key, fallback string) string {
	if h.bundle == nil {
		return fallback
	}
	return h.bundle.TOr(lang, key, fallback)
}

func (h *Handlers) fallbackLang() string {
	if h.bundle == nil {
		return "en"
	}
	return h.bundle.Fallback()
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
