package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/puzzo-dev/sitefront/internal/catalog"
	"github.com/puzzo-dev/sitefront/internal/content"
	"github.com/puzzo-dev/sitefront/internal/middleware"
	"github.com/puzzo-dev/sitefront/internal/nav"
	"github.com/puzzo-dev/sitefront/internal/page"
	"github.com/puzzo-dev/sitefront/internal/seo"
)

// Layout is the chrome shared by every page response.
type Layout struct {
	Lang        string                  `json:"lang"`
	Path        string                  `json:"path"`
	Site        content.SiteConfig      `json:"site"`
	Nav         []nav.RenderedItem      `json:"nav"`
	Breadcrumbs []nav.Crumb             `json:"breadcrumbs"`
	Footer      []catalog.FooterSection `json:"footer"`
}

// PageData is the response for a static page.
type PageData struct {
	Layout
	SEO  seo.Meta            `json:"seo"`
	Page content.PageContent `json:"page"`
}

// ContentPageData is the response for a CMS-backed page.
type ContentPageData struct {
	Layout
	Page page.ContentPageView `json:"page"`
}

// layout resolves site config and navigation concurrently. Neither fetch can fail; both degrade
// to static data.
func (h *Handlers) layout(r *http.Request, path string) Layout {
	lang := middleware.Lang(r, h.fallbackLang())
	out := Layout{Lang: lang, Path: path}
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		out.Site = h.composer.SiteConfig(ctx)
		return nil
	})
	g.Go(func() error {
		out.Nav = h.nav.Resolve(ctx, lang, path)
		return nil
	})
	_ = g.Wait()
	out.Breadcrumbs = nav.Breadcrumbs(path, out.Nav)
	out.Footer = h.footer(lang)
	return out
}

func (h *Handlers) Site(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.composer.SiteConfig(r.Context()))
}

func (h *Handlers) Pages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"pages": h.composer.Slugs()})
}

func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	p, ok := h.composer.Page(slug)
	if !ok {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}
	path := "/"
	if p.Slug != "home" {
		path = "/" + p.Slug
	}
	data := PageData{Layout: h.layout(r, path), Page: p}
	data.SEO = seo.ForPage(p, data.Site, path)
	if p.Slug == "faq" {
		data.SEO.JSONLD = append(data.SEO.JSONLD, seo.FAQPage(faqPairs(h.derived.FAQs.All())))
	}
	if len(data.Breadcrumbs) > 1 {
		items := make([]seo.BreadcrumbItem, 0, len(data.Breadcrumbs))
		for _, c := range data.Breadcrumbs {
			items = append(items, seo.BreadcrumbItem{Name: c.Label, Item: c.Href})
		}
		data.SEO.JSONLD = append(data.SEO.JSONLD, seo.BreadcrumbList(items))
	}
	writeJSON(w, http.StatusOK, data)
}

// Hero returns the hero for ?slide=<index> or ?title=<keyword>, else the default hero.
func (h *Handlers) Hero(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch {
	case q.Get("slide") != "":
		n, err := strconv.Atoi(q.Get("slide"))
		if err != nil {
			n = -1
		}
		writeJSON(w, http.StatusOK, h.composer.HeroSectionBySlideIndex(n))
	case q.Get("title") != "":
		writeJSON(w, http.StatusOK, h.composer.HeroSectionBySlideTitle(q.Get("title")))
	default:
		writeJSON(w, http.StatusOK, h.composer.HeroSection())
	}
}

// Policy serves a legal document. Only policies listed in the catalog are routable.
func (h *Handlers) Policy(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	policy, ok := h.cat.PolicyBySlug(slug)
	if !ok {
		writeError(w, http.StatusNotFound, "policy not found")
		return
	}
	h.writeContentPage(w, r, page.KindPolicies, slug, page.Fallback{Title: policy.Title, Description: policy.Description})
}

// Content serves any CMS collection entry by kind and slug.
func (h *Handlers) Content(w http.ResponseWriter, r *http.Request) {
	kind := strings.ToLower(chi.URLParam(r, "kind"))
	slug := chi.URLParam(r, "slug")
	h.writeContentPage(w, r, kind, slug, page.Fallback{})
}

func (h *Handlers) writeContentPage(w http.ResponseWriter, r *http.Request, kind, slug string, fb page.Fallback) {
	var (
		view   page.ContentPageView
		layout Layout
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		view = h.composer.ContentPage(ctx, kind, slug, fb)
		return nil
	})
	g.Go(func() error {
		layout = h.layout(r.WithContext(ctx), "/"+slug)
		return nil
	})
	_ = g.Wait()

	if view.Origin == page.OriginNone && view.Title == "" {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}
	writeJSON(w, http.StatusOK, ContentPageData{Layout: layout, Page: view})
}

// NavData is the navigation response.
type NavData struct {
	Lang        string             `json:"lang"`
	Items       []nav.RenderedItem `json:"items"`
	Breadcrumbs []nav.Crumb        `json:"breadcrumbs"`
}

// Navigation resolves the navigation for ?path= in the request language.
func (h *Handlers) Navigation(w http.ResponseWriter, r *http.Request) {
	lang := middleware.Lang(r, h.fallbackLang())
	path := r.URL.Query().Get("path")
	if path == "" {
		path = "/"
	}
	items := h.nav.Resolve(r.Context(), lang, path)
	writeJSON(w, http.StatusOK, NavData{Lang: lang, Items: items, Breadcrumbs: nav.Breadcrumbs(path, items)})
}

func (h *Handlers) Footer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.footer(middleware.Lang(r, h.fallbackLang())))
}

// footer localises the static and generated footer columns.
func (h *Handlers) footer(lang string) []catalog.FooterSection {
	cols := h.footerCols
	out := make([]catalog.FooterSection, 0, len(cols))
	for _, col := range cols {
		loc := catalog.FooterSection{
			Title:          col.Title,
			TranslationKey: col.TranslationKey,
			Links:          make([]catalog.FooterLink, 0, len(col.Links)),
		}
		if col.TranslationKey != "" {
			loc.Title = h.translate(lang, "footer."+col.TranslationKey, col.Title)
		}
		for _, l := range col.Links {
			if l.TranslationKey != "" {
				l.Label = h.translate(lang, "nav."+l.TranslationKey, l.Label)
			}
			l.URL = nav.URLPath(l.URL)
			loc.Links = append(loc.Links, l)
		}
		out = append(out, loc)
	}
	return out
}
