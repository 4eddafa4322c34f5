// Package page assembles routable page models from the static catalogs and the CMS.
package page

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/puzzo-dev/sitefront/internal/catalog"
	"github.com/puzzo-dev/sitefront/internal/content"
	"github.com/puzzo-dev/sitefront/internal/derived"
	"github.com/puzzo-dev/sitefront/internal/observability"
)

// Remote is the subset of the CMS client the composer reads from. Both methods return nil on
// failure.
type Remote interface {
	FetchConfig(ctx context.Context) *content.SiteConfig
	FetchPage(ctx context.Context, kind, slug string) *content.PageContent
}

// Composer owns the static page models, built once at construction, and resolves CMS-backed
// pages on demand.
type Composer struct {
	cat     *catalog.Catalog
	derived *derived.Set
	remote  Remote
	logger  *zap.Logger

	hero  content.PageSection
	pages map[string]content.PageContent
	order []string
}

// NewComposer builds the static pages from cat and set. remote may be nil.
func NewComposer(cat *catalog.Catalog, set *derived.Set, remote Remote, logger *zap.Logger) *Composer {
	if cat == nil {
		cat = &catalog.Catalog{}
	}
	if set == nil {
		set = derived.Extract(cat)
	}
	c := &Composer{
		cat:     cat,
		derived: set,
		remote:  remote,
		logger:  observability.OrNop(logger),
		pages:   map[string]content.PageContent{},
	}
	c.hero = c.heroFromSlide(0)
	for _, p := range c.buildStaticPages() {
		c.pages[p.Slug] = p
		c.order = append(c.order, p.Slug)
	}
	return c
}

// Page returns the static page for slug.
func (c *Composer) Page(slug string) (content.PageContent, bool) {
	p, ok := c.pages[strings.Trim(strings.TrimSpace(slug), "/")]
	return p, ok
}

// Slugs lists the static pages in build order.
func (c *Composer) Slugs() []string {
	return append([]string(nil), c.order...)
}

// HeroSection returns the hero built from the first hero slide.
func (c *Composer) HeroSection() content.PageSection {
	return c.hero
}

// HeroSectionBySlideIndex returns the hero for slide n, or the default hero when n is out of range.
func (c *Composer) HeroSectionBySlideIndex(n int) content.PageSection {
	if n < 0 || n >= len(c.cat.HeroSlides) {
		return c.hero
	}
	return c.heroFromSlide(n)
}

// HeroSectionBySlideTitle returns the hero for the first slide whose title contains keyword,
// ignoring case, or the default hero.
func (c *Composer) HeroSectionBySlideTitle(keyword string) content.PageSection {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return c.hero
	}
	for i, slide := range c.cat.HeroSlides {
		if strings.Contains(strings.ToLower(slide.Title), keyword) {
			return c.heroFromSlide(i)
		}
	}
	return c.hero
}

// SiteConfig returns the remote configuration when available, else the static default.
func (c *Composer) SiteConfig(ctx context.Context) content.SiteConfig {
	if c.remote != nil {
		if cfg := c.remote.FetchConfig(ctx); cfg != nil {
			return *cfg
		}
	}
	return c.cat.Site
}

func (c *Composer) heroFromSlide(n int) content.PageSection {
	if n < 0 || n >= len(c.cat.HeroSlides) {
		return content.PageSection{
			ID:      "hero",
			Type:    content.SectionHero,
			Title:   c.cat.Site.SiteName,
			Content: c.cat.Site.Tagline,
		}
	}
	slide := c.cat.HeroSlides[n]
	section := content.PageSection{
		ID:              "hero",
		Type:            content.SectionHero,
		Title:           slide.Title,
		Subtitle:        slide.Subtitle,
		Content:         slide.Description,
		BackgroundColor: slide.Background,
		TextColor:       slide.TextColor,
		Settings: content.SectionSettings{
			Layout: "split",
			Extra: map[string]any{
				"image":   slide.Image,
				"slideId": slide.ID,
			},
		},
	}
	if slide.AnimationFor != "" {
		section.Settings.Animation = &content.Animation{Type: slide.AnimationFor, Duration: 0.6}
	}
	for _, b := range []*content.Button{slide.Primary, slide.Secondary} {
		if b != nil {
			section.Settings.Buttons = append(section.Settings.Buttons, *b)
		}
	}
	if n > 0 {
		section.ID = "hero-" + strconv.Itoa(slide.ID)
	}
	return section
}
