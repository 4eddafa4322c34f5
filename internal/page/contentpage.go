package page

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/puzzo-dev/sitefront/internal/content"
)

// Fallback is the static title, description and markdown body supplied for a CMS-backed page.
type Fallback struct {
	Title       string
	Description string
	Content     string
}

// Origin records which source produced a ContentPageView's body.
type Origin string

const (
	OriginCMS      Origin = "cms"
	OriginFallback Origin = "fallback"
	OriginDocument Origin = "document"
	OriginNone     Origin = "none"
)

// KindPolicies is the CMS collection whose pages fall back to the embedded policy documents.
const KindPolicies = "policies"

// ContentPageView is a resolved CMS-backed page ready for rendering.
type ContentPageView struct {
	Kind        string                `json:"kind"`
	Slug        string                `json:"slug"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	MetaTitle   string                `json:"metaTitle,omitempty"`
	HTML        string                `json:"html"`
	Updated     string                `json:"updated,omitempty"`
	Origin      Origin                `json:"origin"`
	Sections    []content.PageSection `json:"sections,omitempty"`
}

// ContentPage resolves the page kind/slug from the CMS. The first CMS section is the canonical
// body; when the CMS has nothing, fb is used, then for KindPolicies the embedded document for
// slug. Failures never surface.
func (c *Composer) ContentPage(ctx context.Context, kind, slug string, fb Fallback) ContentPageView {
	var remote *content.PageContent
	if c.remote != nil {
		remote = c.remote.FetchPage(ctx, kind, slug)
	}
	var doc Document
	docErr := ErrDocumentNotFound
	if kind == KindPolicies {
		doc, docErr = LoadDocument(slug)
		if docErr != nil && !errors.Is(docErr, ErrDocumentNotFound) {
			c.logger.Warn("page: load embedded document", zap.String("slug", slug), zap.Error(docErr))
		}
	}

	view := ContentPageView{Kind: kind, Slug: slug, Origin: OriginNone}
	var cmsTitle, cmsDescription string
	if remote != nil {
		cmsTitle, cmsDescription = remote.Title, remote.Description
		view.MetaTitle = remote.MetaTitle
		view.Sections = remote.Sections
		if len(remote.Sections) > 0 {
			if html := c.renderSection(remote.Sections[0]); html != "" {
				view.HTML, view.Origin = html, OriginCMS
			}
		}
	}

	view.Title = firstNonEmpty(cmsTitle, fb.Title, doc.Title)
	site := c.SiteConfig(ctx)
	defaultDescription := site.SiteName
	if view.Title != "" {
		defaultDescription = view.Title + " | " + site.SiteName
	}
	view.Description = firstNonEmpty(cmsDescription, fb.Description, defaultDescription)

	if view.Origin == OriginNone && strings.TrimSpace(fb.Content) != "" {
		html, err := content.RenderMarkdown(fb.Content)
		if err != nil {
			c.logger.Warn("page: render fallback content", zap.String("slug", slug), zap.Error(err))
		} else {
			view.HTML, view.Origin = html, OriginFallback
		}
	}
	if view.Origin == OriginNone && docErr == nil {
		view.HTML, view.Origin, view.Updated = doc.HTML, OriginDocument, doc.Updated
	}
	return view
}

func (c *Composer) renderSection(s content.PageSection) string {
	if len(s.Blocks) > 0 {
		return s.Blocks.RenderHTML()
	}
	if strings.TrimSpace(s.Content) == "" {
		return ""
	}
	html, err := content.RenderMarkdown(s.Content)
	if err != nil {
		c.logger.Warn("page: render cms content", zap.String("section", s.ID), zap.Error(err))
		return ""
	}
	return html
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
