// Package seo builds page metadata and schema.org payloads for resolved pages.
package seo

import (
	"strings"

	"github.com/puzzo-dev/sitefront/internal/content"
)

type OpenGraph struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Type        string `json:"type"`
	SiteName    string `json:"siteName,omitempty"`
}

type Meta struct {
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Keywords    []string         `json:"keywords,omitempty"`
	Canonical   string           `json:"canonical,omitempty"`
	OG          OpenGraph        `json:"og"`
	JSONLD      []map[string]any `json:"jsonLd,omitempty"`
}

// ForPage derives metadata from p. Meta fields on the page win over the plain title and
// description; the site name is appended to titles that do not already carry it.
func ForPage(p content.PageContent, site content.SiteConfig, canonical string) Meta {
	title := firstNonEmpty(p.MetaTitle, p.Title, site.SiteName)
	if site.SiteName != "" && !strings.Contains(title, site.SiteName) {
		title += " | " + site.SiteName
	}
	description := firstNonEmpty(p.MetaDescription, p.Description, site.Tagline)
	return Meta{
		Title:       title,
		Description: description,
		Keywords:    p.Keywords,
		Canonical:   canonical,
		OG: OpenGraph{
			Title:       title,
			Description: description,
			Image:       p.OGImage,
			Type:        "website",
			SiteName:    site.SiteName,
		},
		JSONLD: []map[string]any{Organization(site.SiteName, "", site.Logo)},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
