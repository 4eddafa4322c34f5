// Package content defines the uniform page model shared by the CMS client, the page composer and
// the HTTP layer.
package content

import "strings"

// SectionType names the kind of block a section renders as.
type SectionType string

const (
	SectionHero         SectionType = "hero"
	SectionFeatures     SectionType = "features"
	SectionTestimonials SectionType = "testimonials"
	SectionCTA          SectionType = "cta"
	SectionProducts     SectionType = "products"
	SectionServices     SectionType = "services"
	SectionTeam         SectionType = "team"
	SectionContact      SectionType = "contact"
	SectionAbout        SectionType = "about"
	SectionClients      SectionType = "clients"
	SectionBlog         SectionType = "blog"
	SectionFAQ          SectionType = "faq"
	SectionLinks        SectionType = "links"
	SectionJobs         SectionType = "jobs"
	SectionCustom       SectionType = "custom"
	SectionCaseStudies  SectionType = "case-studies"
	SectionIndustries   SectionType = "industries"
)

var knownSectionTypes = map[SectionType]struct{}{
	SectionHero: {}, SectionFeatures: {}, SectionTestimonials: {}, SectionCTA: {},
	SectionProducts: {}, SectionServices: {}, SectionTeam: {}, SectionContact: {},
	SectionAbout: {}, SectionClients: {}, SectionBlog: {}, SectionFAQ: {},
	SectionLinks: {}, SectionJobs: {}, SectionCustom: {}, SectionCaseStudies: {},
	SectionIndustries: {},
}

// ParseSectionType maps a raw type name onto a SectionType. Unknown names become SectionCustom.
func ParseSectionType(raw string) SectionType {
	t := SectionType(strings.ToLower(strings.TrimSpace(raw)))
	t = SectionType(strings.ReplaceAll(string(t), "_", "-"))
	if _, ok := knownSectionTypes[t]; ok {
		return t
	}
	return SectionCustom
}

// Animation describes entrance animation hints for a section.
type Animation struct {
	Type     string  `json:"type" yaml:"type"`
	Duration float64 `json:"duration,omitempty" yaml:"duration"`
	Delay    float64 `json:"delay,omitempty" yaml:"delay"`
	Stagger  float64 `json:"stagger,omitempty" yaml:"stagger"`
}

// Button is an embedded call to action.
type Button struct {
	Label   string `json:"label" yaml:"label"`
	URL     string `json:"url" yaml:"url"`
	Variant string `json:"variant,omitempty" yaml:"variant"`
	Icon    string `json:"icon,omitempty" yaml:"icon"`
}

// SectionSettings is the open-ended settings bag. Which keys a renderer reads depends on the
// section type by convention only.
type SectionSettings struct {
	Animation *Animation     `json:"animation,omitempty"`
	Layout    string         `json:"layout,omitempty"`
	Columns   int            `json:"columns,omitempty"`
	Gap       string         `json:"gap,omitempty"`
	Buttons   []Button       `json:"buttons,omitempty"`
	Featured  any            `json:"featured,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// SectionItem is one entry of a flat item list.
type SectionItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Image       string `json:"image,omitempty"`
	URL         string `json:"url,omitempty"`
}

// PageSection is one typed, orderable block of a page.
type PageSection struct {
	ID              string          `json:"id"`
	Type            SectionType     `json:"type"`
	Title           string          `json:"title,omitempty"`
	Subtitle        string          `json:"subtitle,omitempty"`
	Content         string          `json:"content,omitempty"`
	BackgroundColor string          `json:"backgroundColor,omitempty"`
	TextColor       string          `json:"textColor,omitempty"`
	Settings        SectionSettings `json:"settings"`
	Items           []SectionItem   `json:"items,omitempty"`
	Blocks          Blocks          `json:"blocks,omitempty"`
}

// PageContent is one routable page.
type PageContent struct {
	ID              string        `json:"id"`
	Slug            string        `json:"slug"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	MetaTitle       string        `json:"metaTitle,omitempty"`
	MetaDescription string        `json:"metaDescription,omitempty"`
	Keywords        []string      `json:"keywords,omitempty"`
	OGImage         string        `json:"ogImage,omitempty"`
	Sections        []PageSection `json:"sections"`
}

// SectionByType returns the first section of type t.
func (p PageContent) SectionByType(t SectionType) (PageSection, bool) {
	for _, s := range p.Sections {
		if s.Type == t {
			return s, true
		}
	}
	return PageSection{}, false
}

// SectionByID returns the section with the given id.
func (p PageContent) SectionByID(id string) (PageSection, bool) {
	for _, s := range p.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return PageSection{}, false
}

// SectionsByBackground returns every section whose background colour equals color.
func (p PageContent) SectionsByBackground(color string) []PageSection {
	out := []PageSection{}
	for _, s := range p.Sections {
		if s.BackgroundColor == color {
			out = append(out, s)
		}
	}
	return out
}

// SectionsWithAnimation returns every section carrying animation settings.
func (p PageContent) SectionsWithAnimation() []PageSection {
	out := []PageSection{}
	for _, s := range p.Sections {
		if s.Settings.Animation != nil {
			out = append(out, s)
		}
	}
	return out
}

// SiteConfig holds global site settings.
type SiteConfig struct {
	ID           int             `json:"id"`
	SiteName     string          `json:"siteName"`
	Tagline      string          `json:"tagline,omitempty"`
	Logo         string          `json:"logo,omitempty"`
	ContactEmail string          `json:"contactEmail,omitempty"`
	ContactPhone string          `json:"contactPhone,omitempty"`
	Address      string          `json:"address,omitempty"`
	Social       []SocialLink    `json:"social,omitempty"`
	Features     map[string]bool `json:"features,omitempty"`
	ERP          *ERPCredentials `json:"-"`
}

// SocialLink is one social profile.
type SocialLink struct {
	Platform string `json:"platform" yaml:"platform"`
	URL      string `json:"url" yaml:"url"`
}

// ERPCredentials authorise form submissions against the ERP backend.
type ERPCredentials struct {
	BaseURL   string
	APIKey    string
	APISecret string
}

// FeatureEnabled reports whether the named flag is switched on.
func (c *SiteConfig) FeatureEnabled(name string) bool {
	if c == nil {
		return false
	}
	return c.Features[name]
}
