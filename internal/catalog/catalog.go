// Package catalog holds the hand-authored fallback data for every content domain. It is pure data:
// the YAML documents under data/ are decoded once and never mutated.
package catalog

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/puzzo-dev/sitefront/internal/content"
)

//go:embed data/*.yaml
var dataFS embed.FS

// BenefitItem is a benefit nested under a product or service.
type BenefitItem struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Icon        string `yaml:"icon" json:"icon,omitempty"`
}

// FAQItem is a question/answer pair nested under a product or service, or company-level.
type FAQItem struct {
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
}

// Service is a consulting or delivery offering.
type Service struct {
	ID          int           `yaml:"id" json:"id"`
	Slug        string        `yaml:"slug" json:"slug"`
	Title       string        `yaml:"title" json:"title"`
	Description string        `yaml:"description" json:"description"`
	Icon        string        `yaml:"icon" json:"icon,omitempty"`
	Image       string        `yaml:"image" json:"image,omitempty"`
	Features    []string      `yaml:"features" json:"features,omitempty"`
	Benefits    []BenefitItem `yaml:"benefits" json:"-"`
	FAQs        []FAQItem     `yaml:"faqs" json:"-"`
}

// Product is a packaged software product.
type Product struct {
	ID          int           `yaml:"id" json:"id"`
	Slug        string        `yaml:"slug" json:"slug"`
	Name        string        `yaml:"name" json:"name"`
	Tagline     string        `yaml:"tagline" json:"tagline,omitempty"`
	Description string        `yaml:"description" json:"description"`
	Image       string        `yaml:"image" json:"image,omitempty"`
	URL         string        `yaml:"url" json:"url,omitempty"`
	Benefits    []BenefitItem `yaml:"benefits" json:"-"`
	FAQs        []FAQItem     `yaml:"faqs" json:"-"`
}

// Job is an open position.
type Job struct {
	ID           int      `yaml:"id" json:"id"`
	Slug         string   `yaml:"slug" json:"slug"`
	Title        string   `yaml:"title" json:"title"`
	Department   string   `yaml:"department" json:"department"`
	Location     string   `yaml:"location" json:"location"`
	Type         string   `yaml:"type" json:"type"`
	Description  string   `yaml:"description" json:"description"`
	Requirements []string `yaml:"requirements" json:"requirements,omitempty"`
	Benefits     []string `yaml:"benefits" json:"-"`
}

// TeamMember is one person on the team page.
type TeamMember struct {
	ID    int    `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Role  string `yaml:"role" json:"role"`
	Bio   string `yaml:"bio" json:"bio,omitempty"`
	Image string `yaml:"image" json:"image,omitempty"`
}

// Testimonial is a customer quote.
type Testimonial struct {
	ID      int    `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	Role    string `yaml:"role" json:"role"`
	Company string `yaml:"company" json:"company"`
	Quote   string `yaml:"quote" json:"quote"`
	Rating  int    `yaml:"rating" json:"rating"`
}

// BlogPost is a blog teaser.
type BlogPost struct {
	ID          int      `yaml:"id" json:"id"`
	Slug        string   `yaml:"slug" json:"slug"`
	Title       string   `yaml:"title" json:"title"`
	Excerpt     string   `yaml:"excerpt" json:"excerpt"`
	Author      string   `yaml:"author" json:"author"`
	PublishedAt string   `yaml:"published_at" json:"publishedAt"`
	Tags        []string `yaml:"tags" json:"tags,omitempty"`
}

// CaseStudy summarises a delivered engagement.
type CaseStudy struct {
	ID       int    `yaml:"id" json:"id"`
	Slug     string `yaml:"slug" json:"slug"`
	Title    string `yaml:"title" json:"title"`
	Client   string `yaml:"client" json:"client"`
	Summary  string `yaml:"summary" json:"summary"`
	Industry string `yaml:"industry" json:"industry"`
}

// Industry is a market vertical served.
type Industry struct {
	ID          int    `yaml:"id" json:"id"`
	Slug        string `yaml:"slug" json:"slug"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Icon        string `yaml:"icon" json:"icon,omitempty"`
}

// Client is a customer logo entry.
type Client struct {
	ID   int    `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	Logo string `yaml:"logo" json:"logo"`
	URL  string `yaml:"url" json:"url,omitempty"`
}

// HeroSlide is one slide of the home page hero carousel.
type HeroSlide struct {
	ID           int             `yaml:"id" json:"id"`
	Title        string          `yaml:"title" json:"title"`
	Subtitle     string          `yaml:"subtitle" json:"subtitle"`
	Description  string          `yaml:"description" json:"description"`
	Image        string          `yaml:"image" json:"image"`
	Primary      *content.Button `yaml:"primary" json:"primary,omitempty"`
	Secondary    *content.Button `yaml:"secondary" json:"secondary,omitempty"`
	Background   string          `yaml:"background" json:"background,omitempty"`
	TextColor    string          `yaml:"text_color" json:"textColor,omitempty"`
	AnimationFor string          `yaml:"animation" json:"animation,omitempty"`
}

// NavItem is one navigation entry, at most one level of children deep in practice.
type NavItem struct {
	ID             int       `yaml:"id" json:"id"`
	Label          string    `yaml:"label" json:"label"`
	TranslationKey string    `yaml:"translation_key" json:"translationKey,omitempty"`
	URL            string    `yaml:"url" json:"url"`
	Order          int       `yaml:"order" json:"order"`
	IsButton       bool      `yaml:"is_button" json:"isButton"`
	Visible        *bool     `yaml:"visible" json:"visible,omitempty"`
	Children       []NavItem `yaml:"children" json:"children,omitempty"`
}

// IsVisible reports whether the item should be shown. Items without an explicit flag are visible.
func (n NavItem) IsVisible() bool {
	return n.Visible == nil || *n.Visible
}

// FooterLink is one footer anchor.
type FooterLink struct {
	Label          string `yaml:"label" json:"label"`
	TranslationKey string `yaml:"translation_key" json:"translationKey,omitempty"`
	URL            string `yaml:"url" json:"url"`
}

// FooterSection is one footer column.
type FooterSection struct {
	Title          string       `yaml:"title" json:"title"`
	TranslationKey string       `yaml:"translation_key" json:"translationKey,omitempty"`
	Links          []FooterLink `yaml:"links" json:"links"`
}

// Policy lists a legal document served from the CMS with an embedded fallback.
type Policy struct {
	Slug        string `yaml:"slug" json:"slug"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

type siteDocument struct {
	SiteName     string               `yaml:"site_name"`
	Tagline      string               `yaml:"tagline"`
	Logo         string               `yaml:"logo"`
	ContactEmail string               `yaml:"contact_email"`
	ContactPhone string               `yaml:"contact_phone"`
	Address      string               `yaml:"address"`
	Social       []content.SocialLink `yaml:"social"`
	Features     map[string]bool      `yaml:"features"`
}

// Catalog is the full set of static fallback data.
type Catalog struct {
	Site         content.SiteConfig
	Services     []Service
	Products     []Product
	Jobs         []Job
	Team         []TeamMember
	Testimonials []Testimonial
	BlogPosts    []BlogPost
	CaseStudies  []CaseStudy
	Industries   []Industry
	Clients      []Client
	HeroSlides   []HeroSlide
	Navigation   []NavItem
	Footer       []FooterSection
	Policies     []Policy
	CompanyFAQs  []FAQItem
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog, decoding it on first use.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load()
	})
	return defaultCatalog, defaultErr
}

// MustDefault is Default for callers that treat broken embedded data as a programming error.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Load decodes a fresh copy of the embedded catalog.
func Load() (*Catalog, error) {
	c := &Catalog{}
	var site siteDocument
	files := []struct {
		name string
		dst  any
	}{
		{"site.yaml", &site},
		{"services.yaml", &c.Services},
		{"products.yaml", &c.Products},
		{"jobs.yaml", &c.Jobs},
		{"team.yaml", &c.Team},
		{"testimonials.yaml", &c.Testimonials},
		{"blog.yaml", &c.BlogPosts},
		{"case_studies.yaml", &c.CaseStudies},
		{"industries.yaml", &c.Industries},
		{"clients.yaml", &c.Clients},
		{"hero.yaml", &c.HeroSlides},
		{"navigation.yaml", &c.Navigation},
		{"footer.yaml", &c.Footer},
		{"policies.yaml", &c.Policies},
		{"faqs.yaml", &c.CompanyFAQs},
	}
	for _, f := range files {
		raw, err := dataFS.ReadFile("data/" + f.name)
		if err != nil {
			return nil, fmt.Errorf("catalog: read %s: %w", f.name, err)
		}
		if err := yaml.Unmarshal(raw, f.dst); err != nil {
			return nil, fmt.Errorf("catalog: parse %s: %w", f.name, err)
		}
	}
	c.Site = content.SiteConfig{
		SiteName:     site.SiteName,
		Tagline:      site.Tagline,
		Logo:         site.Logo,
		ContactEmail: site.ContactEmail,
		ContactPhone: site.ContactPhone,
		Address:      site.Address,
		Social:       site.Social,
		Features:     site.Features,
	}
	return c, nil
}

// ServiceBySlug returns the service with the given slug.
func (c *Catalog) ServiceBySlug(slug string) (Service, bool) {
	for _, s := range c.Services {
		if s.Slug == slug {
			return s, true
		}
	}
	return Service{}, false
}

// ProductBySlug returns the product with the given slug.
func (c *Catalog) ProductBySlug(slug string) (Product, bool) {
	for _, p := range c.Products {
		if p.Slug == slug {
			return p, true
		}
	}
	return Product{}, false
}

// PolicyBySlug returns the policy descriptor with the given slug.
func (c *Catalog) PolicyBySlug(slug string) (Policy, bool) {
	for _, p := range c.Policies {
		if p.Slug == slug {
			return p, true
		}
	}
	return Policy{}, false
}
