package page

import (
	"github.com/puzzo-dev/sitefront/internal/content"
	"github.com/puzzo-dev/sitefront/internal/derived"
)

func fadeUp(delay float64) *content.Animation {
	return &content.Animation{Type: "fade-up", Duration: 0.5, Delay: delay}
}

// buildStaticPages composes the static page literals. Featured settings hold the catalog slices
// themselves so sections always reflect the live catalog.
func (c *Composer) buildStaticPages() []content.PageContent {
	cat := c.cat
	site := cat.Site

	contactCTA := content.PageSection{
		ID:              "cta",
		Type:            content.SectionCTA,
		Title:           "Ready to start your project?",
		Subtitle:        "Tell us what you are building and we will get back within one working day.",
		BackgroundColor: "primary",
		TextColor:       "light",
		Settings: content.SectionSettings{
			Buttons: []content.Button{{Label: "Contact us", URL: "/contact", Variant: "primary"}},
		},
	}

	home := content.PageContent{
		ID:          "home",
		Slug:        "home",
		Title:       site.SiteName,
		Description: site.Tagline,
		MetaTitle:   site.SiteName + " | " + site.Tagline,
		Sections: []content.PageSection{
			c.hero,
			{
				ID:       "services",
				Type:     content.SectionServices,
				Title:    "What we do",
				Subtitle: "Services that take you from idea to operation",
				Settings: content.SectionSettings{Animation: fadeUp(0.1), Layout: "grid", Columns: 3, Gap: "lg", Featured: cat.Services},
			},
			{
				ID:              "products",
				Type:            content.SectionProducts,
				Title:           "Our products",
				BackgroundColor: "muted",
				Settings:        content.SectionSettings{Animation: fadeUp(0.1), Layout: "carousel", Featured: cat.Products},
			},
			{
				ID:       "case-studies",
				Type:     content.SectionCaseStudies,
				Title:    "Recent work",
				Settings: content.SectionSettings{Layout: "list", Featured: cat.CaseStudies},
			},
			{
				ID:              "testimonials",
				Type:            content.SectionTestimonials,
				Title:           "What clients say",
				BackgroundColor: "muted",
				Settings:        content.SectionSettings{Animation: fadeUp(0.2), Layout: "carousel", Featured: cat.Testimonials},
			},
			{
				ID:       "clients",
				Type:     content.SectionClients,
				Title:    "Trusted by",
				Settings: content.SectionSettings{Layout: "logos", Columns: 6, Featured: cat.Clients},
			},
			contactCTA,
		},
	}

	about := content.PageContent{
		ID:          "about",
		Slug:        "about",
		Title:       "About " + site.SiteName,
		Description: "The people and principles behind " + site.SiteName + ".",
		Sections: []content.PageSection{
			{
				ID:       "about",
				Type:     content.SectionAbout,
				Title:    "Who we are",
				Content:  site.Tagline,
				Settings: content.SectionSettings{Animation: fadeUp(0), Layout: "split"},
			},
			{
				ID:       "team",
				Type:     content.SectionTeam,
				Title:    "Leadership",
				Settings: content.SectionSettings{Layout: "grid", Columns: 3, Featured: cat.Team},
			},
			{
				ID:              "industries",
				Type:            content.SectionIndustries,
				Title:           "Industries we serve",
				BackgroundColor: "muted",
				Settings:        content.SectionSettings{Layout: "grid", Columns: 3, Featured: cat.Industries},
			},
			{
				ID:       "testimonials",
				Type:     content.SectionTestimonials,
				Title:    "What clients say",
				Settings: content.SectionSettings{Layout: "carousel", Featured: cat.Testimonials},
			},
		},
	}

	services := content.PageContent{
		ID:          "services",
		Slug:        "services",
		Title:       "Services",
		Description: "Web, cloud and data services from " + site.SiteName + ".",
		Sections: []content.PageSection{
			{
				ID:       "services",
				Type:     content.SectionServices,
				Title:    "Services",
				Settings: content.SectionSettings{Animation: fadeUp(0), Layout: "grid", Columns: 3, Featured: cat.Services},
			},
			{
				ID:              "features",
				Type:            content.SectionFeatures,
				Title:           "Why work with us",
				BackgroundColor: "muted",
				Items:           benefitItems(c.derived.Benefits.BySource(derived.SourceService)),
			},
			{
				ID:       "faq",
				Type:     content.SectionFAQ,
				Title:    "Service questions",
				Settings: content.SectionSettings{Featured: c.derived.FAQs.BySource(derived.SourceService)},
			},
			contactCTA,
		},
	}

	products := content.PageContent{
		ID:          "products",
		Slug:        "products",
		Title:       "Products",
		Description: "Software products built and supported by " + site.SiteName + ".",
		Sections: []content.PageSection{
			{
				ID:       "products",
				Type:     content.SectionProducts,
				Title:    "Products",
				Settings: content.SectionSettings{Animation: fadeUp(0), Layout: "grid", Columns: 3, Featured: cat.Products},
			},
			{
				ID:              "features",
				Type:            content.SectionFeatures,
				Title:           "Built for growing teams",
				BackgroundColor: "muted",
				Items:           benefitItems(c.derived.Benefits.BySource(derived.SourceProduct)),
			},
			{
				ID:       "faq",
				Type:     content.SectionFAQ,
				Title:    "Product questions",
				Settings: content.SectionSettings{Featured: c.derived.FAQs.BySource(derived.SourceProduct)},
			},
		},
	}

	careers := content.PageContent{
		ID:          "careers",
		Slug:        "careers",
		Title:       "Careers",
		Description: "Join the team at " + site.SiteName + ".",
		Sections: []content.PageSection{
			{
				ID:       "jobs",
				Type:     content.SectionJobs,
				Title:    "Open roles",
				Settings: content.SectionSettings{Animation: fadeUp(0), Layout: "list", Featured: cat.Jobs},
			},
			{
				ID:              "benefits",
				Type:            content.SectionFeatures,
				Title:           "Benefits",
				BackgroundColor: "muted",
				Items:           benefitItems(c.derived.JobBenefits()),
			},
			{
				ID:       "team",
				Type:     content.SectionTeam,
				Title:    "Meet the team",
				Settings: content.SectionSettings{Layout: "grid", Columns: 3, Featured: cat.Team},
			},
		},
	}

	contact := content.PageContent{
		ID:          "contact",
		Slug:        "contact",
		Title:       "Contact",
		Description: "Get in touch with " + site.SiteName + ".",
		Sections: []content.PageSection{
			{
				ID:    "contact",
				Type:  content.SectionContact,
				Title: "Talk to us",
				Settings: content.SectionSettings{
					Layout: "split",
					Extra: map[string]any{
						"email":   site.ContactEmail,
						"phone":   site.ContactPhone,
						"address": site.Address,
						"social":  site.Social,
					},
				},
			},
			{
				ID:       "faq",
				Type:     content.SectionFAQ,
				Title:    "Common questions",
				Settings: content.SectionSettings{Featured: c.derived.FAQs.BySource(derived.SourceGeneric)},
			},
		},
	}

	blog := content.PageContent{
		ID:          "blog",
		Slug:        "blog",
		Title:       "Blog",
		Description: "Notes on software, cloud and data from the " + site.SiteName + " team.",
		Sections: []content.PageSection{
			{
				ID:       "blog",
				Type:     content.SectionBlog,
				Title:    "Latest posts",
				Settings: content.SectionSettings{Animation: fadeUp(0), Layout: "grid", Columns: 2, Featured: cat.BlogPosts},
			},
		},
	}

	faq := content.PageContent{
		ID:          "faq",
		Slug:        "faq",
		Title:       "Frequently asked questions",
		Description: "Answers about " + site.SiteName + " products, services and company.",
		Sections: []content.PageSection{
			{
				ID:       "faq",
				Type:     content.SectionFAQ,
				Title:    "Frequently asked questions",
				Settings: content.SectionSettings{Featured: c.derived.FAQs.All()},
			},
			{
				ID:    "links",
				Type:  content.SectionLinks,
				Title: "Still have questions?",
				Items: []content.SectionItem{
					{ID: "contact", Title: "Contact us", URL: "/contact"},
					{ID: "services", Title: "Browse services", URL: "/services"},
				},
			},
		},
	}

	return []content.PageContent{home, about, services, products, careers, contact, blog, faq}
}

func benefitItems(benefits []derived.Benefit) []content.SectionItem {
	items := make([]content.SectionItem, 0, len(benefits))
	for _, b := range benefits {
		items = append(items, content.SectionItem{
			ID:          b.Key,
			Title:       b.Title,
			Description: b.Description,
			Icon:        b.Icon,
		})
	}
	return items
}
