package derived

import (
	"github.com/puzzo-dev/sitefront/internal/catalog"
)

const maxFooterLinks = 5

// FooterColumns returns the static footer sections followed by link columns generated from the
// service, product and job catalogs. Empty generated columns are omitted.
func FooterColumns(cat *catalog.Catalog) []catalog.FooterSection {
	if cat == nil {
		return nil
	}
	out := make([]catalog.FooterSection, 0, len(cat.Footer)+3)
	out = append(out, cat.Footer...)

	services := catalog.FooterSection{Title: "Services", TranslationKey: "services"}
	for _, s := range cat.Services {
		services.Links = appendLink(services.Links, s.Title, "/services/"+s.Slug)
	}
	products := catalog.FooterSection{Title: "Products", TranslationKey: "products"}
	for _, p := range cat.Products {
		products.Links = appendLink(products.Links, p.Name, "/products/"+p.Slug)
	}
	careers := catalog.FooterSection{Title: "Open Roles", TranslationKey: "openRoles"}
	for _, j := range cat.Jobs {
		careers.Links = appendLink(careers.Links, j.Title, "/careers/"+j.Slug)
	}

	for _, col := range []catalog.FooterSection{services, products, careers} {
		if len(col.Links) > 0 {
			out = append(out, col)
		}
	}
	return out
}

func appendLink(links []catalog.FooterLink, label, url string) []catalog.FooterLink {
	if len(links) >= maxFooterLinks || label == "" {
		return links
	}
	return append(links, catalog.FooterLink{Label: label, URL: url})
}
