package nav

import (
	"context"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/puzzo-dev/sitefront/internal/catalog"
)

// RenderedItem is the view model consumed by the desktop bar and the mobile menu.
type RenderedItem struct {
	ID       int            `json:"id"`
	Name     string         `json:"name"`
	Path     string         `json:"path"`
	IsButton bool           `json:"isButton"`
	Active   bool           `json:"active"`
	Children []RenderedItem `json:"children,omitempty"`
}

// Crumb represents a breadcrumb entry.
type Crumb struct {
	Href   string `json:"href"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// Source supplies remote navigation. A nil result means the fetch failed.
type Source interface {
	FetchNavigation(ctx context.Context) []catalog.NavItem
}

// Translator resolves key for lang, returning fallback when no translation exists.
type Translator func(lang, key, fallback string) string

// Resolver merges remote and static navigation into rendered items.
type Resolver struct {
	remote Source
	static []catalog.NavItem
	t      Translator
}

// NewResolver builds a Resolver. remote and t may be nil.
func NewResolver(remote Source, static []catalog.NavItem, t Translator) *Resolver {
	if t == nil {
		t = func(_, _, fallback string) string { return fallback }
	}
	return &Resolver{remote: remote, static: static, t: t}
}

// Items picks the navigation source: the remote list when it is non-empty, else the static list.
func (r *Resolver) Items(ctx context.Context) []catalog.NavItem {
	if r.remote != nil {
		if items := r.remote.FetchNavigation(ctx); len(items) > 0 {
			return items
		}
	}
	return r.static
}

// Resolve produces the visible, localised navigation tree for lang. It is recomputed on every
// call so names track the active language.
func (r *Resolver) Resolve(ctx context.Context, lang, currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	return r.render(FilterVisible(r.Items(ctx)), lang, currentPath)
}

func (r *Resolver) render(items []catalog.NavItem, lang, currentPath string) []RenderedItem {
	out := make([]RenderedItem, 0, len(items))
	for _, it := range items {
		p := URLPath(it.URL)
		ri := RenderedItem{
			ID:       it.ID,
			Name:     r.name(it, lang),
			Path:     p,
			IsButton: it.IsButton,
			Active:   isActive(p, currentPath),
		}
		if len(it.Children) > 0 {
			ri.Children = r.render(it.Children, lang, currentPath)
			for _, c := range ri.Children {
				ri.Active = ri.Active || c.Active
			}
		}
		out = append(out, ri)
	}
	return out
}

func (r *Resolver) name(it catalog.NavItem, lang string) string {
	if it.TranslationKey == "" {
		return it.Label
	}
	return r.t(lang, "nav."+it.TranslationKey, it.Label)
}

// FilterVisible drops hidden items at every level and orders siblings by Order. The input is
// not modified.
func FilterVisible(items []catalog.NavItem) []catalog.NavItem {
	out := make([]catalog.NavItem, 0, len(items))
	for _, it := range items {
		if !it.IsVisible() {
			continue
		}
		if len(it.Children) > 0 {
			it.Children = FilterVisible(it.Children)
		}
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// URLPath normalises a navigation URL. Absolute http(s), mailto and tel links pass through;
// everything else becomes a clean site-relative path keeping its query and fragment.
func URLPath(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "/" + strings.TrimLeft(raw, "/")
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host != "" {
			return u.String()
		}
	case "mailto", "tel":
		return raw
	}
	p := u.Path
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = path.Clean(p)
	out := p
	if u.RawQuery != "" {
		out += "?" + u.RawQuery
	}
	if u.Fragment != "" {
		out += "#" + u.Fragment
	}
	return out
}

func isActive(itemPath, currentPath string) bool {
	if i := strings.IndexAny(itemPath, "?#"); i >= 0 {
		itemPath = itemPath[:i]
	}
	if !strings.HasPrefix(itemPath, "/") {
		return false
	}
	if itemPath == "/" {
		return currentPath == "/"
	}
	// match exact or prefix boundary: "/services" or "/services/..."
	if currentPath == itemPath {
		return true
	}
	if strings.HasPrefix(currentPath, itemPath+"/") {
		return true
	}
	return false
}

// Breadcrumbs builds breadcrumb entries from the current path.
// Rules:
// - Always start with Home
// - Segments matching a navigation path use its resolved name
// - Other segments use a prettified segment label
func Breadcrumbs(currentPath string, items []RenderedItem) []Crumb {
	if currentPath == "" {
		currentPath = "/"
	}
	names := map[string]string{}
	collectNames(items, names)

	home := names["/"]
	if home == "" {
		home = "Home"
	}
	crumbs := []Crumb{{Href: "/", Label: home, Active: currentPath == "/"}}
	if currentPath == "/" {
		return crumbs
	}

	clean := path.Clean(currentPath)
	if clean == "." || clean == "/" {
		return crumbs
	}
	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")
	href := ""
	for i, seg := range parts {
		href += "/" + seg
		label := names[href]
		if label == "" {
			label = titleFromSegment(seg)
		}
		crumbs = append(crumbs, Crumb{Href: href, Label: label, Active: i == len(parts)-1})
	}
	return crumbs
}

func collectNames(items []RenderedItem, into map[string]string) {
	for _, it := range items {
		if _, seen := into[it.Path]; !seen {
			into[it.Path] = it.Name
		}
		collectNames(it.Children, into)
	}
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	// replace hyphens/underscores with spaces and capitalize first letter
	s := strings.ReplaceAll(seg, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	r := []rune(s)
	r[0] = toUpper(r[0])
	return string(r)
}

func toUpper(r rune) rune {
	// ASCII only is sufficient for slugs here
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
