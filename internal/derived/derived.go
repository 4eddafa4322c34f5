// Package derived flattens the benefits and FAQs nested under products, services and jobs into
// globally addressable collections. Extraction runs once; every accessor is a pure read.
package derived

import (
	"strconv"
	"strings"

	"github.com/puzzo-dev/sitefront/internal/catalog"
)

// SourceKind names where a derived entity came from.
type SourceKind string

const (
	SourceProduct SourceKind = "product"
	SourceService SourceKind = "service"
	SourceJob     SourceKind = "job"
	SourceGeneric SourceKind = "generic"
)

// Benefit is the public, provenance-free view of a derived benefit.
type Benefit struct {
	ID          int    `json:"id"`
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
}

// FAQ is the public, provenance-free view of a derived question.
type FAQ struct {
	ID       int    `json:"id"`
	Key      string `json:"key"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type provenance struct {
	source      SourceKind
	sourceID    int
	sourceSlug  string
	sourceTitle string
}

func (p provenance) key(localIndex int) string {
	return string(p.source) + ":" + strconv.Itoa(p.sourceID) + ":" + strconv.Itoa(localIndex)
}

type record[T any] struct {
	value  T
	origin provenance
	text   string
}

// Collection is an ordered set of derived entities. Values handed out never carry provenance.
type Collection[T any] struct {
	records []record[T]
}

func (c *Collection[T]) add(origin provenance, localIndex int, build func(id int, key string) T, text ...string) {
	id := len(c.records) + 1
	c.records = append(c.records, record[T]{
		value:  build(id, origin.key(localIndex)),
		origin: origin,
		text:   strings.ToLower(strings.Join(append(text, origin.sourceTitle), "\x00")),
	})
}

func (c *Collection[T]) filter(keep func(provenance) bool) []T {
	out := []T{}
	for _, r := range c.records {
		if keep(r.origin) {
			out = append(out, r.value)
		}
	}
	return out
}

// Len returns the number of entities.
func (c *Collection[T]) Len() int { return len(c.records) }

// All returns every entity in insertion order.
func (c *Collection[T]) All() []T {
	return c.filter(func(provenance) bool { return true })
}

// BySource returns entities extracted from the given source kind.
func (c *Collection[T]) BySource(kind SourceKind) []T {
	return c.filter(func(p provenance) bool { return p.source == kind })
}

// ByProduct returns entities extracted from the product with the given slug.
func (c *Collection[T]) ByProduct(slug string) []T {
	return c.filter(func(p provenance) bool { return p.source == SourceProduct && p.sourceSlug == slug })
}

// ByService returns entities extracted from the service with the given slug.
func (c *Collection[T]) ByService(slug string) []T {
	return c.filter(func(p provenance) bool { return p.source == SourceService && p.sourceSlug == slug })
}

// BySourceID returns entities whose source entity has the given id, across all source kinds.
func (c *Collection[T]) BySourceID(id int) []T {
	return c.filter(func(p provenance) bool { return p.source != SourceGeneric && p.sourceID == id })
}

// Search returns entities whose display text or source title contains query, ignoring case. The
// query is matched as given, so an empty query matches everything.
func (c *Collection[T]) Search(query string) []T {
	q := strings.ToLower(query)
	out := []T{}
	for _, r := range c.records {
		if strings.Contains(r.text, q) {
			out = append(out, r.value)
		}
	}
	return out
}

// Query selects from a Collection. The first populated criterion wins, in field order; a zero
// Query selects everything. HasSearch marks Search as set even when it is empty.
type Query struct {
	Search    string
	HasSearch bool
	Product   string
	Service   string
	SourceID  int
	Source    SourceKind
}

// Select applies q. The result is never nil.
func (c *Collection[T]) Select(q Query) []T {
	var out []T
	switch {
	case q.HasSearch:
		out = c.Search(q.Search)
	case q.Product != "":
		out = c.ByProduct(q.Product)
	case q.Service != "":
		out = c.ByService(q.Service)
	case q.SourceID > 0:
		out = c.BySourceID(q.SourceID)
	case q.Source != "":
		out = c.BySource(q.Source)
	default:
		out = c.All()
	}
	if out == nil {
		out = []T{}
	}
	return out
}

// Set holds the derived benefit and FAQ collections.
type Set struct {
	Benefits *Collection[Benefit]
	FAQs     *Collection[FAQ]
}

// JobBenefits returns the deduplicated benefits listed on job postings.
func (s *Set) JobBenefits() []Benefit {
	return s.Benefits.BySource(SourceJob)
}

// Extract builds the derived collections from cat: products, then services, then job benefits,
// then company FAQs.
func Extract(cat *catalog.Catalog) *Set {
	set := &Set{Benefits: &Collection[Benefit]{}, FAQs: &Collection[FAQ]{}}
	if cat == nil {
		return set
	}

	for _, p := range cat.Products {
		origin := provenance{source: SourceProduct, sourceID: p.ID, sourceSlug: p.Slug, sourceTitle: p.Name}
		addBenefits(set.Benefits, origin, p.Benefits)
		addFAQs(set.FAQs, origin, p.FAQs)
	}
	for _, s := range cat.Services {
		origin := provenance{source: SourceService, sourceID: s.ID, sourceSlug: s.Slug, sourceTitle: s.Title}
		addBenefits(set.Benefits, origin, s.Benefits)
		addFAQs(set.FAQs, origin, s.FAQs)
	}

	// Identical strings collapse to one entity owned by the first job that lists them.
	seen := map[string]bool{}
	for _, j := range cat.Jobs {
		origin := provenance{source: SourceJob, sourceID: j.ID, sourceSlug: j.Slug, sourceTitle: j.Title}
		for i, text := range j.Benefits {
			if text == "" || seen[text] {
				continue
			}
			seen[text] = true
			text := text
			set.Benefits.add(origin, i, func(id int, key string) Benefit {
				return Benefit{ID: id, Key: key, Title: text}
			}, text)
		}
	}

	generic := provenance{source: SourceGeneric}
	addFAQs(set.FAQs, generic, cat.CompanyFAQs)
	return set
}

func addBenefits(c *Collection[Benefit], origin provenance, items []catalog.BenefitItem) {
	for i, b := range items {
		b := b
		c.add(origin, i, func(id int, key string) Benefit {
			return Benefit{ID: id, Key: key, Title: b.Title, Description: b.Description, Icon: b.Icon}
		}, b.Title, b.Description)
	}
}

func addFAQs(c *Collection[FAQ], origin provenance, items []catalog.FAQItem) {
	for i, f := range items {
		f := f
		c.add(origin, i, func(id int, key string) FAQ {
			return FAQ{ID: id, Key: key, Question: f.Question, Answer: f.Answer}
		}, f.Question, f.Answer)
	}
}
