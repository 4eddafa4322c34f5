package derived

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/puzzo-dev/sitefront/internal/catalog"
)

func fixtureCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Products: []catalog.Product{
			{ID: 1, Slug: "ledger", Name: "Ledger",
				Benefits: []catalog.BenefitItem{{Title: "Fast close"}, {Title: "Audit trail"}},
				FAQs:     []catalog.FAQItem{{Question: "Is there an API?", Answer: "Yes."}}},
			{ID: 2, Slug: "empty", Name: "Empty"},
		},
		Services: []catalog.Service{
			{ID: 1, Slug: "cloud", Title: "Cloud Migration",
				Benefits: []catalog.BenefitItem{{Title: "Lower cost", Description: "Right-sized resources"}},
				FAQs:     []catalog.FAQItem{{Question: "Which clouds?", Answer: "All major ones."}}},
		},
		Jobs: []catalog.Job{
			{ID: 10, Slug: "go", Title: "Go Engineer", Benefits: []string{"Health insurance", "Remote"}},
			{ID: 11, Slug: "design", Title: "Designer", Benefits: []string{"Remote", "health insurance", "Health insurance "}},
		},
		CompanyFAQs: []catalog.FAQItem{{Question: "Where are you?", Answer: "Lagos."}},
	}
}

func TestIDsAreUniqueAcrossSources(t *testing.T) {
	sets := []*Set{Extract(fixtureCatalog()), Extract(catalog.MustDefault())}
	for _, set := range sets {
		ids := map[int]bool{}
		keys := map[string]bool{}
		for _, b := range set.Benefits.All() {
			require.False(t, ids[b.ID], "duplicate benefit id %d", b.ID)
			require.False(t, keys[b.Key], "duplicate benefit key %s", b.Key)
			ids[b.ID], keys[b.Key] = true, true
		}
		ids = map[int]bool{}
		keys = map[string]bool{}
		for _, f := range set.FAQs.All() {
			require.False(t, ids[f.ID], "duplicate faq id %d", f.ID)
			require.False(t, keys[f.Key], "duplicate faq key %s", f.Key)
			ids[f.ID], keys[f.Key] = true, true
		}
	}
}

func TestExtractionOrderAndKeys(t *testing.T) {
	set := Extract(fixtureCatalog())

	benefits := set.Benefits.All()
	require.Len(t, benefits, 7)
	require.Equal(t, "product:1:0", benefits[0].Key)
	require.Equal(t, 1, benefits[0].ID)
	require.Equal(t, "product:1:1", benefits[1].Key)
	require.Equal(t, "service:1:0", benefits[2].Key)
	require.Equal(t, "job:10:0", benefits[3].Key)

	faqs := set.FAQs.All()
	require.Len(t, faqs, 3)
	require.Equal(t, "generic:0:0", faqs[2].Key)
	require.Equal(t, 3, faqs[2].ID)
}

func TestPublicValuesCarryNoProvenance(t *testing.T) {
	set := Extract(fixtureCatalog())

	raw, err := json.Marshal(map[string]any{
		"benefits": set.Benefits.All(),
		"faqs":     set.FAQs.ByProduct("ledger"),
		"search":   set.Benefits.Search("cloud"),
	})
	require.NoError(t, err)

	var decoded map[string][]map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, list := range decoded {
		for _, entity := range list {
			for _, banned := range []string{"source", "sourceId", "sourceSlug", "sourceTitle"} {
				require.NotContains(t, entity, banned)
			}
		}
	}
}

func TestJobBenefitsDeduplicateExactStrings(t *testing.T) {
	set := Extract(fixtureCatalog())

	titles := []string{}
	for _, b := range set.JobBenefits() {
		titles = append(titles, b.Title)
	}
	require.Equal(t, []string{"Health insurance", "Remote", "health insurance", "Health insurance "}, titles)

	// "Remote" is owned by the first job that lists it.
	require.Len(t, set.Benefits.BySourceID(10), 2)
	require.Len(t, set.Benefits.BySourceID(11), 2)
}

func TestAccessors(t *testing.T) {
	set := Extract(fixtureCatalog())

	require.Len(t, set.Benefits.ByProduct("ledger"), 2)
	require.Empty(t, set.Benefits.ByProduct("empty"))
	require.Empty(t, set.Benefits.ByProduct("cloud"))
	require.Len(t, set.Benefits.ByService("cloud"), 1)
	require.Len(t, set.FAQs.BySource(SourceGeneric), 1)
	require.Len(t, set.FAQs.BySource(SourceService), 1)

	require.Len(t, set.Benefits.Search("RIGHT-SIZED"), 1)
	require.Len(t, set.FAQs.Search("ledger"), 1, "source title is searchable")
	require.Empty(t, set.FAQs.Search("nothing like this"))
}

func TestSearchMatchesQueryVerbatim(t *testing.T) {
	set := Extract(fixtureCatalog())

	require.Equal(t, set.FAQs.All(), set.FAQs.Search(""))
	require.Equal(t, set.Benefits.All(), set.Benefits.Search(""))

	lower := set.Benefits.Search(" COST")
	require.Len(t, lower, 1)
	require.Equal(t, "Lower cost", lower[0].Title)
	require.Empty(t, set.Benefits.Search("close "))
	require.Empty(t, set.Benefits.Search(" fast"))
}

func TestExtractNilCatalog(t *testing.T) {
	set := Extract(nil)
	require.Equal(t, 0, set.Benefits.Len())
	require.NotNil(t, set.FAQs.All())
}

func TestFooterColumns(t *testing.T) {
	cat := catalog.MustDefault()
	cols := FooterColumns(cat)

	require.Equal(t, cat.Footer, cols[:len(cat.Footer)])
	generated := cols[len(cat.Footer):]
	require.Len(t, generated, 3)
	require.Equal(t, "Services", generated[0].Title)
	require.Equal(t, "/services/"+cat.Services[0].Slug, generated[0].Links[0].URL)

	require.Len(t, FooterColumns(&catalog.Catalog{}), 0)
}

func TestSelect(t *testing.T) {
	set := Extract(fixtureCatalog())
	titles := func(bs []Benefit) []string {
		out := make([]string, 0, len(bs))
		for _, b := range bs {
			out = append(out, b.Title)
		}
		return out
	}

	require.Len(t, set.Benefits.Select(Query{}), set.Benefits.Len())
	require.Equal(t, []string{"Lower cost"}, titles(set.Benefits.Select(Query{Service: "cloud"})))
	require.Equal(t, []string{"Fast close", "Audit trail"}, titles(set.Benefits.Select(Query{Product: "ledger", Source: SourceJob})))
	require.Equal(t, []string{"Health insurance", "Remote"}, titles(set.Benefits.Select(Query{SourceID: 10})))

	require.Equal(t, set.Benefits.All(), set.Benefits.Select(Query{HasSearch: true, Product: "ledger"}))
	require.Equal(t, []string{"Lower cost"}, titles(set.Benefits.Select(Query{Search: "right", HasSearch: true, Product: "ledger"})))

	none := set.FAQs.Select(Query{Product: "empty"})
	require.NotNil(t, none)
	require.Empty(t, none)
}
