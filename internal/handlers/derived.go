package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/puzzo-dev/sitefront/internal/derived"
	"github.com/puzzo-dev/sitefront/internal/seo"
)

// Benefits lists derived benefits. Filters, first match wins: ?q= (search), ?product=<slug>,
// ?service=<slug>, ?sourceId=<id>, ?source=<kind>.
func (h *Handlers) Benefits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]derived.Benefit{"benefits": h.derived.Benefits.Select(queryFrom(r.URL.Query()))})
}

// FAQs lists derived FAQs with the same filters as Benefits.
func (h *Handlers) FAQs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]derived.FAQ{"faqs": h.derived.FAQs.Select(queryFrom(r.URL.Query()))})
}

func queryFrom(v url.Values) derived.Query {
	q := derived.Query{
		Search:    v.Get("q"),
		HasSearch: v.Has("q"),
		Product:   v.Get("product"),
		Service:   v.Get("service"),
		Source:    derived.SourceKind(v.Get("source")),
	}
	if raw := v.Get("sourceId"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			q.SourceID = id
		}
	}
	return q
}

func faqPairs(faqs []derived.FAQ) []seo.QA {
	out := make([]seo.QA, 0, len(faqs))
	for _, f := range faqs {
		out = append(out, seo.QA{Question: f.Question, Answer: f.Answer})
	}
	return out
}
