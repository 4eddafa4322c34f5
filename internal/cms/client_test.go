package cms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/puzzo-dev/sitefront/internal/clock"
	"github.com/puzzo-dev/sitefront/internal/config"
	"github.com/puzzo-dev/sitefront/internal/content"
)

const siteConfigBody = `{
  "data": {
    "id": 7,
    "attributes": {
      "siteName": "Remote Site",
      "tagline": "From the CMS",
      "logo": {"data": {"id": 1, "attributes": {"url": "/uploads/logo.png"}}},
      "contactEmail": "cms@example.com",
      "social": [{"platform": "x", "url": "https://x.com/remote"}],
      "features": {"blog": false},
      "erpBaseUrl": "https://erp.example.com",
      "erpApiKey": "k",
      "erpApiSecret": "s"
    }
  }
}`

const navigationBody = `{
  "data": [
    {"id": 1, "attributes": {"label": "Home", "url": "/", "order": 1}},
    {"id": 2, "attributes": {"label": "Work", "translationKey": "work", "url": "/work", "order": 2,
      "children": [{"id": 21, "label": "Case studies", "url": "/work/case-studies", "order": 1, "visible": false}]}}
  ]
}`

const pageBody = `{
  "data": [
    {"id": 3, "attributes": {
      "slug": "privacy-policy",
      "title": "Privacy",
      "seo": {"metaTitle": "Privacy | Remote", "keywords": "privacy, data"},
      "sections": [
        {"__component": "sections.hero", "id": 1, "title": "Your data", "settings": {"animation": {"type": "fade"}, "columns": 2, "parallax": true}},
        {"__component": "sections.case_studies", "id": 2, "content": [{"type": "paragraph", "children": [{"type": "text", "text": "Body"}]}],
         "items": [{"id": 5, "name": "Eze", "image": {"url": "/e.png"}}]},
        {"__component": "sections.carousel", "id": 3, "content": "## Markdown"}
      ]
    }}
  ]
}`

type cmsServer struct {
	*httptest.Server
	hits atomic.Int32
	auth atomic.Value
}

func newCMSServer(t *testing.T, routes map[string]string) *cmsServer {
	t.Helper()
	s := &cmsServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		s.auth.Store(r.Header.Get("Authorization"))
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

func TestFetchConfigCachesUntilTTL(t *testing.T) {
	srv := newCMSServer(t, map[string]string{"/api/site-config": siteConfigBody})
	clk := clock.NewManual(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	client := NewClient(Options{BaseURL: srv.URL, Clock: clk, Tokens: StaticToken("dev-token")})
	ctx := context.Background()

	first := client.FetchConfig(ctx)
	require.NotNil(t, first)
	require.Equal(t, 7, first.ID)
	require.Equal(t, "Remote Site", first.SiteName)
	require.Equal(t, "/uploads/logo.png", first.Logo)
	require.NotNil(t, first.ERP)
	require.Equal(t, "https://erp.example.com", first.ERP.BaseURL)
	require.Equal(t, "Bearer dev-token", srv.auth.Load())

	clk.Advance(4 * time.Minute)
	second := client.FetchConfig(ctx)
	require.Same(t, first, second)
	require.EqualValues(t, 1, srv.hits.Load())

	clk.Advance(time.Minute)
	third := client.FetchConfig(ctx)
	require.NotNil(t, third)
	require.NotSame(t, first, third)
	require.EqualValues(t, 2, srv.hits.Load())
}

func TestClearCacheForcesRefetch(t *testing.T) {
	srv := newCMSServer(t, map[string]string{"/api/site-config": siteConfigBody})
	client := NewClient(Options{BaseURL: srv.URL})
	ctx := context.Background()

	first := client.FetchConfig(ctx)
	require.NotNil(t, first)
	client.ClearCache(ctx)
	second := client.FetchConfig(ctx)
	require.NotNil(t, second)
	require.NotSame(t, first, second)
	require.EqualValues(t, 2, srv.hits.Load())
}

func TestFetchFailuresReturnNil(t *testing.T) {
	ctx := context.Background()

	t.Run("non-2xx", func(t *testing.T) {
		srv := newCMSServer(t, nil)
		client := NewClient(Options{BaseURL: srv.URL})
		require.Nil(t, client.FetchConfig(ctx))
		require.Nil(t, client.FetchNavigation(ctx))
		require.Nil(t, client.FetchPage(ctx, "pages", "home"))
	})

	t.Run("missing data", func(t *testing.T) {
		srv := newCMSServer(t, map[string]string{"/api/site-config": `{"data": null}`})
		client := NewClient(Options{BaseURL: srv.URL})
		require.Nil(t, client.FetchConfig(ctx))
	})

	t.Run("not configured", func(t *testing.T) {
		client := NewClient(Options{})
		require.False(t, client.Configured())
		require.Nil(t, client.FetchConfig(ctx))
	})

	t.Run("failures are not cached", func(t *testing.T) {
		srv := newCMSServer(t, map[string]string{"/api/site-config": `not json`})
		client := NewClient(Options{BaseURL: srv.URL})
		require.Nil(t, client.FetchConfig(ctx))
		require.Nil(t, client.FetchConfig(ctx))
		require.EqualValues(t, 2, srv.hits.Load())
	})
}

func TestRequiredAuthWithoutTokenNeverCallsCMS(t *testing.T) {
	srv := newCMSServer(t, map[string]string{"/api/site-config": siteConfigBody})
	client := NewClient(Options{BaseURL: srv.URL, RequireAuth: true, Tokens: StaticToken("")})

	require.Nil(t, client.FetchConfig(context.Background()))
	require.EqualValues(t, 0, srv.hits.Load())
}

func TestOptionalAuthFallsBackToAnonymous(t *testing.T) {
	srv := newCMSServer(t, map[string]string{"/api/site-config": siteConfigBody})
	client := NewClient(Options{BaseURL: srv.URL, Tokens: StaticToken("")})

	require.NotNil(t, client.FetchConfig(context.Background()))
	require.Equal(t, "", srv.auth.Load())
}

func TestEndpointTokenSource(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("sid")
		if err != nil || cookie.Value != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"issued"}`))
	}))
	t.Cleanup(tokenSrv.Close)
	cmsSrv := newCMSServer(t, map[string]string{"/api/site-config": siteConfigBody})

	src := TokenSourceFromConfig(config.CMSConfig{
		Mode:          config.CMSModeDeployed,
		TokenEndpoint: tokenSrv.URL,
		SessionCookie: "sid=abc",
		Timeout:       time.Second,
	})
	client := NewClient(Options{BaseURL: cmsSrv.URL, Tokens: src, RequireAuth: true})
	require.NotNil(t, client.FetchConfig(context.Background()))
	require.Equal(t, "Bearer issued", cmsSrv.auth.Load())

	denied := NewEndpointTokenSource(tokenSrv.URL, "wrong", time.Second)
	_, err := denied.Token(context.Background())
	require.ErrorIs(t, err, ErrNoToken)
}

func TestFetchNavigation(t *testing.T) {
	srv := newCMSServer(t, map[string]string{"/api/navigation": navigationBody})
	client := NewClient(Options{BaseURL: srv.URL})

	items := client.FetchNavigation(context.Background())
	require.Len(t, items, 2)
	require.Equal(t, "Work", items[1].Label)
	require.Equal(t, "work", items[1].TranslationKey)
	require.Len(t, items[1].Children, 1)
	require.False(t, items[1].Children[0].IsVisible())
	require.True(t, items[0].IsVisible())
}

func TestFetchNavigationEmptyListIsSuccess(t *testing.T) {
	srv := newCMSServer(t, map[string]string{"/api/navigation": `{"data": []}`})
	client := NewClient(Options{BaseURL: srv.URL})

	items := client.FetchNavigation(context.Background())
	require.NotNil(t, items)
	require.Empty(t, items)
}

func TestFetchPageMapsSections(t *testing.T) {
	var gotPath, gotSlug string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSlug = r.URL.Query().Get("filters[slug][$eq]")
		_, _ = w.Write([]byte(pageBody))
	}))
	t.Cleanup(srv.Close)
	client := NewClient(Options{BaseURL: srv.URL})

	page := client.FetchPage(context.Background(), "legal-pages", "privacy-policy")
	require.NotNil(t, page)
	require.Equal(t, "/api/legal-pages", gotPath)
	require.Equal(t, "privacy-policy", gotSlug)
	require.Equal(t, "3", page.ID)
	require.Equal(t, "Privacy | Remote", page.MetaTitle)
	require.Equal(t, []string{"privacy", "data"}, page.Keywords)
	require.Len(t, page.Sections, 3)

	hero := page.Sections[0]
	require.Equal(t, content.SectionHero, hero.Type)
	require.Equal(t, "hero-1", hero.ID)
	require.NotNil(t, hero.Settings.Animation)
	require.Equal(t, 2, hero.Settings.Columns)
	require.Equal(t, true, hero.Settings.Extra["parallax"])

	cases := page.Sections[1]
	require.Equal(t, content.SectionCaseStudies, cases.Type)
	require.Len(t, cases.Blocks, 1)
	require.Equal(t, "Eze", cases.Items[0].Title)
	require.Equal(t, "/e.png", cases.Items[0].Image)

	require.Equal(t, content.SectionCustom, page.Sections[2].Type)
	require.Equal(t, "## Markdown", page.Sections[2].Content)
}

func TestFetchPageSingleBody(t *testing.T) {
	srv := newCMSServer(t, map[string]string{
		"/api/terms-of-service": `{"data": {"id": 1, "attributes": {"title": "Terms", "content": "Be nice."}}}`,
	})
	client := NewClient(Options{BaseURL: srv.URL})

	page := client.FetchPage(context.Background(), "terms-of-service", "")
	require.NotNil(t, page)
	require.Len(t, page.Sections, 1)
	require.Equal(t, "Be nice.", page.Sections[0].Content)
}

func TestFetchPageEmptyResultIsFailure(t *testing.T) {
	srv := newCMSServer(t, map[string]string{"/api/pages": `{"data": []}`})
	client := NewClient(Options{BaseURL: srv.URL})
	require.Nil(t, client.FetchPage(context.Background(), "pages", "missing"))
}

type memoryShared struct {
	mu      sync.Mutex
	entries map[string][]byte
	cleared int
}

func (m *memoryShared) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (m *memoryShared) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *memoryShared) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = map[string][]byte{}
	m.cleared++
	return nil
}

func TestSharedCacheServesOtherInstances(t *testing.T) {
	srv := newCMSServer(t, map[string]string{"/api/site-config": siteConfigBody})
	shared := &memoryShared{entries: map[string][]byte{}}
	ctx := context.Background()

	a := NewClient(Options{BaseURL: srv.URL, Shared: shared})
	require.NotNil(t, a.FetchConfig(ctx))
	require.Contains(t, shared.entries, kindSiteConfig)

	b := NewClient(Options{BaseURL: srv.URL, Shared: shared})
	cfg := b.FetchConfig(ctx)
	require.NotNil(t, cfg)
	require.Equal(t, "Remote Site", cfg.SiteName)
	require.EqualValues(t, 1, srv.hits.Load())

	b.ClearCache(ctx)
	require.Equal(t, 1, shared.cleared)
	require.NotNil(t, b.FetchConfig(ctx))
	require.EqualValues(t, 2, srv.hits.Load())
}

type recordingMeter struct {
	noop.Meter
	mu        sync.Mutex
	lookups   map[string]int64
	latencies map[string]int
}

func newRecordingMeter() *recordingMeter {
	return &recordingMeter{lookups: map[string]int64{}, latencies: map[string]int{}}
}

func (m *recordingMeter) Int64Counter(string, ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	return &recordingCounter{meter: m}, nil
}

func (m *recordingMeter) Float64Histogram(string, ...metric.Float64HistogramOption) (metric.Float64Histogram, error) {
	return &recordingHistogram{meter: m}, nil
}

func (m *recordingMeter) counts() (map[string]int64, map[string]int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lookups := make(map[string]int64, len(m.lookups))
	for k, v := range m.lookups {
		lookups[k] = v
	}
	latencies := make(map[string]int, len(m.latencies))
	for k, v := range m.latencies {
		latencies[k] = v
	}
	return lookups, latencies
}

type recordingCounter struct {
	noop.Int64Counter
	meter *recordingMeter
}

func (c *recordingCounter) Add(_ context.Context, n int64, opts ...metric.AddOption) {
	attrs := metric.NewAddConfig(opts).Attributes()
	source, _ := attrs.Value("source")
	c.meter.mu.Lock()
	c.meter.lookups[source.AsString()] += n
	c.meter.mu.Unlock()
}

type recordingHistogram struct {
	noop.Float64Histogram
	meter *recordingMeter
}

func (h *recordingHistogram) Record(_ context.Context, _ float64, opts ...metric.RecordOption) {
	attrs := metric.NewRecordConfig(opts).Attributes()
	source, _ := attrs.Value("source")
	h.meter.mu.Lock()
	h.meter.latencies[source.AsString()]++
	h.meter.mu.Unlock()
}

func TestFetchRecordsLookupMetrics(t *testing.T) {
	srv := newCMSServer(t, map[string]string{"/api/site-config": siteConfigBody})
	shared := &memoryShared{entries: map[string][]byte{}}
	meter := newRecordingMeter()
	ctx := context.Background()

	a := NewClient(Options{BaseURL: srv.URL, Shared: shared, Meter: meter})
	require.NotNil(t, a.FetchConfig(ctx))
	require.NotNil(t, a.FetchConfig(ctx))

	b := NewClient(Options{BaseURL: srv.URL, Shared: shared, Meter: meter})
	require.NotNil(t, b.FetchConfig(ctx))
	require.Nil(t, b.FetchPage(ctx, "pages", "missing"))

	lookups, latencies := meter.counts()
	require.Equal(t, map[string]int64{"network": 1, "memory": 1, "shared": 1, "error": 1}, lookups)
	require.Equal(t, map[string]int{"network": 1, "shared": 1, "error": 1}, latencies)
}

func TestEntriesAcceptsFlatAndWrappedShapes(t *testing.T) {
	flat, err := entries(json.RawMessage(`[{"id":1,"label":"A"}]`))
	require.NoError(t, err)
	require.JSONEq(t, `{"id":1,"label":"A"}`, string(flat[0]))

	wrapped, err := entries(json.RawMessage(`{"data":{"id":2,"attributes":{"label":"B"}}}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"id":2,"label":"B"}`, string(wrapped[0]))

	none, err := entries(json.RawMessage(`null`))
	require.NoError(t, err)
	require.Empty(t, none)
}
