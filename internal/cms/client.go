// Package cms reads site configuration, navigation and pages from the headless CMS. Every fetch
// absorbs its failures: callers receive nil and fall back to static content.
package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/puzzo-dev/sitefront/internal/catalog"
	"github.com/puzzo-dev/sitefront/internal/clock"
	"github.com/puzzo-dev/sitefront/internal/config"
	"github.com/puzzo-dev/sitefront/internal/content"
	"github.com/puzzo-dev/sitefront/internal/observability"
)

const (
	// DefaultCacheDuration is how long a successful fetch is served from memory.
	DefaultCacheDuration = 5 * time.Minute
	defaultTimeout       = 5 * time.Second
	maxResponseBytes     = 4 << 20

	kindSiteConfig = "site-config"
	kindNavigation = "navigation"

	metricNamespace = "github.com/puzzo-dev/sitefront/internal/cms"

	sourceMemory  = "memory"
	sourceShared  = "shared"
	sourceNetwork = "network"
	sourceError   = "error"
)

// Options configures a Client.
type Options struct {
	BaseURL       string
	Tokens        TokenSource
	RequireAuth   bool
	CacheDuration time.Duration
	Timeout       time.Duration
	HTTPClient    *http.Client
	Shared        SharedCache
	Clock         clock.Clock
	Logger        *zap.Logger
	// Meter overrides the global meter provider.
	Meter metric.Meter
}

// Client fetches CMS content with a per-kind TTL cache.
type Client struct {
	baseURL     string
	tokens      TokenSource
	requireAuth bool
	ttl         time.Duration
	http        *http.Client
	shared      SharedCache
	clock       clock.Clock
	logger      *zap.Logger

	lookups        metric.Int64Counter
	lookupsEnabled bool
	latency        metric.Float64Histogram
	latencyEnabled bool

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewClient constructs a Client. An empty BaseURL yields a client whose fetches always fail.
func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		tokens:      opts.Tokens,
		requireAuth: opts.RequireAuth,
		ttl:         opts.CacheDuration,
		http:        opts.HTTPClient,
		shared:      opts.Shared,
		clock:       opts.Clock,
		logger:      observability.OrNop(opts.Logger),
		cache:       map[string]cacheEntry{},
	}
	if c.ttl <= 0 {
		c.ttl = DefaultCacheDuration
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.clock == nil {
		c.clock = clock.Real()
	}

	meter := opts.Meter
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(metricNamespace)
	}
	lookups, lookupsErr := meter.Int64Counter(
		"cms.fetch.lookups",
		metric.WithDescription("Count of CMS lookups by the tier that answered them"),
	)
	if lookupsErr != nil {
		c.logger.Warn("cms: unable to register lookup metric", zap.Error(lookupsErr))
	}
	latency, latencyErr := meter.Float64Histogram(
		"cms.fetch.latency",
		metric.WithUnit("ms"),
		metric.WithDescription("Latency in milliseconds for CMS fetches that miss the memory cache"),
	)
	if latencyErr != nil {
		c.logger.Warn("cms: unable to register latency metric", zap.Error(latencyErr))
	}
	c.lookups, c.lookupsEnabled = lookups, lookupsErr == nil
	c.latency, c.latencyEnabled = latency, latencyErr == nil
	return c
}

// NewFromConfig wires a Client from configuration. shared may be nil.
func NewFromConfig(cfg config.CMSConfig, shared SharedCache, logger *zap.Logger) *Client {
	return NewClient(Options{
		BaseURL:       cfg.BaseURL,
		Tokens:        TokenSourceFromConfig(cfg),
		RequireAuth:   cfg.RequireAuth,
		CacheDuration: cfg.CacheDuration,
		Timeout:       cfg.Timeout,
		Shared:        shared,
		Logger:        logger,
	})
}

// Configured reports whether a CMS endpoint is set.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

// FetchConfig returns the remote site configuration, or nil on any failure.
func (c *Client) FetchConfig(ctx context.Context) *content.SiteConfig {
	if c == nil {
		return nil
	}
	key := kindSiteConfig
	if v, ok := c.lookup(ctx, key); ok {
		return v.(*content.SiteConfig)
	}
	cfg, ok := fetchAndMap(ctx, c, key, kindSiteConfig, "", url.Values{"populate": {"*"}}, mapSiteConfig)
	if !ok {
		return nil
	}
	return cfg
}

// FetchNavigation returns the remote navigation list, or nil on any failure. An empty list is a
// successful fetch.
func (c *Client) FetchNavigation(ctx context.Context) []catalog.NavItem {
	if c == nil {
		return nil
	}
	key := kindNavigation
	if v, ok := c.lookup(ctx, key); ok {
		return v.([]catalog.NavItem)
	}
	items, ok := fetchAndMap(ctx, c, key, kindNavigation, "", url.Values{"populate": {"*"}}, mapNavigation)
	if !ok {
		return nil
	}
	return items
}

// FetchPage returns the page of the given collection kind and slug, or nil on any failure. An
// empty slug fetches kind as a single-entry type.
func (c *Client) FetchPage(ctx context.Context, kind, slug string) *content.PageContent {
	if c == nil {
		return nil
	}
	kind = sanitizeSegment(kind)
	slug = strings.TrimSpace(slug)
	if kind == "" {
		return nil
	}
	key := "page:" + kind + ":" + slug
	if v, ok := c.lookup(ctx, key); ok {
		return v.(*content.PageContent)
	}
	query := url.Values{"populate": {"*"}}
	if slug != "" {
		query.Set("filters[slug][$eq]", slug)
	}
	page, ok := fetchAndMap(ctx, c, key, kind, slug, query, mapPage)
	if !ok {
		return nil
	}
	return page
}

// ClearCache drops every memory entry and, when configured, the shared cache.
func (c *Client) ClearCache(ctx context.Context) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.cache = map[string]cacheEntry{}
	c.mu.Unlock()
	if c.shared != nil {
		if err := c.shared.Clear(ctx); err != nil {
			c.logger.Warn("cms: clear shared cache", zap.Error(err))
		}
	}
}

func (c *Client) lookup(ctx context.Context, key string) (any, bool) {
	c.mu.Lock()
	entry, ok := c.cache[key]
	fresh := ok && c.clock.Now().Sub(entry.fetchedAt) < c.ttl
	c.mu.Unlock()
	if !fresh {
		return nil, false
	}
	c.countLookup(ctx, key, sourceMemory)
	return entry.value, true
}

func (c *Client) store(key string, value any) {
	c.mu.Lock()
	c.cache[key] = cacheEntry{value: value, fetchedAt: c.clock.Now()}
	c.mu.Unlock()
}

// fetchAndMap resolves key from the shared cache or the network, maps the data payload and
// stores the result in memory. The shared cache is only written after a successful mapping.
func fetchAndMap[T any](ctx context.Context, c *Client, key, kind, slug string, query url.Values, mapFn func(json.RawMessage) (T, error)) (T, bool) {
	var zero T
	ctx, span := observability.Tracer().Start(ctx, "cms.fetch", trace.WithAttributes(
		attribute.String("cms.kind", kind),
		attribute.String("cms.slug", slug),
	))
	defer span.End()

	start := time.Now()
	logger := c.logger.With(zap.String("kind", kind), zap.String("slug", slug))
	fail := func(msg string, err error) (T, bool) {
		c.countLookup(ctx, key, sourceError)
		c.recordLatency(ctx, kind, sourceError, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)
		if errors.Is(err, errNotConfigured) {
			logger.Debug(msg, zap.Error(err))
		} else {
			logger.Warn(msg, zap.Error(err))
		}
		return zero, false
	}

	body, fromShared := c.readShared(ctx, key)
	if !fromShared {
		var err error
		body, err = c.get(ctx, kind, query)
		if err != nil {
			return fail("cms: fetch failed", err)
		}
	}
	data, err := decodeData(body)
	if err != nil {
		return fail("cms: invalid response", err)
	}
	value, err := mapFn(data)
	if err != nil {
		return fail("cms: map response", err)
	}

	c.store(key, value)
	if !fromShared && c.shared != nil {
		if err := c.shared.Set(ctx, key, body, c.ttl); err != nil {
			logger.Warn("cms: write shared cache", zap.Error(err))
		}
	}
	source := sourceNetwork
	if fromShared {
		source = sourceShared
	}
	c.countLookup(ctx, key, source)
	c.recordLatency(ctx, kind, source, time.Since(start))
	span.SetAttributes(attribute.Bool("cms.shared_hit", fromShared))
	return value, true
}

func (c *Client) countLookup(ctx context.Context, key, source string) {
	if !c.lookupsEnabled {
		return
	}
	c.lookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("key", key),
		attribute.String("source", source),
	))
}

func (c *Client) recordLatency(ctx context.Context, kind, source string, d time.Duration) {
	if !c.latencyEnabled {
		return
	}
	c.latency.Record(ctx, float64(d)/float64(time.Millisecond), metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("source", source),
	))
}

func (c *Client) readShared(ctx context.Context, key string) ([]byte, bool) {
	if c.shared == nil {
		return nil, false
	}
	body, err := c.shared.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("cms: read shared cache", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return body, true
}

var errNotConfigured = errors.New("cms: base url not configured")

func (c *Client) get(ctx context.Context, kind string, query url.Values) ([]byte, error) {
	if c.baseURL == "" {
		return nil, errNotConfigured
	}
	endpoint, err := url.JoinPath(c.baseURL, "api", kind)
	if err != nil {
		return nil, fmt.Errorf("cms: join path %s: %w", kind, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("cms: build request: %w", err)
	}
	req.URL.RawQuery = query.Encode()
	req.Header.Set("Accept", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		switch {
		case err == nil:
			req.Header.Set("Authorization", "Bearer "+token)
		case c.requireAuth:
			return nil, fmt.Errorf("cms: acquire token: %w", err)
		}
	} else if c.requireAuth {
		return nil, ErrNoToken
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cms: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("cms: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("cms: read body: %w", err)
	}
	return body, nil
}

func sanitizeSegment(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}
