// Package app wires configuration into the content services shared by the server and the CLI.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/puzzo-dev/sitefront/internal/catalog"
	"github.com/puzzo-dev/sitefront/internal/cms"
	"github.com/puzzo-dev/sitefront/internal/config"
	"github.com/puzzo-dev/sitefront/internal/content"
	"github.com/puzzo-dev/sitefront/internal/derived"
	"github.com/puzzo-dev/sitefront/internal/forms"
	"github.com/puzzo-dev/sitefront/internal/i18n"
	"github.com/puzzo-dev/sitefront/internal/lang"
	"github.com/puzzo-dev/sitefront/internal/nav"
	"github.com/puzzo-dev/sitefront/internal/observability"
	"github.com/puzzo-dev/sitefront/internal/page"
)

const redisPingTimeout = 5 * time.Second

// App holds the long-lived content services.
type App struct {
	Config   config.Config
	Catalog  *catalog.Catalog
	Derived  *derived.Set
	CMS      *cms.Client
	Composer *page.Composer
	Nav      *nav.Resolver
	Bundle   *i18n.Bundle
	Forms    *forms.Submitter

	redis  *redis.Client
	logger *zap.Logger
}

// New builds the services. Redis is optional: an unreachable server is logged and skipped.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	logger = observability.OrNop(logger)
	cat, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("app: load catalog: %w", err)
	}
	bundle, err := i18n.LoadEmbedded(cfg.I18n.DefaultLanguage, lang.Supported)
	if err != nil {
		return nil, fmt.Errorf("app: load locales: %w", err)
	}

	a := &App{Config: cfg, Catalog: cat, Bundle: bundle, logger: logger}

	var shared cms.SharedCache
	if addr := strings.TrimSpace(cfg.Redis.Addr); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr, DialTimeout: redisPingTimeout})
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn("redis unavailable; shared content cache disabled", zap.String("addr", addr), zap.Error(err))
			_ = rdb.Close()
		} else {
			a.redis = rdb
			shared = cms.NewRedisCache(rdb, cfg.Redis.Prefix)
		}
	}

	a.CMS = cms.NewFromConfig(cfg.CMS, shared, logger.Named("cms"))
	if !a.CMS.Configured() {
		logger.Info("cms base url not set; serving static catalogs only")
	}
	a.Derived = derived.Extract(cat)
	a.Composer = page.NewComposer(cat, a.Derived, a.CMS, logger.Named("page"))
	a.Nav = nav.NewResolver(a.CMS, cat.Navigation, bundle.TOr)
	a.Forms = forms.NewSubmitter(forms.Options{
		Credentials: erpFromConfig(cfg.ERP),
		Lookup:      a.erpFromSite,
		Logger:      logger.Named("forms"),
	})
	return a, nil
}

// erpFromSite reads ERP credentials from the CMS site config, when the CMS supplies them.
func (a *App) erpFromSite(ctx context.Context) *content.ERPCredentials {
	if site := a.CMS.FetchConfig(ctx); site != nil {
		return site.ERP
	}
	return nil
}

func erpFromConfig(cfg config.ERPConfig) *content.ERPCredentials {
	if cfg.BaseURL == "" {
		return nil
	}
	return &content.ERPCredentials{BaseURL: cfg.BaseURL, APIKey: cfg.APIKey, APISecret: cfg.APISecret}
}

// Close releases the Redis connection, if any.
func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
