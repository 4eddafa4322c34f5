package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/puzzo-dev/sitefront/internal/config"
)

func TestNewWithoutCMS(t *testing.T) {
	cfg, err := config.Load(config.WithoutSystemEnv(), config.WithEnvFile(""), config.WithEnvMap(map[string]string{
		"SITE_ERP_BASE_URL":   "https://erp.example.com",
		"SITE_ERP_API_KEY":    "k",
		"SITE_ERP_API_SECRET": "s",
	}))
	require.NoError(t, err)

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })

	require.False(t, a.CMS.Configured())
	require.Equal(t, "Puzzo Digital", a.Composer.SiteConfig(context.Background()).SiteName)
	require.Nil(t, a.erpFromSite(context.Background()))
	require.Equal(t, "https://erp.example.com", erpFromConfig(cfg.ERP).BaseURL)
	require.NotEmpty(t, a.Nav.Resolve(context.Background(), "fr", "/"))
}

func TestNewSkipsUnreachableRedis(t *testing.T) {
	cfg, err := config.Load(config.WithoutSystemEnv(), config.WithEnvFile(""), config.WithEnvMap(map[string]string{
		"SITE_REDIS_ADDR": "127.0.0.1:1",
	}))
	require.NoError(t, err)

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Nil(t, a.redis)
}
