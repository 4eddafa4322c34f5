package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile       = ".env"
	defaultPort          = "8080"
	defaultReadTimeout   = 15 * time.Second
	defaultWriteTimeout  = 15 * time.Second
	defaultIdleTimeout   = 60 * time.Second
	defaultCacheDuration = 5 * time.Minute
	defaultCMSTimeout    = 5 * time.Second
	defaultRedisPrefix   = "sitefront:cms:"
	defaultLanguage      = "en"

	// CMSModeDevelopment reads the CMS credential straight from configuration.
	CMSModeDevelopment = "development"
	// CMSModeDeployed exchanges a session credential for a bearer token at the token endpoint.
	CMSModeDeployed = "deployed"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server ServerConfig
	CMS    CMSConfig
	Redis  RedisConfig
	Cookie CookieConfig
	I18n   I18nConfig
	ERP    ERPConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// CMSConfig points the remote content client at the headless CMS.
type CMSConfig struct {
	BaseURL       string
	Mode          string
	APIToken      string
	TokenEndpoint string
	SessionCookie string
	RequireAuth   bool
	CacheDuration time.Duration
	Timeout       time.Duration
}

// RedisConfig enables the optional shared content cache.
type RedisConfig struct {
	Addr   string
	Prefix string
}

// CookieConfig holds the keys used to sign preference cookies.
type CookieConfig struct {
	HashKey  string
	BlockKey string
	Secure   bool
}

// I18nConfig selects the default UI language.
type I18nConfig struct {
	DefaultLanguage string
}

// ERPConfig contains the form submission backend settings. Values from the CMS site config win
// over these when present.
type ERPConfig struct {
	BaseURL   string
	APIKey    string
	APISecret string
}

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration from defaults, .env overrides and environment variables.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "SITE_SERVER_PORT", stringWithDefault(lookup, "PORT", defaultPort)),
			ReadTimeout:  durationWithDefault(lookup, "SITE_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "SITE_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "SITE_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		CMS: CMSConfig{
			BaseURL:       strings.TrimRight(stringWithDefault(lookup, "SITE_CMS_BASE_URL", ""), "/"),
			Mode:          strings.ToLower(stringWithDefault(lookup, "SITE_CMS_MODE", CMSModeDevelopment)),
			APIToken:      stringWithDefault(lookup, "SITE_CMS_API_TOKEN", ""),
			TokenEndpoint: stringWithDefault(lookup, "SITE_CMS_TOKEN_ENDPOINT", ""),
			SessionCookie: stringWithDefault(lookup, "SITE_CMS_SESSION_COOKIE", ""),
			RequireAuth:   boolWithDefault(lookup, "SITE_CMS_REQUIRE_AUTH", false),
			CacheDuration: durationWithDefault(lookup, "SITE_CMS_CACHE_DURATION", defaultCacheDuration),
			Timeout:       durationWithDefault(lookup, "SITE_CMS_TIMEOUT", defaultCMSTimeout),
		},
		Redis: RedisConfig{
			Addr:   stringWithDefault(lookup, "SITE_REDIS_ADDR", ""),
			Prefix: stringWithDefault(lookup, "SITE_REDIS_PREFIX", defaultRedisPrefix),
		},
		Cookie: CookieConfig{
			HashKey:  stringWithDefault(lookup, "SITE_COOKIE_HASH_KEY", ""),
			BlockKey: stringWithDefault(lookup, "SITE_COOKIE_BLOCK_KEY", ""),
			Secure:   boolWithDefault(lookup, "SITE_COOKIE_SECURE", false),
		},
		I18n: I18nConfig{
			DefaultLanguage: strings.ToLower(stringWithDefault(lookup, "SITE_I18N_DEFAULT", defaultLanguage)),
		},
		ERP: ERPConfig{
			BaseURL:   strings.TrimRight(stringWithDefault(lookup, "SITE_ERP_BASE_URL", ""), "/"),
			APIKey:    stringWithDefault(lookup, "SITE_ERP_API_KEY", ""),
			APISecret: stringWithDefault(lookup, "SITE_ERP_API_SECRET", ""),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if cfg.CMS.CacheDuration <= 0 {
		missing = append(missing, "CMS.CacheDuration")
	}
	if cfg.CMS.Timeout <= 0 {
		missing = append(missing, "CMS.Timeout")
	}
	switch cfg.CMS.Mode {
	case CMSModeDevelopment:
	case CMSModeDeployed:
		if cfg.CMS.BaseURL != "" && cfg.CMS.TokenEndpoint == "" {
			missing = append(missing, "CMS.TokenEndpoint")
		}
	default:
		missing = append(missing, "CMS.Mode")
	}
	if cfg.Cookie.BlockKey != "" && !validBlockKeyLength(len(cfg.Cookie.BlockKey)) {
		missing = append(missing, "Cookie.BlockKey")
	}
	if (cfg.ERP.APIKey == "") != (cfg.ERP.APISecret == "") {
		missing = append(missing, "ERP.APISecret")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func validBlockKeyLength(n int) bool {
	return n == 16 || n == 24 || n == 32
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	values, err := godotenv.Read(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return parsed
		}
		switch strings.ToLower(value) {
		case "yes", "on":
			return true
		case "no", "off":
			return false
		}
	}
	return fallback
}
