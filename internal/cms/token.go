package cms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/puzzo-dev/sitefront/internal/config"
)

// ErrNoToken reports that no CMS credential could be obtained.
var ErrNoToken = errors.New("cms: no token available")

const defaultSessionCookieName = "session"

// TokenSource yields the bearer token attached to CMS requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a credential read straight from local configuration.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token(context.Context) (string, error) {
	if strings.TrimSpace(string(t)) == "" {
		return "", ErrNoToken
	}
	return strings.TrimSpace(string(t)), nil
}

// EndpointTokenSource exchanges a session cookie for a bearer token at a secure endpoint that
// answers {"token": "..."}.
type EndpointTokenSource struct {
	endpoint string
	cookie   *http.Cookie
	http     *resty.Client
}

// NewEndpointTokenSource builds a token source for endpoint. session is either "name=value" or a
// bare value sent under the "session" cookie.
func NewEndpointTokenSource(endpoint, session string, timeout time.Duration) *EndpointTokenSource {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	src := &EndpointTokenSource{
		endpoint: strings.TrimSpace(endpoint),
		http:     resty.New().SetTimeout(timeout).SetHeader("Accept", "application/json"),
	}
	if session = strings.TrimSpace(session); session != "" {
		name, value, ok := strings.Cut(session, "=")
		if !ok {
			name, value = defaultSessionCookieName, session
		}
		src.cookie = &http.Cookie{Name: name, Value: value}
	}
	return src
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Token implements TokenSource.
func (s *EndpointTokenSource) Token(ctx context.Context) (string, error) {
	if s == nil || s.endpoint == "" {
		return "", ErrNoToken
	}
	var out tokenResponse
	req := s.http.R().SetContext(ctx).SetResult(&out)
	if s.cookie != nil {
		req.SetCookie(s.cookie)
	}
	resp, err := req.Get(s.endpoint)
	if err != nil {
		return "", fmt.Errorf("cms: token request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("cms: token endpoint status %d: %w", resp.StatusCode(), ErrNoToken)
	}
	if strings.TrimSpace(out.Token) == "" {
		return "", ErrNoToken
	}
	return out.Token, nil
}

// TokenSourceFromConfig picks the token strategy for the configured mode.
func TokenSourceFromConfig(cfg config.CMSConfig) TokenSource {
	if cfg.Mode == config.CMSModeDeployed && cfg.TokenEndpoint != "" {
		return NewEndpointTokenSource(cfg.TokenEndpoint, cfg.SessionCookie, cfg.Timeout)
	}
	return StaticToken(cfg.APIToken)
}
