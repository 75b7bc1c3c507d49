package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"shipdesk-hq/gateway/pkg/config"
	"shipdesk-hq/gateway/pkg/telemetry/metrics"
	"shipdesk-hq/gateway/pkg/telemetry/tracing"
)

// Source provides bearer tokens for the list store.
type Source interface {
	Token(ctx context.Context) (Token, error)
}

// Invalidator is implemented by sources that can forget a token the list
// store rejected.
type Invalidator interface {
	Invalidate(tok Token)
}

// TokenURL returns the client-credentials token endpoint of a tenant.
func TokenURL(authority, tenant string) string {
	return strings.TrimRight(authority, "/") + "/" + tenant + "/oauth2/v2.0/token"
}

// Provider obtains tokens with the OAuth2 client-credentials grant.
//
// When constructed with a Cache, tokens are reused until they come within
// the cache's skew of expiry. Without one, every call performs a fresh
// exchange.
type Provider struct {
	tenant     string
	oauth      clientcredentials.Config
	httpClient *http.Client
	cache      *Cache

	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
}

// Option configures a Provider.
type Option func(*Provider)

// WithCache enables token reuse through c.
func WithCache(c *Cache) Option {
	return func(p *Provider) { p.cache = c }
}

// WithHTTPClient overrides the HTTP client used for the token request.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) { p.httpClient = client }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(p *Provider) { p.metrics = m }
}

// WithTracer sets the tracer.
func WithTracer(t *tracing.Tracer) Option {
	return func(p *Provider) { p.tracer = t }
}

// NewProvider creates a provider for the identity settings in cfg.
func NewProvider(cfg *config.IdentityConfig, opts ...Option) *Provider {
	scope := cfg.Scope
	if scope == "" {
		scope = config.DefaultScope
	}
	authority := cfg.AuthorityURL
	if authority == "" {
		authority = config.DefaultAuthorityURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = config.DefaultIdentityTimeout
	}

	p := &Provider{
		tenant: cfg.TenantID,
		oauth: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     TokenURL(authority, cfg.TenantID),
			Scopes:       []string{scope},
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "auth")
	return p
}

// Key returns the cache key of the provider's credentials.
func (p *Provider) Key() Key {
	return Key{Tenant: p.tenant, ClientID: p.oauth.ClientID, Scope: p.oauth.Scopes[0]}
}

// Token returns a bearer token, from the cache when one is configured.
func (p *Provider) Token(ctx context.Context) (tok Token, err error) {
	ctx, span := p.tracer.Start(ctx, "auth.token")
	defer tracing.End(span, &err)

	if p.cache == nil {
		return p.exchange(ctx)
	}

	tok, hit, err := p.cache.Get(ctx, p.Key(), p.exchange)
	tracing.SetCacheAttributes(span, hit)
	return tok, err
}

// Invalidate drops tok from the cache so the next call performs a fresh
// exchange.
func (p *Provider) Invalidate(tok Token) {
	if p.cache == nil {
		return
	}
	if p.cache.Invalidate(p.Key(), tok.AccessToken) {
		p.logger.Info("cached token invalidated", "tenant", p.tenant)
	}
}

// Check verifies that the credentials are accepted. It is registered as a
// readiness check.
func (p *Provider) Check(ctx context.Context) error {
	_, err := p.Token(ctx)
	return err
}

// exchange performs the client-credentials grant.
func (p *Provider) exchange(ctx context.Context) (Token, error) {
	ctx, span := p.tracer.Start(ctx, "auth.exchange")
	defer span.End()
	span.SetAttributes(attribute.String("auth.tenant", p.tenant))

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	start := time.Now()
	ot, err := p.oauth.Token(ctx)
	elapsed := time.Since(start)

	if err != nil {
		ae := newAuthError(p.tenant, err)
		errType := "transport"
		if ae.StatusCode > 0 {
			errType = fmt.Sprintf("http_%d", ae.StatusCode)
		}
		p.metrics.RecordUpstreamCall("identity", "token", "error", elapsed)
		p.metrics.RecordUpstreamError("identity", errType)
		tracing.SetError(span, ae)
		tracing.SetStatus(span, ae)
		p.logger.Warn("token request failed",
			"tenant", p.tenant,
			"status", ae.StatusCode,
			"code", ae.Code,
			"duration", elapsed,
		)
		return Token{}, ae
	}

	p.metrics.RecordUpstreamCall("identity", "token", "success", elapsed)
	tok := Token{AccessToken: ot.AccessToken, Expiry: ot.Expiry}
	p.logger.Debug("token acquired", "tenant", p.tenant, "token", tok, "duration", elapsed)
	return tok, nil
}
