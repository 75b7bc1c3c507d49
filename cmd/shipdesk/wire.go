package main

import (
	"context"
	"fmt"
	"log/slog"

	"shipdesk-hq/gateway/pkg/auth"
	"shipdesk-hq/gateway/pkg/config"
	"shipdesk-hq/gateway/pkg/delivery"
	"shipdesk-hq/gateway/pkg/gateway"
	"shipdesk-hq/gateway/pkg/liststore"
	"shipdesk-hq/gateway/pkg/render"
	"shipdesk-hq/gateway/pkg/telemetry/metrics"
	"shipdesk-hq/gateway/pkg/telemetry/tracing"
)

// components are the collaborators built from one configuration snapshot.
type components struct {
	tokens  *auth.Provider
	store   *liststore.Client
	gateway *gateway.Gateway
}

// checkIdentity and checkListStore are the readiness checks.
func (c *components) checkIdentity(ctx context.Context) error {
	return c.tokens.Check(ctx)
}

func (c *components) checkListStore(ctx context.Context) error {
	return c.store.Check(ctx, c.tokens)
}

// builder creates components and keeps the token cache across rebuilds.
type builder struct {
	cache   *auth.Cache
	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
}

func newBuilder(cfg *config.Config, logger *slog.Logger, m *metrics.Collector, t *tracing.Tracer) *builder {
	b := &builder{logger: logger, metrics: m, tracer: t}
	if cfg.Identity.Cache.Enabled {
		b.cache = auth.NewCache(cfg.Identity.Cache.ExpirySkew, auth.WithCacheMetrics(m))
	}
	return b
}

func (b *builder) build(cfg *config.Config) (*components, error) {
	providerOpts := []auth.Option{
		auth.WithLogger(b.logger),
		auth.WithMetrics(b.metrics),
		auth.WithTracer(b.tracer),
	}
	if b.cache != nil {
		b.cache.SetSkew(cfg.Identity.Cache.ExpirySkew)
		providerOpts = append(providerOpts, auth.WithCache(b.cache))
	}
	tokens := auth.NewProvider(&cfg.Identity, providerOpts...)

	store, err := liststore.NewClient(&cfg.ListStore,
		liststore.WithInvalidator(tokens),
		liststore.WithLogger(b.logger),
		liststore.WithMetrics(b.metrics),
		liststore.WithTracer(b.tracer),
	)
	if err != nil {
		return nil, fmt.Errorf("create list store client: %w", err)
	}

	renderer := render.New(render.NewChromeRasterizer(&cfg.Render, b.logger),
		render.WithLogger(b.logger),
		render.WithMetrics(b.metrics),
		render.WithTracer(b.tracer),
	)

	dispatcher := delivery.NewDispatcher(&cfg.Mail, delivery.NewSMTPSender(&cfg.Mail),
		delivery.WithLogger(b.logger),
		delivery.WithMetrics(b.metrics),
		delivery.WithTracer(b.tracer),
	)

	gw := gateway.New(tokens, store, renderer, dispatcher, gateway.SettingsFromConfig(cfg),
		gateway.WithLogger(b.logger),
		gateway.WithMetrics(b.metrics),
		gateway.WithTracer(b.tracer),
	)

	return &components{tokens: tokens, store: store, gateway: gw}, nil
}
