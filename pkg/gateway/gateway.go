package gateway

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"shipdesk-hq/gateway/pkg/auth"
	"shipdesk-hq/gateway/pkg/config"
	"shipdesk-hq/gateway/pkg/delivery"
	"shipdesk-hq/gateway/pkg/liststore"
	"shipdesk-hq/gateway/pkg/render"
	"shipdesk-hq/gateway/pkg/shipping"
	"shipdesk-hq/gateway/pkg/telemetry/logging"
	"shipdesk-hq/gateway/pkg/telemetry/metrics"
	"shipdesk-hq/gateway/pkg/telemetry/tracing"
)

// Pipeline names.
const (
	PipelineFetchItem    = "item"
	PipelineListLists    = "lists"
	PipelineFetchRelated = "related"
	PipelineSubmit       = "submit"
)

// Store is the subset of the list store client the pipelines use.
type Store interface {
	ResolveSite(ctx context.Context, token auth.Token) (string, error)
	ListLists(ctx context.Context, token auth.Token, siteID string) ([]liststore.List, error)
	ResolveList(ctx context.Context, token auth.Token, siteID, name string) (string, error)
	GetItem(ctx context.Context, token auth.Token, siteID, listID, itemID string) (*liststore.Item, error)
	QueryItems(ctx context.Context, token auth.Token, siteID, listID, field, value string) ([]liststore.Item, error)
}

// Renderer produces the shipping-instruction document.
type Renderer interface {
	Render(ctx context.Context, sub *shipping.Submission) (*render.Document, error)
}

// Deliverer emails a rendered document.
type Deliverer interface {
	Deliver(ctx context.Context, recipient, htmlBody string, doc *render.Document) error
}

// Pipelines is implemented by Gateway and Holder.
type Pipelines interface {
	FetchItem(ctx context.Context, itemID string) (*liststore.Item, error)
	ListLists(ctx context.Context) ([]ListSummary, error)
	FetchRelated(ctx context.Context, itemID string) ([]liststore.Item, error)
	Submit(ctx context.Context, sub *shipping.Submission) error
}

// ListSummary is the projection of a list returned by ListLists.
type ListSummary struct {
	DisplayName string `json:"displayName"`
	ID          string `json:"id"`
}

// Settings are the per-deployment values the pipelines read.
type Settings struct {
	PrimaryList       string
	SecondaryList     string
	RelationField     string
	ForeignKeyField   string
	ParallelResolve   bool
	FallbackRecipient string
}

// SettingsFromConfig extracts the pipeline settings from cfg.
func SettingsFromConfig(cfg *config.Config) Settings {
	s := Settings{
		PrimaryList:       cfg.ListStore.PrimaryList,
		SecondaryList:     cfg.ListStore.SecondaryList,
		RelationField:     cfg.ListStore.RelationField,
		ForeignKeyField:   cfg.ListStore.ForeignKeyField,
		ParallelResolve:   cfg.ListStore.ParallelResolve,
		FallbackRecipient: cfg.Mail.FallbackRecipient,
	}
	if s.RelationField == "" {
		s.RelationField = config.DefaultRelationField
	}
	if s.ForeignKeyField == "" {
		s.ForeignKeyField = config.DefaultForeignKeyField
	}
	return s
}

// Gateway composes the token source, list store, renderer and deliverer
// into the read and submit pipelines. Each call runs its pipeline end to
// end and aborts on the first failing step.
type Gateway struct {
	tokens    auth.Source
	store     Store
	renderer  Renderer
	deliverer Deliverer
	settings  Settings

	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) { g.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(g *Gateway) { g.metrics = m }
}

// WithTracer sets the tracer.
func WithTracer(t *tracing.Tracer) Option {
	return func(g *Gateway) { g.tracer = t }
}

// New creates a gateway.
func New(tokens auth.Source, store Store, renderer Renderer, deliverer Deliverer, settings Settings, opts ...Option) *Gateway {
	g := &Gateway{
		tokens:    tokens,
		store:     store,
		renderer:  renderer,
		deliverer: deliverer,
		settings:  settings,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "gateway")
	return g
}

// Settings returns the gateway's settings.
func (g *Gateway) Settings() Settings {
	return g.settings
}

// FetchItem returns an item of the primary list.
func (g *Gateway) FetchItem(ctx context.Context, itemID string) (item *liststore.Item, err error) {
	ctx = logging.WithItemID(ctx, itemID)
	err = g.run(ctx, PipelineFetchItem, func(ctx context.Context) error {
		tok, siteID, err := g.resolveSite(ctx, PipelineFetchItem)
		if err != nil {
			return err
		}

		listID, err := g.store.ResolveList(ctx, tok, siteID, g.settings.PrimaryList)
		if err != nil {
			return stageErr(PipelineFetchItem, "resolve_list", err)
		}

		item, err = g.store.GetItem(ctx, tok, siteID, listID, itemID)
		return stageErr(PipelineFetchItem, "get_item", err)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListLists returns every list of the site as {displayName, id}, in the
// order the list store returns them.
func (g *Gateway) ListLists(ctx context.Context) (out []ListSummary, err error) {
	err = g.run(ctx, PipelineListLists, func(ctx context.Context) error {
		tok, siteID, err := g.resolveSite(ctx, PipelineListLists)
		if err != nil {
			return err
		}

		lists, err := g.store.ListLists(ctx, tok, siteID)
		if err != nil {
			return stageErr(PipelineListLists, "list_lists", err)
		}

		out = make([]ListSummary, len(lists))
		for i, l := range lists {
			out[i] = ListSummary{DisplayName: l.DisplayName, ID: l.ID}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FetchRelated reads the relation field of a primary list item and returns
// the secondary list items whose foreign-key field equals it.
func (g *Gateway) FetchRelated(ctx context.Context, itemID string) (items []liststore.Item, err error) {
	ctx = logging.WithItemID(ctx, itemID)
	err = g.run(ctx, PipelineFetchRelated, func(ctx context.Context) error {
		tok, siteID, err := g.resolveSite(ctx, PipelineFetchRelated)
		if err != nil {
			return err
		}

		primaryID, secondaryID, err := g.resolveListPair(ctx, tok, siteID)
		if err != nil {
			return stageErr(PipelineFetchRelated, "resolve_list", err)
		}

		item, err := g.store.GetItem(ctx, tok, siteID, primaryID, itemID)
		if err != nil {
			return stageErr(PipelineFetchRelated, "get_item", err)
		}

		value, ok := item.Field(g.settings.RelationField)
		if !ok {
			return stageErr(PipelineFetchRelated, "extract_field",
				&MissingFieldError{ItemID: itemID, Field: g.settings.RelationField})
		}

		items, err = g.store.QueryItems(ctx, tok, siteID, secondaryID, g.settings.ForeignKeyField, value)
		return stageErr(PipelineFetchRelated, "query_items", err)
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Submit renders the submission and emails it to the submitter, or to the
// fallback recipient when the submission carries no user email.
func (g *Gateway) Submit(ctx context.Context, sub *shipping.Submission) error {
	return g.run(ctx, PipelineSubmit, func(ctx context.Context) error {
		doc, err := g.renderer.Render(ctx, sub)
		if err != nil {
			return stageErr(PipelineSubmit, "render", err)
		}

		recipient := delivery.Recipient(sub, g.settings.FallbackRecipient)
		tracing.SpanFromContext(ctx).SetAttributes(
			attribute.Bool(tracing.AttrRecipientFallback, sub.UserEmail() == ""),
		)

		err = g.deliverer.Deliver(ctx, recipient, doc.HTML, doc)
		return stageErr(PipelineSubmit, "deliver", err)
	})
}

// resolveSite acquires a token and resolves the configured site.
func (g *Gateway) resolveSite(ctx context.Context, pipeline string) (auth.Token, string, error) {
	tok, err := g.tokens.Token(ctx)
	if err != nil {
		return auth.Token{}, "", stageErr(pipeline, "token", err)
	}
	siteID, err := g.store.ResolveSite(ctx, tok)
	if err != nil {
		return auth.Token{}, "", stageErr(pipeline, "resolve_site", err)
	}
	return tok, siteID, nil
}

// resolveListPair resolves the primary and secondary lists, concurrently
// when ParallelResolve is set. The first error cancels the other lookup.
func (g *Gateway) resolveListPair(ctx context.Context, tok auth.Token, siteID string) (string, string, error) {
	var primaryID, secondaryID string

	if !g.settings.ParallelResolve {
		var err error
		if primaryID, err = g.store.ResolveList(ctx, tok, siteID, g.settings.PrimaryList); err != nil {
			return "", "", err
		}
		if secondaryID, err = g.store.ResolveList(ctx, tok, siteID, g.settings.SecondaryList); err != nil {
			return "", "", err
		}
		return primaryID, secondaryID, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		id, err := g.store.ResolveList(egCtx, tok, siteID, g.settings.PrimaryList)
		primaryID = id
		return err
	})
	eg.Go(func() error {
		id, err := g.store.ResolveList(egCtx, tok, siteID, g.settings.SecondaryList)
		secondaryID = id
		return err
	})
	if err := eg.Wait(); err != nil {
		return "", "", err
	}
	return primaryID, secondaryID, nil
}

// run executes one pipeline inside a span and records its outcome.
func (g *Gateway) run(ctx context.Context, pipeline string, fn func(ctx context.Context) error) (err error) {
	ctx = logging.WithPipeline(ctx, pipeline)
	ctx, span := g.tracer.Start(ctx, "pipeline."+pipeline)
	defer tracing.End(span, &err)
	span.SetAttributes(attribute.String(tracing.AttrPipeline, pipeline))

	start := time.Now()
	err = fn(ctx)
	elapsed := time.Since(start)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	g.metrics.RecordPipeline(pipeline, outcome, elapsed)
	g.logger.DebugContext(ctx, "pipeline finished", "outcome", outcome, "duration", elapsed)
	return err
}

// Holder holds the current Gateway and lets a configuration reload swap
// it without interrupting requests already running on the old one.
type Holder struct {
	current atomic.Pointer[Gateway]
}

// NewHolder creates a holder serving g.
func NewHolder(g *Gateway) *Holder {
	h := &Holder{}
	h.current.Store(g)
	return h
}

// Swap replaces the gateway used by subsequent calls.
func (h *Holder) Swap(g *Gateway) {
	h.current.Store(g)
}

// Current returns the gateway in use.
func (h *Holder) Current() *Gateway {
	return h.current.Load()
}

// FetchItem implements Pipelines.
func (h *Holder) FetchItem(ctx context.Context, itemID string) (*liststore.Item, error) {
	return h.Current().FetchItem(ctx, itemID)
}

// ListLists implements Pipelines.
func (h *Holder) ListLists(ctx context.Context) ([]ListSummary, error) {
	return h.Current().ListLists(ctx)
}

// FetchRelated implements Pipelines.
func (h *Holder) FetchRelated(ctx context.Context, itemID string) ([]liststore.Item, error) {
	return h.Current().FetchRelated(ctx, itemID)
}

// Submit implements Pipelines.
func (h *Holder) Submit(ctx context.Context, sub *shipping.Submission) error {
	return h.Current().Submit(ctx, sub)
}
