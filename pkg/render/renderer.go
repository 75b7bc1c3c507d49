package render

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"shipdesk-hq/gateway/pkg/shipping"
	"shipdesk-hq/gateway/pkg/telemetry/metrics"
	"shipdesk-hq/gateway/pkg/telemetry/tracing"
)

// Document is a rendered shipping instruction.
type Document struct {
	// HTML is the filled template, also used as the email body.
	HTML string

	// PDF is the rasterized document.
	PDF []byte
}

// Renderer produces documents from submissions.
type Renderer struct {
	rasterizer Rasterizer
	logger     *slog.Logger
	metrics    *metrics.Collector
	tracer     *tracing.Tracer
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) { r.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(r *Renderer) { r.metrics = m }
}

// WithTracer sets the tracer.
func WithTracer(t *tracing.Tracer) Option {
	return func(r *Renderer) { r.tracer = t }
}

// New creates a renderer printing through rasterizer.
func New(rasterizer Rasterizer, opts ...Option) *Renderer {
	r := &Renderer{rasterizer: rasterizer, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render fills the template and rasterizes it.
func (r *Renderer) Render(ctx context.Context, sub *shipping.Submission) (doc *Document, err error) {
	ctx, span := r.tracer.Start(ctx, "render.document")
	defer tracing.End(span, &err)

	start := time.Now()
	defer func() {
		outcome, size := "success", 0
		if err != nil {
			outcome = "error"
		} else {
			size = len(doc.PDF)
		}
		r.metrics.RecordRender(outcome, time.Since(start), size)
	}()

	html, err := HTML(sub)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrContainers, len(sub.Containers)))

	pdf, err := r.rasterizer.Rasterize(ctx, html)
	if err != nil {
		var re *RenderError
		if !errors.As(err, &re) {
			err = &RenderError{Stage: "print", Err: err}
		}
		return nil, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrPDFBytes, len(pdf)))

	r.logger.DebugContext(ctx, "document rendered",
		"containers", len(sub.Containers),
		"pdf_bytes", len(pdf),
		"duration", time.Since(start),
	)
	return &Document{HTML: html, PDF: pdf}, nil
}
