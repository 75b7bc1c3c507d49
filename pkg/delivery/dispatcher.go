package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
	"go.opentelemetry.io/otel/attribute"

	"shipdesk-hq/gateway/pkg/config"
	"shipdesk-hq/gateway/pkg/render"
	"shipdesk-hq/gateway/pkg/shipping"
	"shipdesk-hq/gateway/pkg/telemetry/logging"
	"shipdesk-hq/gateway/pkg/telemetry/metrics"
	"shipdesk-hq/gateway/pkg/telemetry/tracing"
)

// AttachmentName is the file name of the attached document.
const AttachmentName = "shipping-instruction.pdf"

// ErrNoRecipient is returned when neither the submission nor the
// configuration provides a recipient.
var ErrNoRecipient = errors.New("no recipient: submission has no user email and no fallback recipient is configured")

// DeliveryError reports a failed delivery.
type DeliveryError struct {
	Err error
}

// Error implements the error interface.
func (e *DeliveryError) Error() string {
	return fmt.Sprintf("email delivery failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Recipient returns the submitter's email when present and fallback
// otherwise.
func Recipient(sub *shipping.Submission, fallback string) string {
	if email := sub.UserEmail(); email != "" {
		return email
	}
	return strings.TrimSpace(fallback)
}

// Dispatcher composes shipping-instruction emails and hands them to a
// Sender.
type Dispatcher struct {
	sender   Sender
	from     string
	fromName string
	subject  string

	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithTracer sets the tracer.
func WithTracer(t *tracing.Tracer) Option {
	return func(d *Dispatcher) { d.tracer = t }
}

// NewDispatcher creates a dispatcher sending as cfg.Username.
func NewDispatcher(cfg *config.MailConfig, sender Sender, opts ...Option) *Dispatcher {
	fromName := cfg.FromName
	if fromName == "" {
		fromName = config.DefaultMailFromName
	}
	subject := cfg.Subject
	if subject == "" {
		subject = config.DefaultMailSubject
	}

	d := &Dispatcher{
		sender:   sender,
		from:     cfg.Username,
		fromName: fromName,
		subject:  subject,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("component", "delivery")
	return d
}

// Compose builds the message: HTML body plus the PDF as the single
// attachment.
func (d *Dispatcher) Compose(recipient, htmlBody string, pdf []byte) (*mail.Msg, error) {
	if recipient == "" {
		return nil, ErrNoRecipient
	}

	m := mail.NewMsg()
	if err := m.FromFormat(d.fromName, d.from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", d.from, err)
	}
	if err := m.To(recipient); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	m.Subject(d.subject)
	m.SetDate()
	m.SetMessageIDWithValue(uuid.NewString() + "@" + domainOf(d.from))
	m.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := m.AttachReader(AttachmentName, bytes.NewReader(pdf),
		mail.WithFileContentType("application/pdf"),
	); err != nil {
		return nil, fmt.Errorf("attach document: %w", err)
	}
	return m, nil
}

// Deliver sends doc to recipient. The HTML body is sent as the message
// body. Failures are returned as *DeliveryError; nothing is retried.
func (d *Dispatcher) Deliver(ctx context.Context, recipient, htmlBody string, doc *render.Document) (err error) {
	ctx, span := d.tracer.Start(ctx, "delivery.send")
	defer tracing.End(span, &err)

	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		d.metrics.RecordDelivery(outcome)
	}()

	m, err := d.Compose(recipient, htmlBody, doc.PDF)
	if err != nil {
		return &DeliveryError{Err: err}
	}

	start := time.Now()
	if err := d.sender.Send(ctx, m); err != nil {
		d.metrics.RecordUpstreamCall("smtp", "send", "error", time.Since(start))
		d.metrics.RecordUpstreamError("smtp", "send")
		d.logger.ErrorContext(ctx, "email delivery failed",
			"recipient", logging.RedactEmail(recipient),
			"error", err,
		)
		return &DeliveryError{Err: err}
	}
	d.metrics.RecordUpstreamCall("smtp", "send", "success", time.Since(start))
	span.SetAttributes(attribute.Int(tracing.AttrPDFBytes, len(doc.PDF)))

	d.logger.InfoContext(ctx, "email delivered",
		"recipient", logging.RedactEmail(recipient),
		"pdf_bytes", len(doc.PDF),
		"duration", time.Since(start),
	)
	return nil
}

// domainOf returns the domain of an address, or "localhost".
func domainOf(addr string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return "localhost"
}
