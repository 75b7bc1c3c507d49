package delivery

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/wneessen/go-mail"

	"shipdesk-hq/gateway/pkg/config"
	"shipdesk-hq/gateway/pkg/render"
	"shipdesk-hq/gateway/pkg/shipping"
	"shipdesk-hq/gateway/pkg/telemetry/metrics"
)

// fakeSender captures messages instead of sending them.
type fakeSender struct {
	msgs []*mail.Msg
	err  error
}

func (f *fakeSender) Send(ctx context.Context, m *mail.Msg) error {
	f.msgs = append(f.msgs, m)
	return f.err
}

func mailConfig() *config.MailConfig {
	return &config.MailConfig{
		Host:              "smtp.example.test",
		Port:              587,
		Username:          "desk@shipdesk.test",
		Password:          "app-password",
		FallbackRecipient: "fallback@shipdesk.test",
	}
}

func testDocument() *render.Document {
	return &render.Document{HTML: "<h2>Shipping Instruction</h2>", PDF: []byte("%PDF-1.4 test")}
}

func rawMessage(t *testing.T, m *mail.Msg) string {
	t.Helper()
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	return buf.String()
}

func TestRecipient(t *testing.T) {
	tests := []struct {
		name     string
		sub      *shipping.Submission
		fallback string
		want     string
	}{
		{
			name:     "user email",
			sub:      &shipping.Submission{User: &shipping.User{Email: shipping.Text("dana@example.test")}},
			fallback: "fallback@shipdesk.test",
			want:     "dana@example.test",
		},
		{
			name:     "no user",
			sub:      &shipping.Submission{BillingParty: &shipping.Party{Email: shipping.Text("ops@acme.test")}},
			fallback: "fallback@shipdesk.test",
			want:     "fallback@shipdesk.test",
		},
		{
			name:     "blank user email",
			sub:      &shipping.Submission{User: &shipping.User{Name: shipping.Text("Dana"), Email: shipping.Text("  ")}},
			fallback: "fallback@shipdesk.test",
			want:     "fallback@shipdesk.test",
		},
		{
			name: "neither",
			sub:  &shipping.Submission{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Recipient(tt.sub, tt.fallback); got != tt.want {
				t.Errorf("Recipient() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDispatcher_Deliver(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(mailConfig(), sender)
	doc := testDocument()

	if err := d.Deliver(context.Background(), "ops@acme.test", doc.HTML, doc); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if len(sender.msgs) != 1 {
		t.Fatalf("messages sent = %d, want 1", len(sender.msgs))
	}

	m := sender.msgs[0]
	to, err := m.GetRecipients()
	if err != nil {
		t.Fatalf("GetRecipients() error = %v", err)
	}
	if len(to) != 1 || to[0] != "ops@acme.test" {
		t.Errorf("recipients = %v, want [ops@acme.test]", to)
	}

	attachments := m.GetAttachments()
	if len(attachments) != 1 {
		t.Fatalf("attachments = %d, want 1", len(attachments))
	}
	if attachments[0].Name != AttachmentName {
		t.Errorf("attachment name = %q, want %q", attachments[0].Name, AttachmentName)
	}

	raw := rawMessage(t, m)
	for _, want := range []string{
		`From: "Shipping Desk" <desk@shipdesk.test>`,
		"Subject: New Shipping Instruction Submission",
		"Content-Type: text/html",
		"application/pdf",
		`filename="shipping-instruction.pdf"`,
		"@shipdesk.test>",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestDispatcher_CustomSenderSettings(t *testing.T) {
	cfg := mailConfig()
	cfg.FromName = "Ops Desk"
	cfg.Subject = "Shipping instruction"
	sender := &fakeSender{}

	doc := testDocument()
	if err := NewDispatcher(cfg, sender).Deliver(context.Background(), "ops@acme.test", doc.HTML, doc); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	raw := rawMessage(t, sender.msgs[0])
	if !strings.Contains(raw, `From: "Ops Desk" <desk@shipdesk.test>`) {
		t.Error("custom display name not used")
	}
	if !strings.Contains(raw, "Subject: Shipping instruction") {
		t.Error("custom subject not used")
	}
}

func TestDispatcher_Errors(t *testing.T) {
	smtpDown := errors.New("dial tcp: connection refused")

	tests := []struct {
		name      string
		recipient string
		sendErr   error
		wantIs    error
		wantSends int
	}{
		{"transport failure", "ops@acme.test", smtpDown, smtpDown, 1},
		{"no recipient", "", nil, ErrNoRecipient, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := prometheus.NewRegistry()
			collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "test", Subsystem: "delivery"}, registry)
			sender := &fakeSender{err: tt.sendErr}
			d := NewDispatcher(mailConfig(), sender, WithMetrics(collector))
			doc := testDocument()

			err := d.Deliver(context.Background(), tt.recipient, doc.HTML, doc)

			var de *DeliveryError
			if !errors.As(err, &de) {
				t.Fatalf("Deliver() error = %v, want *DeliveryError", err)
			}
			if !errors.Is(err, tt.wantIs) {
				t.Errorf("Deliver() error = %v, want to wrap %v", err, tt.wantIs)
			}
			if len(sender.msgs) != tt.wantSends {
				t.Errorf("send attempts = %d, want %d (no retry)", len(sender.msgs), tt.wantSends)
			}

			expected := `
# HELP test_delivery_deliveries_total Total number of email delivery attempts
# TYPE test_delivery_deliveries_total counter
test_delivery_deliveries_total{outcome="error"} 1
`
			if err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "test_delivery_deliveries_total"); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestSMTPSender_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	cfg := mailConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = port
	cfg.TLSPolicy = "none"
	cfg.Timeout = 2 * time.Second

	d := NewDispatcher(cfg, NewSMTPSender(cfg))
	doc := testDocument()
	err = d.Deliver(context.Background(), "ops@acme.test", doc.HTML, doc)

	var de *DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("Deliver() error = %v, want *DeliveryError", err)
	}
	if strings.Contains(err.Error(), cfg.Password) {
		t.Errorf("error leaks the SMTP password: %v", err)
	}
}

func TestTLSPolicy(t *testing.T) {
	tests := []struct {
		in   string
		want mail.TLSPolicy
	}{
		{"mandatory", mail.TLSMandatory},
		{"opportunistic", mail.TLSOpportunistic},
		{"none", mail.NoTLS},
		{"", mail.TLSMandatory},
	}

	for _, tt := range tests {
		if got := tlsPolicy(tt.in); got != tt.want {
			t.Errorf("tlsPolicy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
