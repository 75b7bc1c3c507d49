package delivery

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"shipdesk-hq/gateway/pkg/config"
)

// Sender transmits a composed message.
type Sender interface {
	Send(ctx context.Context, m *mail.Msg) error
}

// SMTPSender sends through an authenticated SMTP relay. A connection is
// opened for every message and closed after it is sent.
type SMTPSender struct {
	host string
	port int
	opts []mail.Option
}

// NewSMTPSender creates a sender for the relay in cfg.
func NewSMTPSender(cfg *config.MailConfig) *SMTPSender {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = config.DefaultMailTimeout
	}

	s := &SMTPSender{host: cfg.Host, port: cfg.Port}
	s.opts = []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(tlsPolicy(cfg.TLSPolicy)),
		mail.WithTimeout(timeout),
	}
	if cfg.Username != "" {
		s.opts = append(s.opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	return s
}

// Send dials the relay, sends m and closes the connection.
func (s *SMTPSender) Send(ctx context.Context, m *mail.Msg) error {
	client, err := mail.NewClient(s.host, s.opts...)
	if err != nil {
		return fmt.Errorf("create SMTP client for %s:%d: %w", s.host, s.port, err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send via %s:%d: %w", s.host, s.port, err)
	}
	return nil
}

func tlsPolicy(name string) mail.TLSPolicy {
	switch name {
	case "opportunistic":
		return mail.TLSOpportunistic
	case "none":
		return mail.NoTLS
	default:
		return mail.TLSMandatory
	}
}
