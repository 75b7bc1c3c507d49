// Package logging provides structured logging with secret redaction.
//
// # Overview
//
// The logging package builds a log/slog logger that:
//   - Writes JSON or text records
//   - Adds request_id, pipeline and item_id from the context
//   - Masks bearer tokens, client secrets, passwords and mailbox addresses
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:         "info",
//	    Format:        "json",
//	    RedactSecrets: true,
//	})
//	slog.SetDefault(logger)
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	slog.InfoContext(ctx, "item resolved", "list", "Bookings")
//
// # Redaction
//
//   - Authorization: Bearer eyJ0... → Bearer ***
//   - client_secret=abc → client_secret=***
//   - desk@example.com → d***@example.com
//   - attributes whose key contains "secret", "token" or "password" are masked
package logging
