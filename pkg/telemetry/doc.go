// Package telemetry provides observability for the Shipdesk gateway.
//
// # Components
//
//   - logging: Structured logging with secret redaction
//   - metrics: Prometheus metrics collection
//   - tracing: OpenTelemetry distributed tracing
//   - health: Liveness, readiness and the scheduled readiness prober
//
// # Usage
//
//	tel, err := telemetry.New(&cfg.Telemetry, version)
//	if err != nil {
//		return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	slog.SetDefault(tel.Logger())
//	tel.Metrics().RecordPipeline("lists", "success", time.Since(start))
//
//	ctx, span := tel.Tracer().Start(ctx, "gateway.fetch_item")
//	defer span.End()
//
// # Secret Protection
//
// Access tokens, client secrets and SMTP passwords are masked in every log
// record:
//
//   - Bearer eyJ0eXAi... → Bearer ***
//   - client_secret=abc → client_secret=***
//   - desk@example.com → d***@example.com
package telemetry
