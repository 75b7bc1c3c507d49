// Package tracing provides OpenTelemetry tracing for the Shipdesk gateway.
//
// Spans are exported over OTLP gRPC when telemetry.tracing.enabled is set;
// otherwise every call goes to a noop tracer. Trace context travels in the
// W3C traceparent and tracestate headers: the gateway extracts it from
// inbound form requests and injects it into the calls it makes to the
// identity service and the list store.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "liststore.resolve_list")
//	defer tracing.End(span, &err)
//
// # Sampling
//
// Root spans are sampled by telemetry.tracing.sample_ratio; child spans
// follow their parent's decision.
package tracing
