// Package server runs the gateway's HTTP front end.
//
// The router is chi. Every request passes through the middleware chain of
// pkg/api/middleware (request ID, recovery, logging, CORS, tracing,
// timeout, metrics) before reaching the API handlers or the operational
// endpoints:
//
//	/api/...     shipping form API (pkg/api/handlers)
//	/health      liveness
//	/ready       readiness from the last dependency probe
//	/version     build information
//	/metrics     Prometheus exposition, when metrics are enabled
//
// Start blocks until its context is cancelled and then drains in-flight
// requests for up to server.shutdown_timeout:
//
//	ctx := cli.SetupSignalHandler()
//	srv := server.NewServer(&cfg.Server, api,
//	    server.WithHealth(checker),
//	    server.WithMetrics(collector, cfg.Telemetry.Metrics.Path))
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
package server
