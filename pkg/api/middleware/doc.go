// Package middleware provides the HTTP middleware chain of the gateway.
//
// The server applies, outermost first:
//
//	RequestIDMiddleware   X-Request-ID in, context and response header
//	RecoveryMiddleware    panics become 500 responses
//	LoggingMiddleware     one structured line per request
//	CORSMiddleware        headers and preflight for the browser form
//	TimeoutMiddleware     request context deadline
//	MetricsMiddleware     duration and status per route pattern
//
// Every middleware has the func(http.Handler) http.Handler shape, so they
// plug into chi's Use as well as plain net/http.
package middleware
