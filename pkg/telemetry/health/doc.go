// Package health provides liveness and readiness checks for the gateway.
//
// Liveness (/health) reports that the process is serving. Readiness
// (/ready) runs the registered component checks, typically acquiring an
// access token and resolving the configured site, and answers 503 when any
// of them fails. A Prober refreshes the readiness result on a cron schedule.
package health
