// Package telemetry exposes Prometheus metrics for the propagation
// worker and catalog cache, generalizing the atomic-counter pattern the
// codebase already uses for rate-limiter metrics into registered
// Prometheus collectors.
package telemetry
