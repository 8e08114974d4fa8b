// Package server implements the HTTP server exposing deploy frequency.
//
// This package provides:
//   - Per-target deploy buckets as JSON (/deploys/{target}?days=N)
//   - Per-target bar charts as HTML (/chart/{target}?days=N)
//   - A health endpoint listing configured targets
//   - Structured logging of all HTTP requests
//
// The server integrates with other packages:
//   - internal/config: Target configuration and registry
//   - internal/deploys: CircleCI deploy resolution
//   - internal/frequency: Per-day bucketing
//   - internal/chart: Chart rendering
//
// Each request resolves deploys live; nothing is cached or stored. A target
// is aggregated by at most one request at a time and requests are rate
// limited per IP, which together bound the load put on the CircleCI API.
package server
