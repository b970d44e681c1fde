// Package metrics provides build observability hooks with a Prometheus
// implementation and a no-op default.
package metrics
