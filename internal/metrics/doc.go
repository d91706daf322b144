// Package metrics holds the Prometheus collectors exported on /debug/metrics.
package metrics
