// Package metrics defines the Prometheus collectors for the gallery builder.
//
// All collectors are registered with the default registry via promauto at
// package initialization. In serve mode they are exposed on /metrics; in
// one-shot build mode they still record but are never scraped.
package metrics
