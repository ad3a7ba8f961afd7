// Package middleware provides HTTP middleware for the preview server:
// request logging with log-injection sanitization, and Prometheus request
// metrics with cardinality-bounded path labels.
package middleware
