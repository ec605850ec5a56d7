// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Inbound frame and message outcomes per controller message id
//   - Outbound log actions and send failures
//   - Controller connection state
//   - Journal entries written and dropped
package metrics
