// Package panel runs the single event loop that owns the dashboard.
//
// Inbound frames, connection lifecycle events and user interactions are all
// serialized onto one goroutine, so the dashboard and the PID cache are never
// touched concurrently. Frames inside one batch are applied strictly in order.
// Nothing correlates an outbound action with a later inbound update.
package panel
