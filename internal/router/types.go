package router

import (
	"encoding/json"
	"log/slog"

	"github.com/rickgao/chamber-panel/internal/metrics"
)

// Outcome is the routing result of one inbound message.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeNoBinding Outcome = "no_binding"
	OutcomeMissingID Outcome = "missing_id"
	OutcomeUnknownID Outcome = "unknown_id"
	OutcomeInvalid   Outcome = "invalid"
)

// Observer is told about every message the router sees, in arrival order.
// id is empty when the message had none.
type Observer func(id string, raw json.RawMessage, outcome Outcome)

// Stats contains runtime statistics.
type Stats struct {
	FramesReceived   int64 `json:"frames_received"`
	ParseErrors      int64 `json:"parse_errors"`
	MessagesReceived int64 `json:"messages_received"`
	MessagesRouted   int64 `json:"messages_routed"`
	MissingBindings  int64 `json:"missing_bindings"`
	MissingIDs       int64 `json:"missing_ids"`
	UnknownMessages  int64 `json:"unknown_messages"`
	InvalidMessages  int64 `json:"invalid_messages"`
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the router logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics reports frame and message outcomes to c.
func WithMetrics(c metrics.Collector) Option {
	return func(r *Router) {
		if c != nil {
			r.metrics = c
		}
	}
}

// WithObserver registers fn to be called for every message.
func WithObserver(fn Observer) Option {
	return func(r *Router) {
		if fn != nil {
			r.observers = append(r.observers, fn)
		}
	}
}
