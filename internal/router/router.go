package router

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/rickgao/chamber-panel/internal/dashboard"
	"github.com/rickgao/chamber-panel/internal/metrics"
	"github.com/rickgao/chamber-panel/internal/protocol"
)

// Router applies inbound controller messages to a dashboard.
//
// Route must be called from the goroutine that owns the dashboard. Stats may
// be read from any goroutine.
type Router struct {
	dash      *dashboard.Dashboard
	logger    *slog.Logger
	metrics   metrics.Collector
	observers []Observer

	mu    sync.RWMutex
	stats Stats
}

// New creates a router bound to dash.
func New(dash *dashboard.Dashboard, opts ...Option) *Router {
	r := &Router{
		dash:    dash,
		logger:  slog.Default(),
		metrics: metrics.Noop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stats returns current statistics.
func (r *Router) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats
}

// Route decodes one inbound frame and applies every message it carries in
// order. A malformed frame is dropped whole and its decode error returned.
func (r *Router) Route(frame []byte) error {
	r.count(func(s *Stats) { s.FramesReceived++ })

	messages, err := protocol.DecodeFrame(frame)
	if err != nil {
		r.count(func(s *Stats) { s.ParseErrors++ })
		r.metrics.IncFrame("malformed")
		r.logger.Warn("failed to decode frame", "error", err, "bytes", len(frame))
		return err
	}
	r.metrics.IncFrame("ok")

	for _, raw := range messages {
		r.routeMessage(raw)
	}
	return nil
}

// routeMessage parses and dispatches a single message.
func (r *Router) routeMessage(raw json.RawMessage) {
	r.count(func(s *Stats) { s.MessagesReceived++ })

	msg, err := protocol.ParseMessage(raw)
	if err != nil {
		var (
			unknown  *protocol.UnknownIDError
			fieldErr *protocol.FieldError
		)
		switch {
		case errors.Is(err, protocol.ErrMissingID):
			r.count(func(s *Stats) { s.MissingIDs++ })
			r.logger.Warn("dropping message without id", "message", string(raw))
			r.finish("", raw, OutcomeMissingID)
		case errors.As(err, &unknown):
			r.count(func(s *Stats) { s.UnknownMessages++ })
			r.logger.Warn("dropping message with unknown id", "id", unknown.ID)
			r.finish(unknown.ID, raw, OutcomeUnknownID)
		case errors.As(err, &fieldErr):
			r.count(func(s *Stats) { s.InvalidMessages++ })
			r.logger.Warn("dropping invalid message", "id", fieldErr.ID, "field", fieldErr.Field, "error", fieldErr.Err)
			r.finish(string(fieldErr.ID), raw, OutcomeInvalid)
		default:
			r.count(func(s *Stats) { s.InvalidMessages++ })
			r.logger.Warn("dropping invalid message", "error", err)
			r.finish("", raw, OutcomeInvalid)
		}
		return
	}

	outcome := r.Dispatch(msg)
	r.finish(string(msg.InboundID()), raw, outcome)
}

// Dispatch applies one decoded message to the dashboard.
func (r *Router) Dispatch(msg protocol.Inbound) Outcome {
	var applied bool
	switch m := msg.(type) {
	case protocol.StartUpdate:
		applied = r.handleStart()
	case protocol.StopUpdate:
		applied = r.handleStop()
	case protocol.DevModeUpdate:
		applied = r.handleDevMode(m)
	case protocol.OverviewUpdate:
		applied = r.handleOverview(m)
	case protocol.SensorUpdate:
		applied = r.handleSensor(m)
	case protocol.PumpUpdate:
		applied = r.handlePump(m)
	case protocol.WaterLevelUpdate:
		applied = r.handleWaterLevel(m)
	case protocol.PowerUpdate:
		applied = r.handlePower(m)
	case protocol.ModeUpdate:
		applied = r.handleMode(m)
	case protocol.PIDInputUpdate:
		applied = r.handlePIDInput(m)
	case protocol.SetpointUpdate:
		applied = r.handleSetpoint(m)
	case protocol.ActualUpdate:
		applied = r.handleActual(m)
	default:
		r.logger.Warn("no handler for message", "id", msg.InboundID())
		return OutcomeUnknownID
	}

	if !applied {
		r.count(func(s *Stats) { s.MissingBindings++ })
		return OutcomeNoBinding
	}
	r.count(func(s *Stats) { s.MessagesRouted++ })
	return OutcomeApplied
}

// finish reports the outcome. The metric label is the id only for ids the
// panel knows, so controller input cannot grow the label set.
func (r *Router) finish(id string, raw json.RawMessage, outcome Outcome) {
	label := id
	switch {
	case outcome == OutcomeUnknownID:
		label = "unknown"
	case label == "":
		label = "none"
	}
	r.metrics.IncMessage(label, string(outcome))
	for _, fn := range r.observers {
		fn(id, raw, outcome)
	}
}

func (r *Router) count(fn func(*Stats)) {
	r.mu.Lock()
	fn(&r.stats)
	r.mu.Unlock()
}
