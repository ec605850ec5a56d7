package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Connection states reported through SetConnectionState.
var connectionStates = []string{"connecting", "open", "closed", "failed"}

// Collector captures panel events as metrics.
//
// Hooks run inline on the panel event loop, so implementations must not block.
type Collector interface {
	IncFrame(result string)
	IncMessage(id, outcome string)
	IncOutbound(id string, ok bool)
	SetConnectionState(state string)
	AddJournal(result string, count int)
}

type noopCollector struct{}

// Noop returns a collector that discards all metrics.
func Noop() Collector {
	return noopCollector{}
}

func (noopCollector) IncFrame(string)           {}
func (noopCollector) IncMessage(string, string) {}
func (noopCollector) IncOutbound(string, bool)  {}
func (noopCollector) SetConnectionState(string) {}
func (noopCollector) AddJournal(string, int)    {}

// PrometheusCollector exposes panel counters via Prometheus.
type PrometheusCollector struct {
	frames     *prometheus.CounterVec
	messages   *prometheus.CounterVec
	outbound   *prometheus.CounterVec
	connection *prometheus.GaugeVec
	journal    *prometheus.CounterVec
}

// NewPrometheusCollector registers the panel metrics with reg. Metrics already
// registered on reg by an earlier collector are reused.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	frames, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chamber_panel_frames_total",
		Help: "Inbound WebSocket frames by decode result.",
	}, []string{"result"}))
	if err != nil {
		return nil, err
	}

	messages, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chamber_panel_messages_total",
		Help: "Inbound controller messages by id and routing outcome.",
	}, []string{"id", "outcome"}))
	if err != nil {
		return nil, err
	}

	outbound, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chamber_panel_outbound_total",
		Help: "Outbound log actions by id and send result.",
	}, []string{"id", "result"}))
	if err != nil {
		return nil, err
	}

	connection, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "chamber_panel_connection_state",
		Help: "Controller connection state, 1 for the current state.",
	}, []string{"state"}))
	if err != nil {
		return nil, err
	}

	journal, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chamber_panel_journal_entries_total",
		Help: "Journal entries by result (written, dropped, failed).",
	}, []string{"result"}))
	if err != nil {
		return nil, err
	}

	return &PrometheusCollector{
		frames:     frames,
		messages:   messages,
		outbound:   outbound,
		connection: connection,
		journal:    journal,
	}, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, err
	}
	return c, nil
}

// IncFrame counts one inbound frame.
func (p *PrometheusCollector) IncFrame(result string) {
	if p == nil {
		return
	}
	p.frames.WithLabelValues(result).Inc()
}

// IncMessage counts one inbound message.
func (p *PrometheusCollector) IncMessage(id, outcome string) {
	if p == nil {
		return
	}
	p.messages.WithLabelValues(id, outcome).Inc()
}

// IncOutbound counts one outbound log action.
func (p *PrometheusCollector) IncOutbound(id string, ok bool) {
	if p == nil {
		return
	}
	result := "sent"
	if !ok {
		result = "failed"
	}
	p.outbound.WithLabelValues(id, result).Inc()
}

// SetConnectionState marks state as current and clears the others.
func (p *PrometheusCollector) SetConnectionState(state string) {
	if p == nil {
		return
	}
	for _, s := range connectionStates {
		v := 0.0
		if s == state {
			v = 1
		}
		p.connection.WithLabelValues(s).Set(v)
	}
}

// AddJournal counts journal entries.
func (p *PrometheusCollector) AddJournal(result string, count int) {
	if p == nil || count <= 0 {
		return
	}
	p.journal.WithLabelValues(result).Add(float64(count))
}
