package actions

import (
	"log/slog"

	"github.com/rickgao/chamber-panel/internal/dashboard"
	"github.com/rickgao/chamber-panel/internal/metrics"
	"github.com/rickgao/chamber-panel/internal/protocol"
)

// Transport writes one outbound text frame.
type Transport interface {
	Send(data []byte) error
}

// SendHook observes every frame handed to the transport, whether or not the
// send succeeded.
type SendHook func(id protocol.OutboundID, payload []byte, err error)

// Sender implements dashboard.Actions over a Transport.
type Sender struct {
	transport Transport
	logger    *slog.Logger
	metrics   metrics.Collector
	cache     *PIDCache
	hooks     []SendHook
}

var _ dashboard.Actions = (*Sender)(nil)

// Option configures a Sender.
type Option func(*Sender)

// WithLogger sets the sender logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sender) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics counts sent and failed actions on c.
func WithMetrics(c metrics.Collector) Option {
	return func(s *Sender) {
		if c != nil {
			s.metrics = c
		}
	}
}

// WithSendHook registers fn to observe outbound frames.
func WithSendHook(fn SendHook) Option {
	return func(s *Sender) {
		if fn != nil {
			s.hooks = append(s.hooks, fn)
		}
	}
}

// NewSender creates a sender writing to t.
func NewSender(t Transport, opts ...Option) *Sender {
	s := &Sender{
		transport: t,
		logger:    slog.Default(),
		metrics:   metrics.Noop(),
		cache:     NewPIDCache(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cache returns the PID cache filled by ChangePID and ChangeSetpoint.
func (s *Sender) Cache() *PIDCache {
	return s.cache
}

func (s *Sender) Start() {
	s.send(protocol.NewStart())
}

func (s *Sender) Stop() {
	s.send(protocol.NewStop())
}

func (s *Sender) ToggleDeveloperMode() {
	s.send(protocol.NewDeveloperMode())
}

func (s *Sender) TogglePump(name dashboard.PumpName) {
	s.send(protocol.NewPumpToggle(string(name)))
}

func (s *Sender) TogglePower(name dashboard.ActuatorName) {
	s.send(protocol.NewPowerToggle(string(name)))
}

func (s *Sender) ToggleMode(name dashboard.ActuatorName) {
	s.send(protocol.NewModeToggle(string(name)))
}

// ChangePID records the gains and sends all three together.
func (s *Sender) ChangePID(name dashboard.ActuatorName, p, i, d float64) {
	s.cache.setGains(name, p, i, d)
	s.send(protocol.NewPID(string(name), p, i, d))
}

// ChangeSetpoint records the setpoint and sends it.
func (s *Sender) ChangeSetpoint(name dashboard.ActuatorName, setpoint float64) {
	s.cache.setSetpoint(name, setpoint)
	s.send(protocol.NewSetpoint(string(name), setpoint))
}

// send encodes msg as one frame and writes it. Failures are logged only.
func (s *Sender) send(msg protocol.Outbound) {
	data, err := protocol.Encode(msg)
	if err != nil {
		s.logger.Error("failed to encode log action", "id", msg.ID, "error", err)
		s.metrics.IncOutbound(string(msg.ID), false)
		return
	}

	s.logger.Info("sending log action", "id", msg.ID, "name", msg.Name)

	err = s.transport.Send(data)
	if err != nil {
		s.logger.Error("failed to send log action", "id", msg.ID, "name", msg.Name, "error", err)
	}
	s.metrics.IncOutbound(string(msg.ID), err == nil)

	for _, fn := range s.hooks {
		fn(msg.ID, data, err)
	}
}
