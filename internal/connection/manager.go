package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/chamber-panel/internal/metrics"
)

// Manager owns the controller connection for one panel session.
type Manager interface {
	// Start dials the controller. A dial failure is returned, reported as an
	// EventError and leaves the manager in StateFailed; there is no retry.
	Start(ctx context.Context) error

	// Stop closes the connection and waits for the delivery goroutine.
	Stop(ctx context.Context) error

	// Frames returns inbound frames in arrival order.
	Frames() <-chan Frame

	// Events returns lifecycle events. Every frame received before a close
	// or error is delivered on Frames before that event is sent.
	Events() <-chan Event

	// Send writes one outbound text frame.
	Send(data []byte) error

	// Status returns the current connection status.
	Status() Status
}

// manager implements the Manager interface.
type manager struct {
	cfg     ClientConfig
	logger  *slog.Logger
	metrics metrics.Collector

	newClient func(ClientConfig, *slog.Logger) Client
	client    Client

	// Output channels
	frames chan Frame
	events chan Event

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu guards client, ctx, cancel and status
	mu     sync.RWMutex
	status Status
}

// ManagerOption configures a Manager.
type ManagerOption func(*manager)

// WithMetrics reports connection state changes to c.
func WithMetrics(c metrics.Collector) ManagerOption {
	return func(m *manager) {
		if c != nil {
			m.metrics = c
		}
	}
}

// NewManager creates a manager for the controller at cfg.URL.
func NewManager(cfg ClientConfig, logger *slog.Logger, opts ...ManagerOption) Manager {
	if logger == nil {
		logger = slog.Default()
	}

	m := &manager{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics.Noop(),
		newClient: NewClient,
		frames:    make(chan Frame),
		events:    make(chan Event, 4),
		status:    Status{State: StateConnecting, URL: cfg.URL},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.metrics.SetConnectionState(string(StateConnecting))
	return m
}

// Start dials the controller and begins delivering frames.
func (m *manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.client != nil {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.client = m.newClient(m.cfg, m.logger)
	client := m.client
	m.mu.Unlock()

	m.logger.Info("connecting to controller", "url", m.cfg.URL)

	if err := client.Connect(m.ctx); err != nil {
		m.setStatus(func(s *Status) {
			s.State = StateFailed
			s.LastError = err.Error()
		})
		m.logger.Error("failed to connect to controller", "url", m.cfg.URL, "error", err)
		m.emit(Event{Kind: EventError, Err: err, At: time.Now()})
		return fmt.Errorf("dial %s: %w", m.cfg.URL, err)
	}

	now := time.Now()
	m.setStatus(func(s *Status) {
		s.State = StateOpen
		s.ConnectedAt = now
	})
	m.logger.Info("controller connection ready", "url", m.cfg.URL)
	m.emit(Event{Kind: EventOpen, At: now})

	m.wg.Add(1)
	go m.forwardLoop()

	return nil
}

// Stop gracefully shuts down.
func (m *manager) Stop(ctx context.Context) error {
	m.logger.Info("stopping connection manager")

	m.mu.RLock()
	cancel, client := m.cancel, m.client
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}

	var err error
	if client != nil {
		err = client.Close()
	}

	// Wait for goroutines with timeout
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		m.logger.Warn("shutdown timeout, forcing close")
	}

	m.logger.Info("connection manager stopped")
	return err
}

// Frames returns the inbound frame channel.
func (m *manager) Frames() <-chan Frame {
	return m.frames
}

// Events returns the lifecycle event channel.
func (m *manager) Events() <-chan Event {
	return m.events
}

// Send writes one outbound text frame.
func (m *manager) Send(data []byte) error {
	m.mu.RLock()
	client := m.client
	m.mu.RUnlock()

	if client == nil {
		return ErrNotConnected
	}
	if err := client.Send(data); err != nil {
		return err
	}
	m.setStatus(func(s *Status) { s.FramesSent++ })
	return nil
}

// Status returns the current connection status.
func (m *manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// forwardLoop passes frames to the consumer, then reports how the connection
// ended.
func (m *manager) forwardLoop() {
	defer m.wg.Done()

	for frame := range m.client.Messages() {
		m.setStatus(func(s *Status) { s.FramesReceived++ })
		select {
		case m.frames <- frame:
		case <-m.ctx.Done():
			return
		}
	}

	select {
	case err := <-m.client.Errors():
		m.reportEnd(err)
	case <-m.ctx.Done():
	}
}

// reportEnd classifies the error that ended the read loop.
func (m *manager) reportEnd(err error) {
	now := time.Now()

	// gorilla reports a dropped transport as close code 1006, which a peer
	// never sends on the wire.
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) && closeErr.Code != websocket.CloseAbnormalClosure {
		m.setStatus(func(s *Status) {
			s.State = StateClosed
			s.CloseCode = closeErr.Code
			s.CloseReason = closeErr.Text
		})
		m.logger.Warn("controller connection closed", "code", closeErr.Code, "reason", closeErr.Text)
		m.emit(Event{Kind: EventClosed, Code: closeErr.Code, Reason: closeErr.Text, At: now})
		return
	}

	ev := Event{Kind: EventError, Err: err, At: now}
	if closeErr != nil {
		ev.Code = closeErr.Code
		ev.Reason = closeErr.Text
	}
	m.setStatus(func(s *Status) {
		s.State = StateFailed
		s.LastError = err.Error()
		s.CloseCode = ev.Code
		s.CloseReason = ev.Reason
	})
	m.logger.Error("controller connection error", "error", err)
	m.emit(ev)
}

func (m *manager) emit(ev Event) {
	select {
	case m.events <- ev:
	case <-m.ctx.Done():
	}
}

func (m *manager) setStatus(fn func(*Status)) {
	m.mu.Lock()
	before := m.status.State
	fn(&m.status)
	after := m.status.State
	m.mu.Unlock()

	if before != after {
		m.metrics.SetConnectionState(string(after))
	}
}
