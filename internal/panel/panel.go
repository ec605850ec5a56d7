package panel

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rickgao/chamber-panel/internal/connection"
	"github.com/rickgao/chamber-panel/internal/dashboard"
	"github.com/rickgao/chamber-panel/internal/router"
)

// ErrStopped is returned for interactions submitted after the loop ended.
var ErrStopped = errors.New("panel stopped")

// Source delivers inbound frames and connection events.
type Source interface {
	Frames() <-chan connection.Frame
	Events() <-chan connection.Event
}

// Panel owns the dashboard and applies every change to it on one goroutine.
type Panel struct {
	dash   *dashboard.Dashboard
	router *router.Router
	source Source
	logger *slog.Logger
	title  string

	requests chan request
	done     chan struct{}
}

type request struct {
	fn   func(*dashboard.Dashboard)
	done chan struct{}
}

// Option configures a Panel.
type Option func(*Panel)

// WithLogger sets the panel logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Panel) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithTitle sets the page title used by the render helpers.
func WithTitle(title string) Option {
	return func(p *Panel) {
		if title != "" {
			p.title = title
		}
	}
}

// New creates a panel. r must be bound to dash.
func New(dash *dashboard.Dashboard, r *router.Router, src Source, opts ...Option) *Panel {
	p := &Panel{
		dash:     dash,
		router:   r,
		source:   src,
		logger:   slog.Default(),
		title:    "Chamber Control Panel",
		requests: make(chan request),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes events until ctx is cancelled. It must be called once.
func (p *Panel) Run(ctx context.Context) error {
	defer close(p.done)

	p.logger.Info("panel event loop started")
	defer p.logger.Info("panel event loop stopped")

	for {
		select {
		case <-ctx.Done():
			return nil

		case frame := <-p.source.Frames():
			// Decode failures are logged and counted by the router.
			_ = p.router.Route(frame.Data)

		case ev := <-p.source.Events():
			p.handleEvent(ev)

		case req := <-p.requests:
			req.fn(p.dash)
			close(req.done)
		}
	}
}

func (p *Panel) handleEvent(ev connection.Event) {
	switch ev.Kind {
	case connection.EventOpen:
		p.dash.Connection = string(connection.StateOpen)
		p.logger.Info("controller connection open")
	case connection.EventClosed:
		p.dash.Connection = string(connection.StateClosed)
		p.logger.Warn("controller closed the connection, restart the panel to reconnect",
			"code", ev.Code, "reason", ev.Reason)
	case connection.EventError:
		p.dash.Connection = string(connection.StateFailed)
		p.logger.Error("controller connection failed, restart the panel to reconnect",
			"error", ev.Err)
	}
}

// Do runs fn on the event loop and waits for it to finish.
func (p *Panel) Do(ctx context.Context, fn func(*dashboard.Dashboard)) error {
	req := request{fn: fn, done: make(chan struct{})}

	select {
	case p.requests <- req:
	case <-p.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-req.done:
		return nil
	case <-p.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Click presses the button with the given key.
func (p *Panel) Click(ctx context.Context, key string) error {
	var err error
	if doErr := p.Do(ctx, func(d *dashboard.Dashboard) { err = d.Click(key) }); doErr != nil {
		return doErr
	}
	return err
}

// Change commits text into the field with the given key.
func (p *Panel) Change(ctx context.Context, key, text string) error {
	var err error
	if doErr := p.Do(ctx, func(d *dashboard.Dashboard) { err = d.Change(key, text) }); doErr != nil {
		return doErr
	}
	return err
}

// RenderPage renders the full dashboard document.
func (p *Panel) RenderPage(ctx context.Context) (string, error) {
	var page string
	err := p.Do(ctx, func(d *dashboard.Dashboard) { page = d.RenderPage(p.title) })
	return page, err
}

// RenderFragment renders the polled dashboard body.
func (p *Panel) RenderFragment(ctx context.Context) (string, error) {
	var body string
	err := p.Do(ctx, func(d *dashboard.Dashboard) { body = d.RenderFragment(p.title) })
	return body, err
}

// RouterStats returns the router statistics.
func (p *Panel) RouterStats() router.Stats {
	return p.router.Stats()
}
