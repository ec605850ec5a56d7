// streamtest connects to the chamber controller and prints every decoded
// message to the console, routing it through a headless dashboard so the
// outcome the panel would reach is shown next to it.
// Usage: go run ./cmd/streamtest --config configs/panel.yaml [--verbose] [--send LogStart]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/chamber-panel/internal/actions"
	"github.com/rickgao/chamber-panel/internal/config"
	"github.com/rickgao/chamber-panel/internal/connection"
	"github.com/rickgao/chamber-panel/internal/dashboard"
	"github.com/rickgao/chamber-panel/internal/protocol"
	"github.com/rickgao/chamber-panel/internal/router"
)

func main() {
	configPath := flag.String("config", "configs/panel.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "print full message JSON")
	send := flag.String("send", "", "log action to send once connected (LogStart, LogStop, LogDeveloperMode)")
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mgr := connection.NewManager(connection.ClientConfig{
		URL:              cfg.Controller.URL,
		HandshakeTimeout: cfg.Controller.HandshakeTimeout,
		WriteTimeout:     cfg.Controller.WriteTimeout,
		BufferSize:       cfg.Controller.BufferSize,
	}, logger)

	sender := actions.NewSender(mgr, actions.WithLogger(logger))
	dash := dashboard.Build(dashboard.Topology{
		TempSensors:     cfg.Topology.TempSensors,
		HumiditySensors: cfg.Topology.HumiditySensors,
		Humidifiers:     cfg.Topology.Humidifiers,
		Pumps:           cfg.Topology.Pumps,
	}, sender)

	rtr := router.New(dash,
		router.WithLogger(logger),
		router.WithObserver(func(id string, raw json.RawMessage, outcome router.Outcome) {
			printMessage(id, raw, outcome, *verbose)
		}),
	)

	if err := mgr.Start(ctx); err != nil {
		logger.Error("failed to connect", "error", err)
		os.Exit(1)
	}

	if *send != "" {
		if err := sendAction(sender, protocol.OutboundID(*send)); err != nil {
			logger.Error("cannot send", "error", err)
		}
	}

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	logger.Info("streaming started - press Ctrl+C to stop")

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case frame := <-mgr.Frames():
			_ = rtr.Route(frame.Data)
		case ev := <-mgr.Events():
			logger.Info("connection event",
				"kind", ev.Kind,
				"code", ev.Code,
				"reason", ev.Reason,
				"error", ev.Err,
			)
			if ev.Kind != connection.EventOpen {
				break loop
			}
		case <-ticker.C:
			stats := rtr.Stats()
			status := mgr.Status()
			logger.Info("stats",
				"state", status.State,
				"frames_received", status.FramesReceived,
				"frames_sent", status.FramesSent,
				"router_received", stats.MessagesReceived,
				"router_routed", stats.MessagesRouted,
				"parse_errors", stats.ParseErrors,
				"unknown", stats.UnknownMessages,
			)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mgr.Stop(shutdownCtx)

	logger.Info("shutdown complete")
}

func printMessage(id string, raw json.RawMessage, outcome router.Outcome, verbose bool) {
	if verbose {
		fmt.Printf("[%s] %-26s %s\n", outcome, id, raw)
		return
	}
	fmt.Printf("[%s] %s\n", outcome, id)
}

// sendAction sends one of the unnamed log actions.
func sendAction(s *actions.Sender, id protocol.OutboundID) error {
	switch id {
	case protocol.LogStart:
		s.Start()
	case protocol.LogStop:
		s.Stop()
	case protocol.LogDeveloperMode:
		s.ToggleDeveloperMode()
	default:
		return fmt.Errorf("unsupported action %q", id)
	}
	return nil
}
