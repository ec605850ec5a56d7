package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *PanelConfig) Validate() error {
	if c.Controller.URL == "" {
		return errors.New("controller.url is required")
	}
	u, err := url.Parse(c.Controller.URL)
	if err != nil {
		return fmt.Errorf("controller.url is invalid: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("controller.url scheme must be ws or wss, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("controller.url host is required")
	}
	if c.Controller.HandshakeTimeout < 0 {
		return errors.New("controller.handshake_timeout must be >= 0")
	}
	if c.Controller.WriteTimeout < 0 {
		return errors.New("controller.write_timeout must be >= 0")
	}
	if c.Controller.BufferSize < 1 {
		return errors.New("controller.buffer_size must be >= 1")
	}

	if c.Topology.TempSensors < 1 {
		return errors.New("topology.temp_sensors must be >= 1")
	}
	if c.Topology.HumiditySensors < 1 {
		return errors.New("topology.humidity_sensors must be >= 1")
	}
	if c.Topology.Humidifiers < 1 {
		return errors.New("topology.humidifiers must be >= 1")
	}
	if c.Topology.Pumps < 1 {
		return errors.New("topology.pumps must be >= 1")
	}

	if c.HTTP.Listen == "" {
		return errors.New("http.listen is required")
	}
	if c.Metrics.IsEnabled() && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}

	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	if c.Journal.Enabled {
		if err := c.Journal.Database.validate("journal.database"); err != nil {
			return err
		}
		if c.Journal.BatchSize < 1 {
			return errors.New("journal.batch_size must be >= 1")
		}
		if c.Journal.BufferSize < 1 {
			return errors.New("journal.buffer_size must be >= 1")
		}
		if c.Journal.FlushInterval <= 0 {
			return errors.New("journal.flush_interval must be > 0")
		}
	}

	return nil
}

// ParseLevel maps logging.level onto a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("logging.level must be debug, info, warn or error, got %q", level)
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
