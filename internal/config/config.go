package config

import "time"

// PanelConfig is the root configuration for a panel process.
type PanelConfig struct {
	Controller ControllerConfig `yaml:"controller"`
	Topology   TopologyConfig   `yaml:"topology"`
	HTTP       HTTPConfig       `yaml:"http"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging"`
	Journal    JournalConfig    `yaml:"journal"`
}

// ControllerConfig holds the chamber controller WebSocket settings.
type ControllerConfig struct {
	URL              string        `yaml:"url"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"` // 0 = no write deadline
	BufferSize       int           `yaml:"buffer_size"`
}

// TopologyConfig sizes the dashboard. The five peltier panels are fixed, and a
// zero count selects the default.
type TopologyConfig struct {
	TempSensors     int `yaml:"temp_sensors"`
	HumiditySensors int `yaml:"humidity_sensors"`
	Humidifiers     int `yaml:"humidifiers"`
	Pumps           int `yaml:"pumps"`
}

// HTTPConfig holds the operator-facing page settings.
type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// IsEnabled reports whether /metrics is served. Unset means enabled.
func (m MetricsConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// JournalConfig holds the optional traffic journal settings.
type JournalConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Database      DBConfig      `yaml:"database"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}
