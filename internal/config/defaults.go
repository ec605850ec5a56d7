package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultControllerURL     = "ws://192.168.7.180:80/ws"
	DefaultHandshakeTimeout  = 10 * time.Second
	DefaultControllerBuffer  = 1024
	DefaultTempSensors       = 8
	DefaultHumiditySensors   = 8
	DefaultHumidifiers       = 5
	DefaultPumps             = 5
	DefaultListen            = ":8080"
	DefaultMetricsPath       = "/metrics"
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 4
	DefaultMinConns          = 1
	DefaultJournalBatchSize  = 100
	DefaultJournalFlush      = 1 * time.Second
	DefaultJournalBufferSize = 1000
)

func (c *PanelConfig) applyDefaults() {
	// Controller defaults
	if c.Controller.URL == "" {
		c.Controller.URL = DefaultControllerURL
	}
	if c.Controller.HandshakeTimeout == 0 {
		c.Controller.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Controller.BufferSize == 0 {
		c.Controller.BufferSize = DefaultControllerBuffer
	}

	// Topology defaults
	if c.Topology.TempSensors == 0 {
		c.Topology.TempSensors = DefaultTempSensors
	}
	if c.Topology.HumiditySensors == 0 {
		c.Topology.HumiditySensors = DefaultHumiditySensors
	}
	if c.Topology.Humidifiers == 0 {
		c.Topology.Humidifiers = DefaultHumidifiers
	}
	if c.Topology.Pumps == 0 {
		c.Topology.Pumps = DefaultPumps
	}

	if c.HTTP.Listen == "" {
		c.HTTP.Listen = DefaultListen
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}

	// Journal defaults
	applyDBDefaults(&c.Journal.Database)
	if c.Journal.BatchSize == 0 {
		c.Journal.BatchSize = DefaultJournalBatchSize
	}
	if c.Journal.FlushInterval == 0 {
		c.Journal.FlushInterval = DefaultJournalFlush
	}
	if c.Journal.BufferSize == 0 {
		c.Journal.BufferSize = DefaultJournalBufferSize
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
