package journal

import (
	"time"

	"github.com/google/uuid"
)

// Direction tells whether an entry came from or went to the controller.
type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

// Outbound outcomes.
const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

// Entry is one journalled message.
type Entry struct {
	SessionID  uuid.UUID
	Direction  Direction
	MessageID  string
	Outcome    string
	Payload    []byte
	RecordedAt time.Time
}

// Config holds the journal batching settings.
type Config struct {
	BatchSize     int
	FlushInterval time.Duration
	BufferSize    int
}

// DefaultConfig returns the default batching settings.
func DefaultConfig() Config {
	return Config{
		BatchSize:     100,
		FlushInterval: time.Second,
		BufferSize:    1000,
	}
}

// Stats counts journal activity.
type Stats struct {
	Recorded int64 `json:"recorded"`
	Dropped  int64 `json:"dropped"`
	Written  int64 `json:"written"`
	Failed   int64 `json:"failed"`
	Flushes  int64 `json:"flushes"`
}
