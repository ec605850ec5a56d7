package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected   = errors.New("not connected")
	ErrAlreadyClosed  = errors.New("already closed")
	ErrAlreadyStarted = errors.New("already started")
)

// Frame is one inbound text frame with its local receive time.
type Frame struct {
	Data       []byte    // Raw frame bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// State is the lifecycle state of the controller connection.
type State string

const (
	StateConnecting State = "connecting"
	StateOpen       State = "open"
	StateClosed     State = "closed" // peer sent a close frame
	StateFailed     State = "failed" // dial or transport error
)

// EventKind identifies a connection lifecycle event.
type EventKind string

const (
	EventOpen   EventKind = "open"
	EventClosed EventKind = "closed"
	EventError  EventKind = "error"
)

// Event is a connection lifecycle event. Closed events carry the close code
// and reason; error events carry the transport error.
type Event struct {
	Kind   EventKind
	Code   int
	Reason string
	Err    error
	At     time.Time
}

// Status is a point-in-time view of the connection.
type Status struct {
	State          State     `json:"state"`
	URL            string    `json:"url"`
	ConnectedAt    time.Time `json:"connected_at,omitzero"`
	CloseCode      int       `json:"close_code,omitempty"`
	CloseReason    string    `json:"close_reason,omitempty"`
	LastError      string    `json:"last_error,omitempty"`
	FramesReceived int64     `json:"frames_received"`
	FramesSent     int64     `json:"frames_sent"`
}

// ClientConfig configures the WebSocket client.
type ClientConfig struct {
	URL              string        // Controller WebSocket URL (e.g., ws://192.168.7.180:80/ws)
	HandshakeTimeout time.Duration // Dial handshake timeout
	WriteTimeout     time.Duration // Write deadline for sends (0 = none)
	BufferSize       int           // Initial inbound queue capacity
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		URL:              "ws://192.168.7.180:80/ws",
		HandshakeTimeout: 10 * time.Second,
		BufferSize:       1024,
	}
}
