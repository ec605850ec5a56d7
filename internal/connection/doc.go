// Package connection holds the panel's WebSocket link to the chamber controller.
//
// A Manager dials once at startup and delivers every inbound frame in order
// without dropping any. It reports open, close (with code and reason) and
// transport errors as events, and writes each outbound message as its own
// text frame.
//
// There is no reconnect. Once the connection closes or fails the session is
// over until the process is restarted.
package connection
