// Package router applies inbound controller messages to the dashboard.
//
// Route takes one raw inbound frame, decodes it into messages (a single object
// or an ordered batch) and applies each message to the dashboard in order. The
// router never fails on message content: malformed frames, messages without
// an id, unknown ids and messages naming elements the dashboard does not have
// are logged and dropped.
package router
