// Package protocol defines the JSON message vocabulary exchanged with the
// chamber controller.
//
// Inbound frames carry either one message object or an array of them. Each
// element decodes into exactly one Inbound variant keyed by its "id" field;
// frames that are not JSON, elements without an id, unknown ids and payload
// fields of the wrong type each surface as a distinct error so the router can
// drop them in one place.
//
// Outbound messages are flat {id, ...fields} objects sent one per frame.
package protocol
