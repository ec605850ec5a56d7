// Package actions turns dashboard interactions into outbound log actions.
//
// Each interaction becomes exactly one flat JSON text frame. Sends are fire
// and forget: nothing waits for a reply, and a failed send is logged and
// counted but never retried. The authoritative state change arrives later as
// an inbound update.
package actions
