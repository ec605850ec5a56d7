// Package journal records controller traffic to PostgreSQL.
//
// Every inbound message the router classifies and every outbound log action
// the panel sends becomes one append-only row tagged with the panel session
// ID. Rows are buffered in memory and written in batches. Recording never
// blocks the panel event loop: when the buffer is full the entry is dropped
// and counted.
package journal
