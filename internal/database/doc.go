// Package database opens the PostgreSQL pool used by the traffic journal.
package database
