// Package webui serves the dashboard page, its htmx interaction endpoints and
// the health and metrics endpoints over HTTP.
package webui
