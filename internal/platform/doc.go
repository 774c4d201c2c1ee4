// Package platform is the HTTP client for the internal device-command
// platform: the service that actually delivers commands to physical
// hardware and reports delivery status.
//
// The client is deliberately thin. It authenticates, applies per-call
// timeouts (batch config dispatches wait far longer than reads, since the
// platform may hold the request open for device acknowledgment), decodes
// the JSON response body, and hands back the HTTP status plus the raw body.
// It never retries and never interprets result codes; classification
// belongs to the planogram dispatcher.
package platform
