// Package timeouts defines shared timeout constants used by the Stories servers.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long servers wait for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// PublishFlush caps how long the event publisher waits to flush on close.
const PublishFlush = 2 * time.Second
