// Package api provides the HTTP/JSON server fronting the causal memory engine.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8000")
	ListenAddr string

	// APIKey optionally gates all endpoints behind an x-api-key header.
	// Empty means open.
	APIKey string

	// CORSOrigins is the comma-separated allowed origins ("*" by default).
	CORSOrigins string

	// RateLimitEventsPerMin caps POST /events per client IP per minute.
	RateLimitEventsPerMin int

	// RateLimitQueryPerMin caps POST /query per client IP per minute.
	RateLimitQueryPerMin int
}
