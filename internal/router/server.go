// Package router provides HTTP routing configuration for the escalation engine.
package router

import (
	"net/http"
	"time"

	"escalation-engine/internal/handlers"
)

// NewServer creates a new HTTP server with the router configured.
// The write timeout leaves room for a full escalation run behind /escalate.
func NewServer(port string, h *handlers.Handlers, secret string) *http.Server {
	router := NewRouter(h, secret)
	return &http.Server{
		Addr:         ":" + port,
		Handler:      router.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
}
