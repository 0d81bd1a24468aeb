// Package router provides HTTP routing configuration for the escalation
// engine. It sets up routes and applies auth and CORS middleware.
package router

import (
	"net/http"

	"escalation-engine/internal/handlers"
)

// Router wraps the HTTP mux and provides route configuration.
type Router struct {
	mux      *http.ServeMux
	handlers *handlers.Handlers
	secret   string
}

// NewRouter creates a new router with all routes configured. secret guards
// the trigger and audit endpoints; empty means unauthenticated.
func NewRouter(h *handlers.Handlers, secret string) *Router {
	r := &Router{
		mux:      http.NewServeMux(),
		handlers: h,
		secret:   secret,
	}
	r.setupRoutes()
	return r
}

// setupRoutes configures all HTTP routes.
func (r *Router) setupRoutes() {
	// Escalation trigger, invoked by the external scheduler
	r.mux.Handle("/escalate", authMiddleware(r.secret, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method == http.MethodGet {
			r.handlers.Escalate(w, req)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Audit trail
	r.mux.Handle("/api/v1/escalations", authMiddleware(r.secret, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method == http.MethodGet {
			r.handlers.ListEscalations(w, req)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Health check endpoint
	r.mux.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// Handler returns the HTTP handler with CORS middleware applied.
func (r *Router) Handler() http.Handler {
	return corsMiddleware(r.mux)
}
