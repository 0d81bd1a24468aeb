// Package handlers provides HTTP handlers for the escalation engine API.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"escalation-engine/internal/database"
	"escalation-engine/internal/escalator"
)

// Runner executes one escalation pass.
type Runner interface {
	Run(ctx context.Context) (*escalator.Summary, error)
}

// EscalationStore reads the audit trail.
type EscalationStore interface {
	ListEscalations(ctx context.Context, alertID string) ([]database.Escalation, error)
}

// Handlers wraps dependencies for HTTP handlers.
type Handlers struct {
	runner Runner
	store  EscalationStore
}

// NewHandlers creates a new handlers instance.
func NewHandlers(runner Runner, store EscalationStore) *Handlers {
	return &Handlers{
		runner: runner,
		store:  store,
	}
}

// Escalate triggers one escalation run and returns its summary.
// A failure to fetch the candidate alerts is the only hard failure; partial
// dispatch failures come back inside the summary's error list with a 200.
func (h *Handlers) Escalate(w http.ResponseWriter, r *http.Request) {
	summary, err := h.runner.Run(r.Context())
	if err != nil {
		slog.Error("Escalation run failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "escalation run failed",
			"details": err.Error(),
		})
		return
	}

	if summary.Errors == nil {
		summary.Errors = []string{}
	}
	writeJSON(w, http.StatusOK, summary)
}

// escalationResponse is the JSON shape of one audit row.
type escalationResponse struct {
	AlertID      string `json:"alert_id"`
	EmployeeID   string `json:"employee_id,omitempty"`
	OrgID        string `json:"org_id"`
	Level        int    `json:"level"`
	Channel      string `json:"channel"`
	Recipient    string `json:"recipient"`
	SentAt       string `json:"sent_at"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// ListEscalations returns the escalation history for one alert.
func (h *Handlers) ListEscalations(w http.ResponseWriter, r *http.Request) {
	alertID := r.URL.Query().Get("alert_id")
	if alertID == "" {
		http.Error(w, "alert_id query parameter is required", http.StatusBadRequest)
		return
	}

	escalations, err := h.store.ListEscalations(r.Context(), alertID)
	if err != nil {
		slog.Error("Failed to list escalations", "alert_id", alertID, "error", err)
		http.Error(w, "Failed to list escalations", http.StatusInternalServerError)
		return
	}

	response := make([]escalationResponse, 0, len(escalations))
	for _, esc := range escalations {
		response = append(response, escalationResponse{
			AlertID:      esc.AlertID,
			EmployeeID:   esc.EmployeeID,
			OrgID:        esc.OrgID,
			Level:        esc.Level,
			Channel:      esc.Channel,
			Recipient:    esc.Recipient,
			SentAt:       esc.SentAt.UTC().Format(time.RFC3339),
			Status:       esc.Status.String(),
			ErrorMessage: esc.ErrorMessage,
		})
	}

	writeJSON(w, http.StatusOK, response)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}
