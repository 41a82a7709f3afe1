package contact

import (
	"context"
	"encoding/json"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hyrx/studio-backend/internal/model/contact"
	contactservice "github.com/hyrx/studio-backend/internal/service/contact"
	"github.com/hyrx/studio-backend/pkg/utils"
)

// Submitter abstracts the submission pipeline for testing.
type Submitter interface {
	Submit(ctx context.Context, sub contact.Submission, remoteIP string) contactservice.Result
}

// Handler serves the contact submission endpoint.
type Handler struct {
	pipeline Submitter
}

// New creates the contact handler.
func New(pipeline Submitter) *Handler {
	return &Handler{pipeline: pipeline}
}

// RegisterRoutes mounts the contact routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/contact", h.handleSubmit)
}

// handleSubmit runs the submission pipeline. Outcomes are modeled
// in-band: the response is always HTTP 200 and callers branch on the
// success field, not the status code.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var sub contact.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		utils.RespondJSON(w, http.StatusOK, contactservice.Result{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	result := h.pipeline.Submit(r.Context(), sub, clientIP(r))
	utils.RespondJSON(w, http.StatusOK, result)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
