package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lussekatt/internal/admission"
	"github.com/shrimpsizemoose/lussekatt/internal/auth"
	"github.com/shrimpsizemoose/lussekatt/internal/metrics"
	"github.com/shrimpsizemoose/lussekatt/internal/models"
)

type SubmissionHandler struct {
	controller *admission.Controller
	verifier   *auth.Verifier
}

func NewSubmissionHandler(controller *admission.Controller, verifier *auth.Verifier) *SubmissionHandler {
	return &SubmissionHandler{
		controller: controller,
		verifier:   verifier,
	}
}

// HandleSubmit runs the admission gates for a new submission attempt.
// Request-boundary gates (content type, query params, auth, payload
// shape) live here; the domain gates live in the admission controller.
func (h *SubmissionHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if !hasJSONContentType(r) {
		metrics.SubmissionsTotal.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest, "Content-Type must be application/json")
		return
	}
	if hasQueryParams(r) {
		metrics.SubmissionsTotal.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest, "Unexpected query parameters")
		return
	}

	user, ok := authenticate(w, r, h.verifier)
	if !ok {
		metrics.SubmissionsTotal.WithLabelValues("rejected").Inc()
		return
	}

	var input models.SubmissionInput
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&input); err != nil {
		metrics.SubmissionsTotal.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := input.Validate(); err != nil {
		metrics.SubmissionsTotal.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	assignmentID := r.PathValue("id")
	sub, err := h.controller.Admit(r.Context(), assignmentID, user, input.SubmissionURL)
	if err != nil {
		h.rejectSubmission(w, assignmentID, err)
		return
	}

	metrics.SubmissionsTotal.WithLabelValues("accepted").Inc()
	logger.Info.Printf("Accepted submission %s for assignment %s", sub.ID, sub.AssignmentID)
	writeJSON(w, http.StatusCreated, sub)
}

func (h *SubmissionHandler) rejectSubmission(w http.ResponseWriter, assignmentID string, err error) {
	metrics.SubmissionsTotal.WithLabelValues("rejected").Inc()

	switch {
	case errors.Is(err, admission.ErrBadAssignmentID):
		writeError(w, http.StatusBadRequest, "Invalid assignment ID format")
	case errors.Is(err, admission.ErrAssignmentNotFound):
		writeError(w, http.StatusNotFound, "Assignment not found")
	case errors.Is(err, admission.ErrDeadlinePassed):
		logger.Info.Printf("Rejected late submission for assignment %s", assignmentID)
		writeError(w, http.StatusBadRequest, "Submission deadline has passed")
	case errors.Is(err, admission.ErrAttemptsExceeded):
		logger.Info.Printf("Rejected submission for assignment %s: attempt limit reached", assignmentID)
		writeError(w, http.StatusBadRequest, "Exceeded maximum number of attempts")
	default:
		logger.Error.Printf("Submission admission failed for assignment %s: %v", assignmentID, err)
		writeError(w, http.StatusServiceUnavailable, "Service unavailable")
	}
}
