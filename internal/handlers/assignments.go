package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lussekatt/internal/app"
	"github.com/shrimpsizemoose/lussekatt/internal/auth"
	"github.com/shrimpsizemoose/lussekatt/internal/models"
)

type AssignmentHandler struct {
	service  *app.Service
	verifier *auth.Verifier
}

func NewAssignmentHandler(service *app.Service, verifier *auth.Verifier) *AssignmentHandler {
	return &AssignmentHandler{
		service:  service,
		verifier: verifier,
	}
}

func (h *AssignmentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if hasQueryParams(r) || hasBody(r) {
		writeError(w, http.StatusBadRequest, "Unexpected query parameters or body content")
		return
	}

	if _, ok := authenticate(w, r, h.verifier); !ok {
		return
	}

	assignments, err := h.service.Store.ListAssignments()
	if err != nil {
		logger.Error.Printf("Failed to list assignments: %v", err)
		writeError(w, http.StatusServiceUnavailable, "Service unavailable")
		return
	}
	if assignments == nil {
		assignments = []models.Assignment{}
	}

	writeJSON(w, http.StatusOK, assignments)
}

func (h *AssignmentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !hasJSONContentType(r) {
		writeError(w, http.StatusBadRequest, "Content-Type must be application/json")
		return
	}
	if hasQueryParams(r) {
		writeError(w, http.StatusBadRequest, "Unexpected query parameters")
		return
	}

	user, ok := authenticate(w, r, h.verifier)
	if !ok {
		return
	}

	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	now := time.Now().UTC()
	assignment := models.Assignment{
		ID:            uuid.NewString(),
		Name:          input.Name,
		Points:        input.Points,
		NumOfAttempts: input.NumOfAttempts,
		Deadline:      input.Deadline.UTC(),
		OwnerID:       user.ID,
		Created:       now,
		Updated:       now,
	}

	if err := h.service.Store.CreateAssignment(&assignment); err != nil {
		logger.Error.Printf("Failed to create assignment: %v", err)
		writeError(w, http.StatusServiceUnavailable, "Service unavailable")
		return
	}

	logger.Info.Printf("Created assignment %s for user %s", assignment.ID, user.ID)
	writeJSON(w, http.StatusCreated, assignment)
}

func (h *AssignmentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if hasQueryParams(r) || hasBody(r) {
		writeError(w, http.StatusBadRequest, "Unexpected query parameters or body content")
		return
	}

	if _, ok := authenticate(w, r, h.verifier); !ok {
		return
	}

	assignment, ok := h.fetchAssignment(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, assignment)
}

func (h *AssignmentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if !hasJSONContentType(r) {
		writeError(w, http.StatusBadRequest, "Content-Type must be application/json")
		return
	}
	if hasQueryParams(r) {
		writeError(w, http.StatusBadRequest, "Unexpected query parameters")
		return
	}

	user, ok := authenticate(w, r, h.verifier)
	if !ok {
		return
	}

	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	assignment, ok := h.fetchAssignment(w, r)
	if !ok {
		return
	}

	if assignment.OwnerID != user.ID {
		logger.Info.Printf("User %s denied update on assignment %s", user.ID, assignment.ID)
		writeError(w, http.StatusForbidden, "Permission denied")
		return
	}

	assignment.Name = input.Name
	assignment.Points = input.Points
	assignment.NumOfAttempts = input.NumOfAttempts
	assignment.Deadline = input.Deadline.UTC()
	assignment.Updated = time.Now().UTC()

	if err := h.service.Store.UpdateAssignment(assignment); err != nil {
		logger.Error.Printf("Failed to update assignment %s: %v", assignment.ID, err)
		writeError(w, http.StatusServiceUnavailable, "Service unavailable")
		return
	}

	logger.Info.Printf("Updated assignment %s", assignment.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AssignmentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if hasQueryParams(r) || hasBody(r) {
		writeError(w, http.StatusBadRequest, "Unexpected query parameters or body content")
		return
	}

	user, ok := authenticate(w, r, h.verifier)
	if !ok {
		return
	}

	assignment, ok := h.fetchAssignment(w, r)
	if !ok {
		return
	}

	if assignment.OwnerID != user.ID {
		logger.Info.Printf("User %s denied delete on assignment %s", user.ID, assignment.ID)
		writeError(w, http.StatusForbidden, "Permission denied")
		return
	}

	if err := h.service.Store.DeleteAssignment(assignment.ID); err != nil {
		logger.Error.Printf("Failed to delete assignment %s: %v", assignment.ID, err)
		writeError(w, http.StatusServiceUnavailable, "Service unavailable")
		return
	}

	logger.Info.Printf("Deleted assignment %s", assignment.ID)
	w.WriteHeader(http.StatusNoContent)
}

// decodeInput parses and validates an assignment payload, rejecting
// unknown fields. Reports the first violation found.
func (h *AssignmentHandler) decodeInput(w http.ResponseWriter, r *http.Request) (*models.AssignmentInput, bool) {
	var input models.AssignmentInput

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}

	if err := input.Validate(time.Now().UTC()); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	return &input, true
}

// fetchAssignment resolves the {id} path segment. Malformed ids are a
// 400, missing assignments a 404.
func (h *AssignmentHandler) fetchAssignment(w http.ResponseWriter, r *http.Request) (*models.Assignment, bool) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid assignment ID format")
		return nil, false
	}

	assignment, err := h.service.Store.GetAssignment(id)
	if err != nil {
		logger.Error.Printf("Failed to get assignment %s: %v", id, err)
		writeError(w, http.StatusServiceUnavailable, "Service unavailable")
		return nil, false
	}
	if assignment == nil {
		writeError(w, http.StatusNotFound, "Assignment not found")
		return nil, false
	}

	return assignment, true
}
