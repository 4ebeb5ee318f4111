package handlers

import (
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lussekatt/internal/store"
)

type HealthHandler struct {
	store store.Store
}

func NewHealthHandler(s store.Store) *HealthHandler {
	return &HealthHandler{store: s}
}

// HandleHealthz reports store reachability. No auth, no payload, no
// response body.
func (h *HealthHandler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")

	if hasQueryParams(r) || hasBody(r) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.store.Ping(r.Context()); err != nil {
		logger.Error.Printf("Healthz store ping failed: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}
