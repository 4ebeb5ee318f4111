package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lussekatt/internal/auth"
	"github.com/shrimpsizemoose/lussekatt/internal/metrics"
	"github.com/shrimpsizemoose/lussekatt/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// hasJSONContentType reports whether the request declares a JSON body.
func hasJSONContentType(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}

func hasQueryParams(r *http.Request) bool {
	return len(r.URL.Query()) > 0
}

func hasBody(r *http.Request) bool {
	return r.ContentLength > 0
}

// authenticate runs the credential verifier and converts failures to
// HTTP responses: infrastructure faults become 503, every credential
// problem becomes the same generic 401.
func authenticate(w http.ResponseWriter, r *http.Request, verifier *auth.Verifier) (*models.User, bool) {
	user, _, err := verifier.Verify(r.Header.Get("Authorization"))
	if err == nil {
		return user, true
	}

	if errors.Is(err, auth.ErrUnavailable) {
		logger.Error.Printf("Auth lookup failed: %v", err)
		writeError(w, http.StatusServiceUnavailable, "Service unavailable")
		return nil, false
	}

	logger.Info.Printf("Authentication failed: %v", err)
	writeError(w, http.StatusUnauthorized, "Unauthorized")
	return nil, false
}

// Instrument wraps a handler with the request counter and duration
// histogram.
func Instrument(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		metrics.APICallsTotal.WithLabelValues(r.Method, r.URL.Path).Inc()
		metrics.APIRequestDuration.WithLabelValues(
			r.URL.Path,
			r.Method,
			strconv.Itoa(rec.status),
		).Observe(time.Since(start).Seconds())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
