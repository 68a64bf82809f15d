package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/jjaoguedes/facegate/internal/access"
	"github.com/jjaoguedes/facegate/internal/database"
)

// maxUploadSize caps probe and enrollment photo uploads (10 MB).
const maxUploadSize = 10 << 20

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondRecognitionError maps the recognition error taxonomy to HTTP
// statuses. Storage details stay in the logs; the client gets the generic
// message.
func respondRecognitionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, access.ErrLockout):
		respondError(w, http.StatusTooManyRequests, access.ErrLockout.Error())
	case errors.Is(err, access.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, access.ErrNoFaceDetected):
		respondError(w, http.StatusUnprocessableEntity, access.ErrNoFaceDetected.Error())
	case errors.Is(err, access.ErrNoMatch):
		respondError(w, http.StatusNotFound, access.ErrNoMatch.Error())
	case errors.Is(err, access.ErrStorage):
		respondError(w, http.StatusInternalServerError, access.ErrStorage.Error())
	case errors.Is(err, database.ErrDuplicateIdentity):
		respondError(w, http.StatusConflict, "identity already enrolled")
	default:
		respondError(w, http.StatusBadGateway, "embedding extraction failed")
	}
}

// sourceKey identifies the request source for lockout accounting. RealIP
// middleware already resolved proxy headers into RemoteAddr.
func sourceKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// HealthHandler reports service health backed by a storage ping.
type HealthHandler struct {
	store database.Store
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(store database.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// Check handles the health check endpoint: storage must answer a ping, and
// the response carries the enrolled identity count.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "storage unreachable")
		return
	}
	count, err := h.store.Identities().Count(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "storage unreachable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"identities": count,
	})
}
