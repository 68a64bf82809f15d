package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/jjaoguedes/facegate/internal/access"
	"github.com/jjaoguedes/facegate/internal/database"
)

// IdentitiesHandler handles enrollment and snapshot management.
type IdentitiesHandler struct {
	service    *access.Service
	identities database.IdentityStore
}

// NewIdentitiesHandler creates a new identities handler.
func NewIdentitiesHandler(service *access.Service, identities database.IdentityStore) *IdentitiesHandler {
	return &IdentitiesHandler{service: service, identities: identities}
}

type identityResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// List handles GET /identities. Embeddings are never exposed.
func (h *IdentitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	identities, err := h.identities.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not list identities")
		return
	}

	out := make([]identityResponse, 0, len(identities))
	for _, identity := range identities {
		out = append(out, identityResponse{
			ID:        identity.ID,
			Name:      identity.Name,
			CreatedAt: identity.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// Enroll handles POST /identities: multipart form with a "name" field and a
// reference photo in "file".
func (h *IdentitiesHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	name := r.FormValue("name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "photo file is required")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read photo")
		return
	}

	identity, err := h.service.Enroll(r.Context(), name, image)
	if err != nil {
		respondRecognitionError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, identityResponse{
		ID:        identity.ID,
		Name:      identity.Name,
		CreatedAt: identity.CreatedAt,
	})
}

// Reload handles POST /identities/reload: re-reads the enrolled identities
// and atomically publishes the fresh matching snapshot.
func (h *IdentitiesHandler) Reload(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.ReloadSnapshot(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not reload snapshot")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"identities": count})
}
