package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/jjaoguedes/facegate/internal/access"
)

// FaceHandler handles the recognition endpoint.
type FaceHandler struct {
	service *access.Service
}

// NewFaceHandler creates a new face recognition handler.
func NewFaceHandler(service *access.Service) *FaceHandler {
	return &FaceHandler{service: service}
}

type faceResponse struct {
	Status          string   `json:"status"`
	SubjectID       int64    `json:"subject_id"`
	Name            string   `json:"name"`
	FacesDetected   int      `json:"faces_detected"`
	DurationSeconds *float64 `json:"duration_seconds,omitempty"`
}

// Recognize handles POST /face: the probe image arrives either as a
// multipart "file" field or as the raw request body.
func (h *FaceHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	image, err := readImage(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read image")
		return
	}
	if len(image) == 0 {
		respondError(w, http.StatusBadRequest, "empty image")
		return
	}

	outcome, err := h.service.Recognize(r.Context(), sourceKey(r), image)
	if err != nil {
		respondRecognitionError(w, err)
		return
	}

	resp := faceResponse{
		Status:        outcome.Status,
		SubjectID:     outcome.SubjectID,
		Name:          outcome.Name,
		FacesDetected: outcome.FacesDetected,
	}
	if outcome.Status == access.StatusExit {
		seconds := outcome.Duration.Seconds()
		resp.DurationSeconds = &seconds
	}
	respondJSON(w, http.StatusOK, resp)
}

// readImage extracts probe bytes from a multipart form or the raw body.
func readImage(r *http.Request) ([]byte, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			return nil, err
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(file)
	}
	return io.ReadAll(http.MaxBytesReader(nil, r.Body, maxUploadSize))
}
