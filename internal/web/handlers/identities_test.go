package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEnrollAndList(t *testing.T) {
	ext := &stubExtractor{embeddings: [][]float32{vec(0)}}
	service, store := newTestService(t, ext)
	handler := NewIdentitiesHandler(service, store.Identities())

	req := multipartRequest(t, "/identities", map[string]string{"name": "João Silva"}, testImage(t))
	rec := httptest.NewRecorder()
	handler.Enroll(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created identityResponse
	decodeJSON(t, rec, &created)
	if created.Name != "Joao Silva" {
		t.Errorf("expected canonical name, got %q", created.Name)
	}

	rec = httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/identities", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var listed []identityResponse
	decodeJSON(t, rec, &listed)
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Errorf("unexpected listing: %+v", listed)
	}
}

func TestEnrollDuplicate(t *testing.T) {
	ext := &stubExtractor{embeddings: [][]float32{vec(0)}}
	service, store := newTestService(t, ext)
	handler := NewIdentitiesHandler(service, store.Identities())

	rec := httptest.NewRecorder()
	handler.Enroll(rec, multipartRequest(t, "/identities", map[string]string{"name": "Ana"}, testImage(t)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Enroll(rec, multipartRequest(t, "/identities", map[string]string{"name": "Ana"}, testImage(t)))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestEnrollValidation(t *testing.T) {
	ext := &stubExtractor{embeddings: [][]float32{vec(0)}}
	service, store := newTestService(t, ext)
	handler := NewIdentitiesHandler(service, store.Identities())

	// Missing name.
	rec := httptest.NewRecorder()
	handler.Enroll(rec, multipartRequest(t, "/identities", nil, testImage(t)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing name: expected 400, got %d", rec.Code)
	}

	// Missing file.
	rec = httptest.NewRecorder()
	handler.Enroll(rec, multipartRequest(t, "/identities", map[string]string{"name": "Ana"}, nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing file: expected 400, got %d", rec.Code)
	}

	// No face in the photo.
	service, store = newTestService(t, &stubExtractor{embeddings: [][]float32{}})
	handler = NewIdentitiesHandler(service, store.Identities())
	rec = httptest.NewRecorder()
	handler.Enroll(rec, multipartRequest(t, "/identities", map[string]string{"name": "Ana"}, testImage(t)))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("no face: expected 422, got %d", rec.Code)
	}
}

func TestReloadSnapshot(t *testing.T) {
	ext := &stubExtractor{embeddings: [][]float32{vec(0.1)}}
	service, store := newTestService(t, ext)
	handler := NewIdentitiesHandler(service, store.Identities())
	faceHandler := NewFaceHandler(service)

	// Identity inserted behind the service's back is invisible until reload.
	if _, err := store.Identities().Insert(context.Background(), "Ana", vec(0)); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	faceHandler.Recognize(rec, probeRequest(t, "10.0.0.9", testImage(t)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before reload, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Reload(rec, httptest.NewRequest(http.MethodPost, "/identities/reload", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("reload failed: %d", rec.Code)
	}
	var resp map[string]int
	decodeJSON(t, rec, &resp)
	if resp["identities"] != 1 {
		t.Errorf("expected 1 identity loaded, got %d", resp["identities"])
	}

	rec = httptest.NewRecorder()
	faceHandler.Recognize(rec, probeRequest(t, "10.0.0.10", testImage(t)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after reload, got %d: %s", rec.Code, rec.Body.String())
	}
}
