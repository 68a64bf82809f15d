package handlers

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jjaoguedes/facegate/internal/access"
	"github.com/jjaoguedes/facegate/internal/actuator"
	"github.com/jjaoguedes/facegate/internal/config"
	"github.com/jjaoguedes/facegate/internal/database/mock"
)

const testDim = 128

// stubExtractor returns canned embeddings for every probe.
type stubExtractor struct {
	embeddings [][]float32
	err        error
}

func (s *stubExtractor) Extract(ctx context.Context, image []byte) ([][]float32, error) {
	return s.embeddings, s.err
}

// testConfig creates a minimal config for handler tests. MinDwell is zero so
// consecutive probes toggle entry/exit without waiting.
func testConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{OpTimeout: time.Second},
		Recognition: config.RecognitionConfig{
			Threshold:    0.6,
			EmbeddingDim: testDim,
		},
		Lockout: config.LockoutConfig{
			FailureThreshold: 5,
			Window:           5 * time.Minute,
		},
	}
}

func newTestService(t *testing.T, ext *stubExtractor) (*access.Service, *mock.Store) {
	t.Helper()
	store := mock.NewStore()
	service := access.NewService(store, ext, actuator.Noop{}, testConfig())
	return service, store
}

// vec builds a 128-dim vector at Euclidean distance d from the zero vector.
func vec(d float32) []float32 {
	v := make([]float32, testDim)
	v[0] = d
	return v
}

// testImage returns a small valid PNG.
func testImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(2, 2, color.RGBA{G: 150, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("could not encode test image: %v", err)
	}
	return buf.Bytes()
}

// enroll inserts an identity and refreshes the matching snapshot.
func enroll(t *testing.T, service *access.Service, store *mock.Store, name string, embedding []float32) int64 {
	t.Helper()
	identity, err := store.Identities().Insert(context.Background(), name, embedding)
	if err != nil {
		t.Fatalf("could not enroll %s: %v", name, err)
	}
	if _, err := service.ReloadSnapshot(context.Background()); err != nil {
		t.Fatalf("could not reload snapshot: %v", err)
	}
	return identity.ID
}

// probeRequest builds a POST /face request with the probe as the raw body.
func probeRequest(t *testing.T, source string, body []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/face", bytes.NewReader(body))
	req.RemoteAddr = source + ":51234"
	return req
}

// multipartRequest builds a multipart request with optional form fields and
// a file part.
func multipartRequest(t *testing.T, path string, fields map[string]string, file []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("could not write field %s: %v", key, err)
		}
	}
	if file != nil {
		part, err := writer.CreateFormFile("file", "photo.png")
		if err != nil {
			t.Fatalf("could not create file part: %v", err)
		}
		if _, err := part.Write(file); err != nil {
			t.Fatalf("could not write file part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("could not close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
