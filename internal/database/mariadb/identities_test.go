package mariadb

import "testing"

func TestEmbeddingBlobRoundTrip(t *testing.T) {
	embedding := make([]float32, 128)
	for i := range embedding {
		embedding[i] = float32(i)*0.25 - 16
	}

	blob, err := encodeEmbedding(embedding)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(blob) != 128*4 {
		t.Fatalf("expected 512-byte blob, got %d", len(blob))
	}

	decoded, err := decodeEmbedding(blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i := range embedding {
		if decoded[i] != embedding[i] {
			t.Fatalf("mismatch at %d: %v != %v", i, decoded[i], embedding[i])
		}
	}
}

func TestDecodeEmbedding_TruncatedBlob(t *testing.T) {
	if _, err := decodeEmbedding(make([]byte, 7)); err == nil {
		t.Error("expected error for blob not a multiple of 4 bytes")
	}
}
