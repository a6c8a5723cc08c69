package embedding

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ayurbot/internal/domain"
)

func newTestEmbedder(t *testing.T, handler http.HandlerFunc) *GeminiEmbedder {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	t.Setenv("TEST_GEMINI_KEY", "test-key")
	e, err := NewGeminiEmbedder("TEST_GEMINI_KEY", "text-embedding-004", srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestGeminiEmbedSuccess(t *testing.T) {
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.Write([]byte(`{"embeddings":[{"values":[0.1,0.2]},{"values":[0.3,0.4]}]}`))
	})

	vectors, err := e.Embed([]string{"Triphala", "Ashwagandha"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if vectors[0][0] != 0.1 || vectors[1][1] != 0.4 {
		t.Errorf("unexpected vector values: %v", vectors)
	}
}

func TestGeminiEmbedRateLimitedStatus(t *testing.T) {
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	})

	_, err := e.Embed([]string{"Triphala"})
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
	if !domain.IsRateLimited(err) {
		t.Error("IsRateLimited should recognize the error")
	}
}

func TestGeminiEmbedRateLimitedBody(t *testing.T) {
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"code":429,"message":"Quota exceeded for requests","status":"RESOURCE_EXHAUSTED"}}`))
	})

	_, err := e.Embed([]string{"Triphala"})
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestGeminiEmbedOtherError(t *testing.T) {
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"invalid argument","status":"INVALID_ARGUMENT"}}`))
	})

	_, err := e.Embed([]string{"Triphala"})
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, domain.ErrRateLimited) {
		t.Error("a 400 must not be classified as rate limited")
	}
}

func TestGeminiEmbedCountMismatch(t *testing.T) {
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"embeddings":[{"values":[0.1]}]}`))
	})

	if _, err := e.Embed([]string{"one", "two"}); err == nil {
		t.Error("expected error on embedding count mismatch")
	}
}

func TestMockEmbedderDeterministic(t *testing.T) {
	e := NewMockEmbedder(8)

	first, err := e.Embed([]string{"Triphala"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Embed([]string{"Triphala"})
	if err != nil {
		t.Fatal(err)
	}

	for i := range first[0] {
		if first[0][i] != second[0][i] {
			t.Fatalf("mock embedding not deterministic at %d", i)
		}
	}
	if e.Dimension() != 8 {
		t.Errorf("expected dimension 8, got %d", e.Dimension())
	}
}
