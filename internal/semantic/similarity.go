// Package semantic scores how much meaning survives transmission by
// comparing sentence embeddings of the original and reconstructed text.
package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Embedder turns text into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Scorer computes cosine similarity over an embedding model.
type Scorer struct {
	embedder Embedder
}

// NewScorer creates a scorer over the given embedder.
func NewScorer(e Embedder) *Scorer {
	return &Scorer{embedder: e}
}

// Similarity returns the cosine similarity of the two texts' embeddings,
// 1 for identical meaning down to -1 for opposed vectors.
func (s *Scorer) Similarity(ctx context.Context, a, b string) (float64, error) {
	va, err := s.embedder.Embed(ctx, a)
	if err != nil {
		return 0, fmt.Errorf("embed first text: %w", err)
	}
	vb, err := s.embedder.Embed(ctx, b)
	if err != nil {
		return 0, fmt.Errorf("embed second text: %w", err)
	}
	return Cosine(va, vb)
}

// Cosine computes the cosine similarity of two equal-length vectors.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector lengths differ: %d != %d", len(a), len(b))
	}
	na := math.Sqrt(floats.Dot(a, a))
	nb := math.Sqrt(floats.Dot(b, b))
	if na == 0 || nb == 0 {
		return 0, fmt.Errorf("zero-magnitude embedding")
	}
	return floats.Dot(a, b) / (na * nb), nil
}

// HTTPEmbedder fetches embeddings from a sentence-embedding service that
// accepts {"text": ...} and answers {"embedding": [...]}.
type HTTPEmbedder struct {
	URL        string
	HTTPClient *http.Client
}

// NewHTTPEmbedder creates an embedder client for the given endpoint.
func NewHTTPEmbedder(url string) *HTTPEmbedder {
	return &HTTPEmbedder{
		URL:        url,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Embed requests the embedding vector for text.
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := e.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding")
	}
	return out.Embedding, nil
}
