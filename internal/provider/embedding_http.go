package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/spec-kit/supportiq/pkg/util"
)

// HTTPEmbedder calls an embedding model service over JSON.
type HTTPEmbedder struct {
	baseURL   string
	dimension int
	client    *http.Client
}

// NewHTTPEmbedder constructs the adapter with a bounded call timeout.
func NewHTTPEmbedder(baseURL string, dimension int, timeout time.Duration) *HTTPEmbedder {
	return &HTTPEmbedder{
		baseURL:   baseURL,
		dimension: dimension,
		client:    &http.Client{Timeout: timeout},
	}
}

// Dimension returns the configured vector length.
func (e *HTTPEmbedder) Dimension() int {
	return e.dimension
}

type embedRequest struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed posts the text and validates the returned vector's dimension. A
// mismatch is a hard configuration error, not a provider outage.
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Text: text})
	if err != nil {
		return nil, apperrors.NewProviderUnavailable("embedding", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewProviderUnavailable("embedding", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, apperrors.NewProviderUnavailable("embedding", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewProviderUnavailable("embedding", fmt.Errorf("status %d", resp.StatusCode))
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewProviderUnavailable("embedding", err)
	}
	if len(parsed.Embedding) != e.dimension {
		return nil, apperrors.NewConfigurationError("embedding dimension mismatch", map[string]any{
			"expected": e.dimension,
			"got":      len(parsed.Embedding),
		})
	}
	return parsed.Embedding, nil
}
