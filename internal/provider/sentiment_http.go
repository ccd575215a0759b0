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

// HTTPSentimentClassifier calls a sentiment model service over JSON.
type HTTPSentimentClassifier struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSentimentClassifier constructs the adapter with a bounded call
// timeout.
func NewHTTPSentimentClassifier(baseURL string, timeout time.Duration) *HTTPSentimentClassifier {
	return &HTTPSentimentClassifier{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Label      string  `json:"label"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

// Classify posts the text and returns the label and signed polarity. Empty
// input short-circuits to neutral without a network call.
func (s *HTTPSentimentClassifier) Classify(ctx context.Context, text string) (Sentiment, error) {
	if text == "" {
		return Sentiment{Label: SentimentNeutral, Score: 0}, nil
	}

	body, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return Sentiment{}, apperrors.NewProviderUnavailable("sentiment", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/classify", bytes.NewReader(body))
	if err != nil {
		return Sentiment{}, apperrors.NewProviderUnavailable("sentiment", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Sentiment{}, apperrors.NewProviderUnavailable("sentiment", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Sentiment{}, apperrors.NewProviderUnavailable("sentiment", fmt.Errorf("status %d", resp.StatusCode))
	}

	var parsed classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Sentiment{}, apperrors.NewProviderUnavailable("sentiment", err)
	}

	label := parsed.Label
	if label == "" {
		label = LabelForScore(parsed.Score)
	}
	return Sentiment{Label: label, Score: parsed.Score, Confidence: parsed.Confidence}, nil
}
