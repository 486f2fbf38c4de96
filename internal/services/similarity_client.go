package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"
)

// SimilarityClient calls the external description-matching service. Every
// failure mode (timeout, non-2xx, malformed body) surfaces as an error; the
// engine treats any error as "no score" and moves on to the next candidate.
type SimilarityClient struct {
	baseURL string
	client  *http.Client
}

type similarityRequest struct {
	LostDesc  string `json:"lost_desc"`
	FoundDesc string `json:"found_desc"`
}

type similarityResponse struct {
	SimilarityScore float64 `json:"similarity_score"`
}

func NewSimilarityClient(baseURL string, timeout time.Duration) *SimilarityClient {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &SimilarityClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *SimilarityClient) Score(ctx context.Context, lostDesc, foundDesc string) (float64, error) {
	body, err := json.Marshal(similarityRequest{LostDesc: lostDesc, FoundDesc: foundDesc})
	if err != nil {
		return 0, fmt.Errorf("similarity: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/match", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("similarity: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("similarity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("similarity: unexpected status %d", resp.StatusCode)
	}

	var out similarityResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("similarity: decode response: %w", err)
	}
	if math.IsNaN(out.SimilarityScore) || math.IsInf(out.SimilarityScore, 0) {
		return 0, fmt.Errorf("similarity: malformed score %v", out.SimilarityScore)
	}

	return out.SimilarityScore, nil
}
