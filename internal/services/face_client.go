package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// FaceClient calls the external face-verification service with two base64
// images and the detector configuration the service expects.
type FaceClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type faceVerifyRequest struct {
	Img1             string `json:"img1"`
	Img2             string `json:"img2"`
	DetectorBackend  string `json:"detector_backend"`
	ModelName        string `json:"model_name"`
	DistanceMetric   string `json:"distance_metric"`
	EnforceDetection bool   `json:"enforce_detection"`
	Align            bool   `json:"align"`
}

type faceVerifyResponse struct {
	Verified bool    `json:"verified"`
	Distance float64 `json:"distance"`
}

func NewFaceClient(baseURL, apiKey string, timeout time.Duration) *FaceClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &FaceClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *FaceClient) Verify(ctx context.Context, img1, img2 string) (bool, float64, error) {
	body, err := json.Marshal(faceVerifyRequest{
		Img1:             img1,
		Img2:             img2,
		DetectorBackend:  "opencv",
		ModelName:        "VGG-Face",
		DistanceMetric:   "cosine",
		EnforceDetection: true,
		Align:            true,
	})
	if err != nil {
		return false, 0, fmt.Errorf("face: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/verify", bytes.NewReader(body))
	if err != nil {
		return false, 0, fmt.Errorf("face: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, 0, fmt.Errorf("face: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, 0, fmt.Errorf("face: unexpected status %d", resp.StatusCode)
	}

	var out faceVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, 0, fmt.Errorf("face: decode response: %w", err)
	}

	return out.Verified, out.Distance, nil
}
