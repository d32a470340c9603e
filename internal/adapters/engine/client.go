// Package engine provides an adapter for the facial-expression analysis
// engine. The engine is an external HTTP service that accepts an image and
// returns a probability distribution over the five emotion channels.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/moodfuse-labs/moodfuse/internal/core/domain"
)

const defaultBaseURL = "http://127.0.0.1:5001"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type analyzeResponse struct {
	Data struct {
		Label string    `json:"label"`
		Score float64   `json:"score"`
		Probs []float64 `json:"probs"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func NewClient(baseURL string) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Classify sends the image as a multipart upload and decodes the engine's
// distribution. Errors carry no partial result.
func (c *Client) Classify(ctx context.Context, image []byte) (domain.Classification, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "frame.jpg")
	if err != nil {
		return domain.Classification{}, fmt.Errorf("engine: build form: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return domain.Classification{}, fmt.Errorf("engine: write image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return domain.Classification{}, fmt.Errorf("engine: close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", &body)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("engine: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("engine: request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.Classification{}, fmt.Errorf("engine: decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if parsed.Error.Message != "" {
			return domain.Classification{}, fmt.Errorf("engine: %s", parsed.Error.Message)
		}
		return domain.Classification{}, fmt.Errorf("engine: unexpected status %d", resp.StatusCode)
	}

	probs, err := domain.NewEmotionVector(parsed.Data.Probs)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("engine: malformed distribution: %w", err)
	}

	return domain.Classification{
		Label: parsed.Data.Label,
		Score: parsed.Data.Score,
		Probs: probs,
	}, nil
}

// Healthy reports whether the engine answers its health check with a ready
// status.
func (c *Client) Healthy(ctx context.Context) bool {
	reqCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}
	var parsed healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false
	}
	return parsed.Status == "ready"
}
