package classify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pveilleux/claimsift/internal/model"
)

// CLIPScorer implements the Scorer interface against a CLIP sidecar
// service exposing cosine similarities between an image embedding and a
// batch of text prompt embeddings.
type CLIPScorer struct {
	baseURL    string
	httpClient *http.Client
}

// CLIP sidecar API structures
type clipRequest struct {
	Image  string   `json:"image"` // base64-encoded image bytes
	Labels []string `json:"labels"`
}

type clipResponse struct {
	Scores []float64 `json:"scores"`
	Model  string    `json:"model,omitempty"`
}

type clipError struct {
	Error string `json:"error"`
}

// NewCLIPScorer creates a new CLIP sidecar client
func NewCLIPScorer(cfg model.ClassifierConfig) *CLIPScorer {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8765"
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &CLIPScorer{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the scorer name
func (s *CLIPScorer) Name() string {
	return "clip"
}

// IsAvailable checks if the sidecar is reachable
func (s *CLIPScorer) IsAvailable(ctx context.Context) bool {
	url := fmt.Sprintf("%s/healthz", s.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CLIP availability check failed (request creation): %v\n", err)
		return false
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CLIP availability check failed (connection to %s): %v\n", s.baseURL, err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "CLIP availability check failed (HTTP %d from %s)\n", resp.StatusCode, s.baseURL)
		return false
	}

	return true
}

// Score returns raw similarities of the image against each prompt
func (s *CLIPScorer) Score(ctx context.Context, image []byte, prompts []string) ([]float64, error) {
	apiReq := clipRequest{
		Image:  base64.StdEncoding.EncodeToString(image),
		Labels: prompts,
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/score", s.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr clipError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("API error (%d): %s", httpResp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("API error (%d): %s", httpResp.StatusCode, string(respBody))
	}

	var resp clipResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if len(resp.Scores) != len(prompts) {
		return nil, fmt.Errorf("scorer returned %d scores for %d prompts", len(resp.Scores), len(prompts))
	}

	return resp.Scores, nil
}
