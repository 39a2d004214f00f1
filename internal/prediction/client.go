package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"olea/internal/features"
	"olea/internal/prediction/models"
	dErrors "olea/pkg/domain-errors"
)

// scoreResponse is the scoring service's wire shape.
type scoreResponse struct {
	ModelVersion  string             `json:"model_version"`
	Bundle        string             `json:"purchased_coverage_bundle"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities,omitempty"`
}

// ScoringClient calls the external scoring model over HTTP.
type ScoringClient struct {
	baseURL string
	client  *http.Client
}

func NewScoringClient(baseURL string) *ScoringClient {
	return &ScoringClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Score posts the feature vector and returns the model's recommendation.
// Upstream failures surface as unavailable errors carrying status and body.
func (c *ScoringClient) Score(ctx context.Context, vec features.Vector) (models.Result, string, error) {
	var resp scoreResponse
	if err := c.post(ctx, "/score", vec, &resp); err != nil {
		return models.Result{}, "", err
	}
	return models.Result{
		Bundle:        resp.Bundle,
		Confidence:    resp.Confidence,
		Probabilities: resp.Probabilities,
	}, resp.ModelVersion, nil
}

// ExplanationClient calls the external explanation generator over HTTP.
type ExplanationClient struct {
	baseURL string
	client  *http.Client
}

func NewExplanationClient(baseURL string) *ExplanationClient {
	return &ExplanationClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type explainRequest struct {
	Features features.Vector `json:"features"`
	Bundle   string          `json:"purchased_coverage_bundle"`
}

// Explain asks for the interpretability payload behind a recommendation.
func (c *ExplanationClient) Explain(ctx context.Context, vec features.Vector, result models.Result) (*models.Explanation, error) {
	var expl models.Explanation
	req := explainRequest{Features: vec, Bundle: result.Bundle}
	if err := postJSON(ctx, c.client, c.baseURL+"/explain", req, &expl); err != nil {
		return nil, err
	}
	return &expl, nil
}

func (c *ScoringClient) post(ctx context.Context, path string, in, out any) error {
	return postJSON(ctx, c.client, c.baseURL+path, in, out)
}

func postJSON(ctx context.Context, client *http.Client, url string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "call upstream")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return dErrors.Newf(dErrors.CodeUnavailable,
			"upstream returned %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "decode upstream response")
	}
	return nil
}
