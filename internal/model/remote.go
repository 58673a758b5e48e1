package model

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/Skufu/StrokeGuard/internal/features"
)

// Remote calls an external inference service that hosts the classifier.
type Remote struct {
	baseURL    string
	httpClient *http.Client
}

type inferRequest struct {
	Instances []features.FeatureVector `json:"instances"`
}

type inferResponse struct {
	Predictions   []int        `json:"predictions"`
	Probabilities [][2]float64 `json:"probabilities"`
	Error         string       `json:"error,omitempty"`
}

func NewRemote(baseURL string, timeout time.Duration) *Remote {
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (r *Remote) Predict(ctx context.Context, v features.FeatureVector) (int, error) {
	class, _, err := r.Score(ctx, v)
	return class, err
}

func (r *Remote) PredictProba(ctx context.Context, v features.FeatureVector) ([2]float64, error) {
	_, proba, err := r.Score(ctx, v)
	return proba, err
}

// Score returns the class and probability row of one inference call.
func (r *Remote) Score(ctx context.Context, v features.FeatureVector) (int, [2]float64, error) {
	resp, err := r.infer(ctx, v)
	if err != nil {
		return 0, [2]float64{}, err
	}
	if len(resp.Predictions) != 1 {
		return 0, [2]float64{}, fmt.Errorf("model service returned %d predictions for 1 instance", len(resp.Predictions))
	}
	if len(resp.Probabilities) != 1 {
		return 0, [2]float64{}, fmt.Errorf("model service returned %d probability rows for 1 instance", len(resp.Probabilities))
	}
	proba := resp.Probabilities[0]
	for _, p := range proba {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return 0, [2]float64{}, fmt.Errorf("model service returned probability row %v", proba)
		}
	}
	return resp.Predictions[0], proba, nil
}

// Ready checks the inference service health endpoint.
func (r *Remote) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("model service health: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model service health returned %d", resp.StatusCode)
	}
	return nil
}

func (r *Remote) infer(ctx context.Context, v features.FeatureVector) (*inferResponse, error) {
	body, err := json.Marshal(inferRequest{Instances: []features.FeatureVector{v}})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call model service: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var out inferResponse
	if resp.StatusCode != http.StatusOK {
		// The service reports unknown categories and missing columns as 4xx.
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity {
			_ = json.Unmarshal(payload, &out)
			return nil, fmt.Errorf("%w: %s", ErrSchemaMismatch, strings.TrimSpace(firstNonEmpty(out.Error, string(payload))))
		}
		return nil, fmt.Errorf("model service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
