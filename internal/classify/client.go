// Package classify talks to the external item-classification service and
// seeds the category lookup tables it predicts against.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sharelist/sharelist/internal/service"
)

// Non-answers the prediction endpoint uses instead of omitting fields.
var nonPredictions = map[string]struct{}{
	"":             {},
	"Unknown":      {},
	"N/A":          {},
	"No Sub-Model": {},
}

// Client calls the classification service's predict endpoint.
type Client struct {
	httpClient *http.Client
	url        string
	logger     *logrus.Logger
}

// NewClient creates a classification client for the given predict URL.
func NewClient(url string, logger *logrus.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		url:        url,
		logger:     logger,
	}
}

type predictRequest struct {
	ProductName string `json:"product_name"`
}

type predictResponse struct {
	InputProductName   string `json:"input_product_name"`
	CleanedProductName string `json:"cleaned_product_name"`
	PredictedPrimary   string `json:"predicted_primary_category"`
	PredictedSub       string `json:"predicted_sub_category"`
}

// Classify implements service.Classifier. Non-answers from the model
// ("Unknown", "N/A", "No Sub-Model") come back as empty fields.
func (c *Client) Classify(ctx context.Context, productName string) (*service.Classification, error) {
	body, err := json.Marshal(predictRequest{ProductName: productName})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classification service returned status %d", resp.StatusCode)
	}

	var pr predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("failed to decode predict response: %w", err)
	}

	result := &service.Classification{}
	if _, skip := nonPredictions[pr.PredictedPrimary]; !skip {
		result.PrimaryCategory = pr.PredictedPrimary
	}
	if _, skip := nonPredictions[pr.PredictedSub]; !skip && result.PrimaryCategory != "" {
		result.SubCategory = pr.PredictedSub
	}
	return result, nil
}
