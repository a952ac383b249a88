package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Config holds the configuration for connecting to the FraudGuard API.
type Config struct {
	APIURL string // Base URL, e.g. "http://localhost:8080"
	APIKey string // API key, empty if the deployment runs without auth
}

// APIClient is a pure HTTP client for the FraudGuard API.
type APIClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewAPIClient creates a new client for the FraudGuard API.
func NewAPIClient(cfg Config) *APIClient {
	return &APIClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiError represents an error response from the API.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// doRequest makes an HTTP request to the API and returns the response body.
func (c *APIClient) doRequest(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	u, err := url.Parse(c.cfg.APIURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	return json.RawMessage(respBody), nil
}

// Assess submits a transaction for a full policy and risk assessment.
func (c *APIClient) Assess(ctx context.Context, userID string, amount float64, location, at string) (json.RawMessage, error) {
	body := map[string]any{
		"userId": userID,
		"amount": amount,
	}
	if location != "" {
		body["location"] = location
	}
	if at != "" {
		body["at"] = at
	}
	return c.doRequest(ctx, http.MethodPost, "/v1/assess", nil, body)
}

// CheckPolicy runs the hard-block policy check in isolation, without risk scoring.
func (c *APIClient) CheckPolicy(ctx context.Context, userID string, amount float64, location, at string) (json.RawMessage, error) {
	body := map[string]any{
		"userId": userID,
		"amount": amount,
	}
	if location != "" {
		body["location"] = location
	}
	if at != "" {
		body["at"] = at
	}
	return c.doRequest(ctx, http.MethodPost, "/v1/policies/check", nil, body)
}

// GetPolicy returns the user's configured spending policy.
func (c *APIClient) GetPolicy(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(userID)+"/policy", nil, nil)
}

// GetProfile returns the user's behavioral profile summary.
func (c *APIClient) GetProfile(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(userID)+"/profile", nil, nil)
}

// ListTransactions returns the user's recent transaction records, newest first.
func (c *APIClient) ListTransactions(ctx context.Context, userID string, limit int) (json.RawMessage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.doRequest(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(userID)+"/transactions", q, nil)
}
