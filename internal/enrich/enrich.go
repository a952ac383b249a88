// Package enrich calls an optional external scoring service to attach
// supplementary fraud signals to a finished assessment. Enrichment is
// advisory and best-effort: failures never change a decision.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mbd888/fraudguard/internal/circuitbreaker"
)

const (
	defaultTimeout   = 2 * time.Second
	breakerThreshold = 5
	breakerOpenFor   = 30 * time.Second
)

// ErrCircuitOpen is returned when recent failures have tripped the breaker
// and the scorer is not being called.
var ErrCircuitOpen = errors.New("enrich: circuit open")

// Features is the payload sent to the external scorer.
type Features struct {
	UserID   string  `json:"userId"`
	Amount   float64 `json:"amount"`
	Location string  `json:"location,omitempty"`
	Hour     int     `json:"hour"`
	ZScore   float64 `json:"zScore"`
}

// Signal is the scorer's advisory verdict.
type Signal struct {
	RiskScore float64  `json:"riskScore"`
	Reasons   []string `json:"reasons,omitempty"`
}

// Client talks to the external scoring service. A circuit breaker stops it
// from dialing a scorer that keeps failing.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *circuitbreaker.Breaker
}

// NewClient creates an enrichment client. An empty baseURL disables
// enrichment; callers should check Enabled before dialing.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		breaker: circuitbreaker.New("enrichment", breakerThreshold, breakerOpenFor),
	}
}

// Enabled reports whether an enrichment endpoint is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// Assess posts the features and returns the scorer's signal.
func (c *Client) Assess(ctx context.Context, f Features) (*Signal, error) {
	if !c.breaker.Allow() {
		return nil, ErrCircuitOpen
	}
	sig, err := c.assess(ctx, f)
	if err != nil {
		c.breaker.RecordFailure()
		return nil, err
	}
	c.breaker.RecordSuccess()
	return sig, nil
}

func (c *Client) assess(ctx context.Context, f Features) (*Signal, error) {
	body, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to encode features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/score", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("enrichment request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("enrichment service returned %d", resp.StatusCode)
	}

	var sig Signal
	if err := json.NewDecoder(resp.Body).Decode(&sig); err != nil {
		return nil, fmt.Errorf("failed to decode signal: %w", err)
	}
	return &sig, nil
}
