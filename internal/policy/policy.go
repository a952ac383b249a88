// Package policy provides user-defined hard spending constraints.
//
// Policies are absolute: a violated policy blocks the transaction before any
// statistical risk scoring runs, and a policy-blocked transaction never feeds
// the behavioral baseline. Policies are loaded fresh before every assessment
// so a save is effective immediately.
package policy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Errors
var (
	ErrNotFound = errors.New("policy: not found")
)

// TimeRange restricts transactions to a daily window. Overnight ranges where
// Start > End (e.g. 22:00-06:00) wrap past midnight.
type TimeRange struct {
	Start string `json:"start"` // "HH:MM"
	End   string `json:"end"`   // "HH:MM"
}

// Policy is the set of hard constraints a user has configured.
// Nil/empty fields mean the corresponding check is not enforced.
type Policy struct {
	UserID                string     `json:"userId"`
	MaxAmount             *float64   `json:"maxAmount,omitempty"`
	AllowedLocations      []string   `json:"allowedLocations,omitempty"`
	BlockUnknownLocations bool       `json:"blockUnknownLocations"`
	AllowedTimeRange      *TimeRange `json:"allowedTimeRange,omitempty"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

// Validate checks that the policy is internally consistent.
func (p *Policy) Validate() error {
	if p.MaxAmount != nil && *p.MaxAmount <= 0 {
		return fmt.Errorf("policy: maxAmount must be positive, got %v", *p.MaxAmount)
	}
	for i, loc := range p.AllowedLocations {
		if strings.TrimSpace(loc) == "" {
			return fmt.Errorf("policy: allowedLocations[%d] is empty", i)
		}
	}
	if p.AllowedTimeRange != nil {
		if _, err := parseClock(p.AllowedTimeRange.Start); err != nil {
			return fmt.Errorf("policy: invalid time range start: %w", err)
		}
		if _, err := parseClock(p.AllowedTimeRange.End); err != nil {
			return fmt.Errorf("policy: invalid time range end: %w", err)
		}
	}
	return nil
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("hour out of range in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("minute out of range in %q", s)
	}
	return h*60 + m, nil
}
