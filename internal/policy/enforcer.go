package policy

import (
	"fmt"
	"strings"
	"time"
)

// Status tracks the enforcement state machine:
// NOT_EVALUATED → EVALUATING → {ALLOWED, BLOCKED}.
type Status string

const (
	StatusNotEvaluated Status = "NOT_EVALUATED"
	StatusEvaluating   Status = "EVALUATING"
	StatusAllowed      Status = "ALLOWED"
	StatusBlocked      Status = "BLOCKED"
)

// Violation records one failed constraint.
type Violation struct {
	Policy   string `json:"policyName"`
	Reason   string `json:"reason"`
	Observed string `json:"observedValue"`
	Limit    string `json:"limit"`
}

// Result is the outcome of enforcing a policy against one transaction.
// allowed=false is terminal: the transaction is never risk-scored and never
// recorded into history.
type Result struct {
	Status      Status      `json:"status"`
	Allowed     bool        `json:"allowed"`
	Violations  []Violation `json:"violations,omitempty"`
	EvaluatedAt time.Time   `json:"evaluatedAt"`
}

// CheckInput is the slice of a transaction the enforcer reads.
type CheckInput struct {
	Amount   float64
	Location string
	At       time.Time
}

// Enforce evaluates every configured constraint in fixed order (amount
// ceiling, location allow-list, time window). All violations are collected,
// not just the first; any violation blocks. A nil policy is vacuously
// allowed.
func Enforce(pol *Policy, in CheckInput) *Result {
	res := &Result{
		Status:      StatusEvaluating,
		EvaluatedAt: time.Now(),
	}

	if pol == nil {
		res.Status = StatusAllowed
		res.Allowed = true
		return res
	}

	if pol.MaxAmount != nil && in.Amount > *pol.MaxAmount {
		res.Violations = append(res.Violations, Violation{
			Policy:   "max_amount",
			Reason:   "amount exceeds the configured ceiling",
			Observed: fmt.Sprintf("%.2f", in.Amount),
			Limit:    fmt.Sprintf("%.2f", *pol.MaxAmount),
		})
	}

	// Location allow-list is only enforced when locations are configured
	// AND unknown locations are explicitly blocked.
	if len(pol.AllowedLocations) > 0 && pol.BlockUnknownLocations {
		if !fuzzyMatchAny(in.Location, pol.AllowedLocations) {
			res.Violations = append(res.Violations, Violation{
				Policy:   "allowed_locations",
				Reason:   "location not in the allow-list",
				Observed: in.Location,
				Limit:    strings.Join(pol.AllowedLocations, ", "),
			})
		}
	}

	if pol.AllowedTimeRange != nil {
		if v, ok := checkTimeWindow(pol.AllowedTimeRange, in.At); !ok {
			res.Violations = append(res.Violations, v)
		}
	}

	res.Allowed = len(res.Violations) == 0
	if res.Allowed {
		res.Status = StatusAllowed
	} else {
		res.Status = StatusBlocked
	}
	return res
}

// checkTimeWindow compares minutes-since-midnight against the window.
// Overnight windows (start > end) pass when current >= start OR
// current <= end; normal windows require both bounds. Bounds inclusive.
func checkTimeWindow(tr *TimeRange, at time.Time) (Violation, bool) {
	start, errStart := parseClock(tr.Start)
	end, errEnd := parseClock(tr.End)
	if errStart != nil || errEnd != nil {
		// A malformed saved range cannot be enforced; treat as not
		// configured rather than blocking everything.
		return Violation{}, true
	}

	current := at.Hour()*60 + at.Minute()

	var inside bool
	if start > end {
		inside = current >= start || current <= end
	} else {
		inside = current >= start && current <= end
	}
	if inside {
		return Violation{}, true
	}

	return Violation{
		Policy:   "allowed_time_range",
		Reason:   "transaction time outside the allowed window",
		Observed: fmt.Sprintf("%02d:%02d", at.Hour(), at.Minute()),
		Limit:    fmt.Sprintf("%s-%s", tr.Start, tr.End),
	}, false
}

// fuzzyMatchAny reports whether location matches any allowed entry:
// case-insensitive substring in either direction.
func fuzzyMatchAny(location string, allowed []string) bool {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return false
	}
	for _, a := range allowed {
		entry := strings.ToLower(strings.TrimSpace(a))
		if entry == "" {
			continue
		}
		if strings.Contains(loc, entry) || strings.Contains(entry, loc) {
			return true
		}
	}
	return false
}
