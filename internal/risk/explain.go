package risk

import (
	"fmt"
	"strings"
)

// buildFactors renders the explanation for an already-finalized analysis.
// It is a pure function of the analysis and its inputs: rendering never
// changes the tier. Factors are ordered: amount first, then location, then time.
func buildFactors(a *Analysis, in Input, b Baseline) []Factor {
	factors := make([]Factor, 0, 4)
	factors = append(factors, amountFactor(a, in))
	factors = append(factors, locationFactor(a, in, b))
	factors = append(factors, timeFactor(in, b))
	return factors
}

func amountFactor(a *Analysis, in Input) Factor {
	detail := fmt.Sprintf("z-score %.2f against a mean of %s", a.ZScore, formatAmount(a.Mean))
	switch a.Level {
	case LevelHigh:
		return Factor{
			Type:    FactorBad,
			Message: fmt.Sprintf("Amount %s far exceeds this account's typical spending", formatAmount(in.Amount)),
			Detail:  detail,
		}
	case LevelMedium:
		return Factor{
			Type:    FactorWarn,
			Message: fmt.Sprintf("Amount %s is unusually high for this account", formatAmount(in.Amount)),
			Detail:  detail,
		}
	default:
		return Factor{
			Type:    FactorGood,
			Message: fmt.Sprintf("Amount %s is within the normal spending range", formatAmount(in.Amount)),
			Detail:  detail,
		}
	}
}

func locationFactor(a *Analysis, in Input, b Baseline) Factor {
	if len(b.TrustedLocations) == 0 {
		return Factor{
			Type:    FactorInfo,
			Message: "No trusted locations configured; location check skipped",
		}
	}
	if a.LocationMatch {
		return Factor{
			Type:    FactorGood,
			Message: fmt.Sprintf("Location %q matches a trusted location", in.Location),
		}
	}
	return Factor{
		Type:    FactorWarn,
		Message: fmt.Sprintf("Location %q does not match any trusted location", in.Location),
		Detail:  "trusted: " + strings.Join(b.TrustedLocations, ", "),
	}
}

func timeFactor(in Input, b Baseline) Factor {
	if isLateNight(in.Hour) {
		return Factor{
			Type:    FactorWarn,
			Message: fmt.Sprintf("Transaction at %02d:00 falls in the late-night window", in.Hour),
		}
	}
	if len(b.PreferredHours) > 0 && !containsHour(b.PreferredHours, in.Hour) {
		return Factor{
			Type:    FactorInfo,
			Message: fmt.Sprintf("Hour %02d:00 is outside this account's usual transaction hours", in.Hour),
			Detail:  "usual hours: " + formatHours(b.PreferredHours),
		}
	}
	return Factor{
		Type:    FactorGood,
		Message: "Transaction time matches the usual pattern",
	}
}

// BiometricFactor is appended by the orchestrator after a step-up check.
func BiometricFactor(passed bool, confidence float64) Factor {
	if passed {
		return Factor{
			Type:    FactorGood,
			Message: "Biometric verification passed",
			Detail:  fmt.Sprintf("confidence %.2f", confidence),
		}
	}
	return Factor{
		Type:    FactorBad,
		Message: "Biometric verification failed",
		Detail:  fmt.Sprintf("confidence %.2f", confidence),
	}
}

// RemoteFactor is appended when the best-effort secondary assessment
// succeeds. It is informational only and never changes the decision.
func RemoteFactor(riskScore float64, reasons []string) Factor {
	f := Factor{
		Type:    FactorInfo,
		Message: fmt.Sprintf("Secondary assessment risk score %.3f", riskScore),
	}
	if len(reasons) > 0 {
		f.Detail = strings.Join(reasons, "; ")
	}
	return f
}

func containsHour(hours []int, hour int) bool {
	for _, h := range hours {
		if h == hour {
			return true
		}
	}
	return false
}

func formatHours(hours []int) string {
	parts := make([]string, len(hours))
	for i, h := range hours {
		parts[i] = fmt.Sprintf("%02d:00", h)
	}
	return strings.Join(parts, ", ")
}

func formatAmount(a float64) string {
	return fmt.Sprintf("$%.2f", a)
}
