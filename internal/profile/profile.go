// Package profile stores minimal behavioral summaries per user.
//
// Only aggregated statistics are kept (mean, stddev, counts, an hour
// histogram), never raw transaction history and never cross-user data.
// Baseline learning requires explicit opt-in, and anomalous or policy-blocked
// transactions are counted but never update the mean/stddev, so fraud cannot
// contaminate its own detection baseline.
package profile

import (
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mbd888/fraudguard/internal/risk"
	"github.com/mbd888/fraudguard/internal/stats"
)

// Errors
var (
	ErrNotFound = errors.New("profile: not found")
)

// Profile is the behavioral summary for one user.
type Profile struct {
	UserID          string    `json:"userId"`
	LearningEnabled bool      `json:"learningEnabled"`

	AmountMean   float64 `json:"amountMean"`
	AmountStdDev float64 `json:"amountStdDev"`
	AmountCount  int     `json:"amountCount"`

	HourHistogram    [24]int  `json:"hourHistogram"`
	TransactionCount int      `json:"transactionCount"`
	TrustedLocations []string `json:"trustedLocations"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// New creates an empty profile with the given consent flag.
func New(userID string, learningEnabled bool) *Profile {
	now := time.Now()
	return &Profile{
		UserID:          userID,
		LearningEnabled: learningEnabled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// HasStats reports whether the profile carries learned amount statistics.
// Without them the classifier assumes the new-user defaults.
func (p *Profile) HasStats() bool {
	return p.AmountCount > 0
}

// Observe folds one transaction into the profile. The hour histogram and
// transaction count update unconditionally; the amount statistics update via
// Welford's online algorithm only when updateBaseline is true, which keeps
// anomalous transactions out of the baseline.
func (p *Profile) Observe(amount float64, hour int, updateBaseline bool) {
	if updateBaseline {
		p.AmountCount++
		n := float64(p.AmountCount)
		if p.AmountCount == 1 {
			p.AmountMean = amount
			p.AmountStdDev = 0
		} else {
			oldMean := p.AmountMean
			p.AmountMean = oldMean + (amount-oldMean)/n
			variance := ((n-2)/(n-1))*p.AmountStdDev*p.AmountStdDev +
				(amount-oldMean)*(amount-oldMean)/n
			p.AmountStdDev = math.Sqrt(math.Max(0, variance))
		}
	}

	if hour >= 0 && hour < 24 {
		p.HourHistogram[hour]++
	}
	p.TransactionCount++
	p.UpdatedAt = time.Now()
}

// SetStats replaces the amount statistics wholesale, e.g. after a bulk
// history upload is rebaselined.
func (p *Profile) SetStats(s stats.Summary) {
	p.AmountMean = s.Mean
	p.AmountStdDev = s.StdDev
	p.AmountCount = s.Count
	p.UpdatedAt = time.Now()
}

// PreferredHours returns the user's top 3 transaction hours (non-zero
// buckets only), most frequent first, ties broken by earlier hour.
func (p *Profile) PreferredHours() []int {
	type bucket struct{ hour, count int }
	buckets := make([]bucket, 0, 24)
	for h, c := range p.HourHistogram {
		if c > 0 {
			buckets = append(buckets, bucket{h, c})
		}
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].count != buckets[j].count {
			return buckets[i].count > buckets[j].count
		}
		return buckets[i].hour < buckets[j].hour
	})
	if len(buckets) > 3 {
		buckets = buckets[:3]
	}
	hours := make([]int, len(buckets))
	for i, b := range buckets {
		hours[i] = b.hour
	}
	return hours
}

// AddTrustedLocation appends a trusted location; adding an existing one is a
// no-op success.
func (p *Profile) AddTrustedLocation(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	for _, loc := range p.TrustedLocations {
		if strings.EqualFold(loc, name) {
			return
		}
	}
	p.TrustedLocations = append(p.TrustedLocations, name)
	p.UpdatedAt = time.Now()
}

// RemoveTrustedLocation deletes a trusted location by name (case-insensitive).
func (p *Profile) RemoveTrustedLocation(name string) {
	kept := p.TrustedLocations[:0]
	for _, loc := range p.TrustedLocations {
		if !strings.EqualFold(loc, name) {
			kept = append(kept, loc)
		}
	}
	p.TrustedLocations = kept
	p.UpdatedAt = time.Now()
}

// Reset clears all learned data but preserves the user ID and consent flag.
func (p *Profile) Reset() {
	consent := p.LearningEnabled
	created := p.CreatedAt
	*p = *New(p.UserID, consent)
	p.CreatedAt = created
}

// Baseline projects the profile into the classifier's input shape.
// A nil profile is a valid new-user baseline.
func (p *Profile) Baseline() risk.Baseline {
	if p == nil {
		return risk.Baseline{}
	}
	return risk.Baseline{
		Mean:             p.AmountMean,
		StdDev:           p.AmountStdDev,
		HasStats:         p.HasStats(),
		TrustedLocations: append([]string(nil), p.TrustedLocations...),
		PreferredHours:   p.PreferredHours(),
	}
}

// Summary is the human-readable projection served to the profile UI.
type Summary struct {
	UserID           string    `json:"userId"`
	LearningEnabled  bool      `json:"learningEnabled"`
	TransactionCount int       `json:"transactionCount"`
	AmountMean       float64   `json:"amountMean"`
	AmountStdDev     float64   `json:"amountStdDev"`
	TypicalRange     []float64 `json:"typicalRange"`
	PreferredHours   []int     `json:"preferredHours"`
	TrustedLocations []string  `json:"trustedLocations"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Summary returns the profile's presentation view. The typical range is
// mean plus or minus two stddev, floored at zero.
func (p *Profile) Summary() Summary {
	low := p.AmountMean - 2*p.AmountStdDev
	if low < 0 {
		low = 0
	}
	return Summary{
		UserID:           p.UserID,
		LearningEnabled:  p.LearningEnabled,
		TransactionCount: p.TransactionCount,
		AmountMean:       round2(p.AmountMean),
		AmountStdDev:     round2(p.AmountStdDev),
		TypicalRange:     []float64{round2(low), round2(p.AmountMean + 2*p.AmountStdDev)},
		PreferredHours:   p.PreferredHours(),
		TrustedLocations: append([]string(nil), p.TrustedLocations...),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
