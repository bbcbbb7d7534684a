// Package insights turns analysis outputs into a ranked list of actionable
// insights with deterministic IDs and priority-based expiry.
package insights

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Priority orders insights; higher values are more urgent.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

var priorityNames = map[Priority]string{
	PriorityLow:      "low",
	PriorityMedium:   "medium",
	PriorityHigh:     "high",
	PriorityCritical: "critical",
}

func (p Priority) String() string {
	if s, ok := priorityNames[p]; ok {
		return s
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

// ParsePriority parses a priority name, case-insensitively.
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range priorityNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown priority %q", s)
}

// MarshalJSON encodes the priority by name.
func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a priority name.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Category is the business area an insight concerns.
type Category string

const (
	CategorySales       Category = "sales"
	CategoryInventory   Category = "inventory"
	CategoryCompetition Category = "competition"
	CategoryWeather     Category = "weather"
	CategoryOperations  Category = "operations"
	CategoryCustomer    Category = "customer"
)

// State is the lifecycle position of an insight.
type State string

const (
	StateGenerated  State = "generated"
	StateActive     State = "active"
	StateExpired    State = "expired"
	StateSuperseded State = "superseded"
)

// Insight is one actionable finding for a store. Insights are never mutated
// after creation; each synthesis pass produces a fresh set.
type Insight struct {
	ID                 string    `json:"insight_id"`
	StoreID            string    `json:"store_id"`
	Priority           Priority  `json:"priority"`
	Category           Category  `json:"category"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Impact             string    `json:"impact"`
	RecommendedActions []string  `json:"recommended_actions"`
	DataSources        []string  `json:"data_sources"`
	ConfidenceScore    float64   `json:"confidence_score"`
	CreatedAt          time.Time `json:"created_at"`
	// ExpiresAt is nil for insights that never expire.
	ExpiresAt *time.Time `json:"expires_at"`
}

// IsExpired reports whether now is past the insight's expiry.
func (i Insight) IsExpired(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}

// State returns the lifecycle state at now.
func (i Insight) State(now time.Time) State {
	switch {
	case i.IsExpired(now):
		return StateExpired
	case now.Before(i.CreatedAt):
		return StateGenerated
	default:
		return StateActive
	}
}

// FilterActive returns the insights that have not expired at now, keeping order.
func FilterActive(list []Insight, now time.Time) []Insight {
	out := make([]Insight, 0, len(list))
	for _, in := range list {
		if !in.IsExpired(now) {
			out = append(out, in)
		}
	}
	return out
}
