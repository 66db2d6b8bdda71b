package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// FlagType tags the behavioral pattern a rule detects.
type FlagType string

const (
	FlagNoShow             FlagType = "no_show"
	FlagChronicLateness    FlagType = "chronic_lateness"
	FlagEarlyEnd           FlagType = "early_end"
	FlagPoorFirstSession   FlagType = "poor_first_session"
	FlagHighRescheduleRate FlagType = "high_reschedule_rate"
	FlagLowRatings         FlagType = "low_ratings"
)

// Valid returns true when the flag type is a supported value.
func (f FlagType) Valid() bool {
	switch f {
	case FlagNoShow, FlagChronicLateness, FlagEarlyEnd, FlagPoorFirstSession, FlagHighRescheduleRate, FlagLowRatings:
		return true
	default:
		return false
	}
}

// Severity is an ordered ranking of how serious a triggered flag is.
// The ordering is first-class: comparing two Severity values with < or >=
// compares their rank, not their spelling.
type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityLow:      "low",
	SeverityMedium:   "medium",
	SeverityHigh:     "high",
	SeverityCritical: "critical",
}

// String returns the wire representation of the severity.
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// ParseSeverity converts a wire value into a Severity.
func ParseSeverity(raw string) (Severity, error) {
	for sev, name := range severityNames {
		if name == raw {
			return sev, nil
		}
	}
	return 0, fmt.Errorf("unknown severity %q", raw)
}

// AtLeast reports whether the severity ranks at or above the other.
func (s Severity) AtLeast(other Severity) bool {
	return s >= other
}

// MarshalJSON encodes the severity as its string name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity from its string name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSeverity(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value implements driver.Valuer so severities persist as text.
func (s Severity) Value() (driver.Value, error) {
	if _, ok := severityNames[s]; !ok {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return s.String(), nil
}

// Scan implements sql.Scanner for text severity columns.
func (s *Severity) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseSeverity(v)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	case []byte:
		return s.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan severity from %T", src)
	}
}

// SupportingData carries the evidence behind a triggered rule: the
// sessions it references and the numeric metrics it computed. It is a
// typed structure rather than a free-form blob so serialization happens
// only at the storage boundary.
type SupportingData struct {
	SessionIDs []string           `json:"session_ids,omitempty"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

// Value marshals supporting data for a JSONB column.
func (d SupportingData) Value() (driver.Value, error) {
	payload, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal supporting data: %w", err)
	}
	return payload, nil
}

// Scan unmarshals supporting data from a JSONB column.
func (d *SupportingData) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		if len(v) == 0 {
			*d = SupportingData{}
			return nil
		}
		return json.Unmarshal(v, d)
	case string:
		return d.Scan([]byte(v))
	case nil:
		*d = SupportingData{}
		return nil
	default:
		return fmt.Errorf("cannot scan supporting data from %T", src)
	}
}

// RuleResult is the outcome of one rule evaluation. When Triggered is
// false, Severity, Title and Description carry no meaning and must not
// be interpreted.
type RuleResult struct {
	Triggered         bool            `json:"triggered"`
	FlagType          FlagType        `json:"flag_type"`
	Severity          Severity        `json:"severity"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	RecommendedAction string          `json:"recommended_action,omitempty"`
	SupportingData    *SupportingData `json:"supporting_data,omitempty"`
	Confidence        float64         `json:"confidence"`
}
