package models

import "time"

// FlagStatus tracks the coaching workflow state of a persisted flag.
type FlagStatus string

const (
	FlagStatusOpen     FlagStatus = "open"
	FlagStatusResolved FlagStatus = "resolved"
)

// Flag is the persisted record of one triggered RuleResult, surfaced to
// coaches for follow-up.
type Flag struct {
	ID                string         `db:"id" json:"id"`
	TutorID           string         `db:"tutor_id" json:"tutor_id"`
	SessionID         *string        `db:"session_id" json:"session_id,omitempty"`
	FlagType          FlagType       `db:"flag_type" json:"flag_type"`
	Severity          Severity       `db:"severity" json:"severity"`
	Title             string         `db:"title" json:"title"`
	Description       string         `db:"description" json:"description"`
	RecommendedAction *string        `db:"recommended_action" json:"recommended_action,omitempty"`
	SupportingData    SupportingData `db:"supporting_data" json:"supporting_data"`
	Confidence        float64        `db:"confidence" json:"confidence"`
	Status            FlagStatus     `db:"status" json:"status"`
	ResolvedBy        *string        `db:"resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt        *time.Time     `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
}

// FlagFilter scopes flag listing queries.
type FlagFilter struct {
	TutorID     string
	FlagType    string
	MinSeverity *Severity
	Status      string
	From        *time.Time
	To          *time.Time
	Page        int
	PageSize    int
}
