package rules

import "github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"

// Context bundles the input for one rule evaluation. Session-level rules
// read Session; aggregate rules read Stats. A missing required input
// resolves to a not-triggered result, never an error.
type Context struct {
	Session *models.Session
	Stats   *models.TutorStats
	Config  Config
}

type resultOption func(*models.RuleResult)

func withRecommendedAction(action string) resultOption {
	return func(r *models.RuleResult) {
		r.RecommendedAction = action
	}
}

func withSupportingData(data models.SupportingData) resultOption {
	return func(r *models.RuleResult) {
		r.SupportingData = &data
	}
}

func withConfidence(confidence float64) resultOption {
	return func(r *models.RuleResult) {
		r.Confidence = confidence
	}
}

// triggered builds a triggered RuleResult. Confidence defaults to 1.0.
// All rules construct their results through triggered and notTriggered
// exclusively so the emission contract stays uniform.
func triggered(flagType models.FlagType, severity models.Severity, title, description string, opts ...resultOption) models.RuleResult {
	result := models.RuleResult{
		Triggered:   true,
		FlagType:    flagType,
		Severity:    severity,
		Title:       title,
		Description: description,
		Confidence:  1.0,
	}
	for _, opt := range opts {
		opt(&result)
	}
	return result
}

// notTriggered builds the canonical not-triggered result. Severity, title
// and description on a not-triggered result carry no meaning.
func notTriggered(flagType models.FlagType) models.RuleResult {
	return models.RuleResult{
		Triggered: false,
		FlagType:  flagType,
		Severity:  models.SeverityLow,
	}
}
