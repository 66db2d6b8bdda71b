package rules

import "github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"

// Rule is a pure evaluation function over a Context. Rules never read
// each other's output; repeated invocation with the same inputs yields
// identical results.
type Rule func(Context) models.RuleResult

// SessionRules returns the rules evaluated against a single session.
func SessionRules() []Rule {
	return []Rule{
		DetectNoShow,
		DetectLateness,
		DetectEarlyEnd,
		DetectPoorFirstSession,
	}
}

// AggregateRules returns the rules evaluated against windowed tutor
// statistics.
func AggregateRules() []Rule {
	return []Rule{
		DetectHighRescheduleRate,
		DetectChronicLateness,
		DetectDecliningRatings,
	}
}

// EvaluateSession runs every session-level rule against one session and
// returns one result per rule, triggered or not.
func EvaluateSession(session *models.Session, cfg Config) []models.RuleResult {
	ctx := Context{Session: session, Config: cfg}
	ruleSet := SessionRules()
	results := make([]models.RuleResult, 0, len(ruleSet))
	for _, rule := range ruleSet {
		results = append(results, rule(ctx))
	}
	return results
}

// EvaluateStats runs every aggregate rule against one TutorStats
// snapshot and returns one result per rule.
func EvaluateStats(stats *models.TutorStats, cfg Config) []models.RuleResult {
	ctx := Context{Stats: stats, Config: cfg}
	ruleSet := AggregateRules()
	results := make([]models.RuleResult, 0, len(ruleSet))
	for _, rule := range ruleSet {
		results = append(results, rule(ctx))
	}
	return results
}

// Triggered filters results down to the triggered ones.
func Triggered(results []models.RuleResult) []models.RuleResult {
	filtered := make([]models.RuleResult, 0, len(results))
	for _, result := range results {
		if result.Triggered {
			filtered = append(filtered, result)
		}
	}
	return filtered
}
