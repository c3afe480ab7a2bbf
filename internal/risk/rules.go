package risk

// RuleScorer is the deterministic fallback used while no trained model is
// deployed. Fixed increments per breached metric, fixed 0.6 confidence.
type RuleScorer struct{}

const fallbackConfidence = 0.6

func (RuleScorer) Trained() bool { return false }

func (RuleScorer) Score(fv FeatureVector) (Assessment, error) {
	score := 0.0
	factors := map[string]Factor{}

	if fv.AttendanceRate < 0.8 {
		score += 0.2
		factors[FeatureLabels["attendance_rate"]] = Factor{
			Severity: SeverityMedium,
			Value:    0.8 - fv.AttendanceRate,
		}
	}
	if fv.AssignmentCompletionRate < 0.7 {
		score += 0.3
		factors[FeatureLabels["assignment_completion_rate"]] = Factor{
			Severity: SeverityHigh,
			Value:    0.7 - fv.AssignmentCompletionRate,
		}
	}
	if fv.AverageGrade < 70 {
		score += 0.4
		factors[FeatureLabels["average_grade"]] = Factor{
			Severity: SeverityHigh,
			Value:    (70 - fv.AverageGrade) / 100,
		}
	}

	level := DetermineRiskLevel(score)
	return Assessment{
		RiskScore:  score,
		RiskLevel:  level,
		Confidence: fallbackConfidence,
		Factors:    factors,
		Outcome:    OutcomeForLevel(level),
	}, nil
}
