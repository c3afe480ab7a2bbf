package services

import (
	"testing"

	"github.com/campuskit/campuskit-backend/internal/risk"
)

// Deployment alternates the holder between the rule-based fallback and a
// trained model; the holder must accept both, in either order.
func TestScorerSourceSwapsBetweenScorerKinds(t *testing.T) {
	source := NewScorerSource(testLogger(), nil)
	if source.Current().Trained() {
		t.Fatal("fresh source must serve the rule-based fallback")
	}

	result, err := risk.Train(risk.SyntheticDataset(300, 42))
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	trained, err := risk.NewModelScorer(result.Params)
	if err != nil {
		t.Fatalf("NewModelScorer: %v", err)
	}

	source.Swap(trained)
	if !source.Current().Trained() {
		t.Fatal("Swap did not install the trained scorer")
	}
	assessment, err := source.Current().Score(risk.FeatureVector{
		AttendanceRate:           0.9,
		AssignmentCompletionRate: 0.95,
		AverageGrade:             88,
	})
	if err != nil {
		t.Fatalf("Score after swap: %v", err)
	}
	if assessment.RiskScore < 0 || assessment.RiskScore > 1 {
		t.Errorf("risk score out of range: %v", assessment.RiskScore)
	}

	source.Swap(risk.RuleScorer{})
	if source.Current().Trained() {
		t.Fatal("swapping back to the fallback did not take")
	}
	source.Swap(trained)
	if !source.Current().Trained() {
		t.Fatal("second trained deployment did not take")
	}
}

func TestScorerSourceSwapIgnoresNil(t *testing.T) {
	source := NewScorerSource(testLogger(), nil)
	before := source.Current()
	source.Swap(nil)
	if source.Current() != before {
		t.Error("nil swap replaced the current scorer")
	}
}
