package risk

import (
	"math"
	"testing"
)

func TestDetermineRiskLevelBreakpoints(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0.0, "LOW"},
		{0.24, "LOW"},
		{0.25, "MEDIUM"},
		{0.49, "MEDIUM"},
		{0.5, "HIGH"},
		{0.74, "HIGH"},
		{0.75, "CRITICAL"},
		{0.9, "CRITICAL"},
		{1.0, "CRITICAL"},
	}
	for _, tc := range cases {
		if got := DetermineRiskLevel(tc.score); got != tc.want {
			t.Errorf("DetermineRiskLevel(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestRuleScorerIncrements(t *testing.T) {
	healthy := FeatureVector{
		AttendanceRate:           0.95,
		AssignmentCompletionRate: 0.9,
		AverageGrade:             85,
	}
	cases := []struct {
		name      string
		mutate    func(fv *FeatureVector)
		wantScore float64
		wantLevel string
	}{
		{
			name:      "no rules fire",
			mutate:    func(fv *FeatureVector) {},
			wantScore: 0,
			wantLevel: "LOW",
		},
		{
			name:      "low attendance only",
			mutate:    func(fv *FeatureVector) { fv.AttendanceRate = 0.7 },
			wantScore: 0.2,
			wantLevel: "LOW",
		},
		{
			name:      "low completion only",
			mutate:    func(fv *FeatureVector) { fv.AssignmentCompletionRate = 0.5 },
			wantScore: 0.3,
			wantLevel: "MEDIUM",
		},
		{
			name:      "low grade only",
			mutate:    func(fv *FeatureVector) { fv.AverageGrade = 60 },
			wantScore: 0.4,
			wantLevel: "MEDIUM",
		},
		{
			name: "attendance and completion",
			mutate: func(fv *FeatureVector) {
				fv.AttendanceRate = 0.6
				fv.AssignmentCompletionRate = 0.5
			},
			wantScore: 0.5,
			wantLevel: "HIGH",
		},
		{
			name: "all three rules",
			mutate: func(fv *FeatureVector) {
				fv.AttendanceRate = 0.6
				fv.AssignmentCompletionRate = 0.5
				fv.AverageGrade = 65
			},
			wantScore: 0.9,
			wantLevel: "CRITICAL",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fv := healthy
			tc.mutate(&fv)
			assessment, err := RuleScorer{}.Score(fv)
			if err != nil {
				t.Fatalf("Score: %v", err)
			}
			if math.Abs(assessment.RiskScore-tc.wantScore) > 1e-9 {
				t.Errorf("risk score = %v, want %v", assessment.RiskScore, tc.wantScore)
			}
			if assessment.RiskLevel != tc.wantLevel {
				t.Errorf("risk level = %s, want %s", assessment.RiskLevel, tc.wantLevel)
			}
			if assessment.Confidence != 0.6 {
				t.Errorf("confidence = %v, want 0.6", assessment.Confidence)
			}
			if assessment.Outcome != OutcomeForLevel(tc.wantLevel) {
				t.Errorf("outcome = %q, want the %s outcome", assessment.Outcome, tc.wantLevel)
			}
		})
	}
}

func TestRuleScorerIsDeterministic(t *testing.T) {
	fv := FeatureVector{
		AttendanceRate:           0.6,
		AssignmentCompletionRate: 0.5,
		AverageGrade:             65,
	}
	first, err := RuleScorer{}.Score(fv)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := RuleScorer{}.Score(fv)
		if err != nil {
			t.Fatalf("Score: %v", err)
		}
		if again.RiskScore != first.RiskScore || again.RiskLevel != first.RiskLevel {
			t.Fatalf("run %d differed: %+v vs %+v", i, again, first)
		}
	}
}

func TestRuleScorerCriticalStudentEndToEnd(t *testing.T) {
	fv := FeatureVector{
		AttendanceRate:           0.6,
		AssignmentCompletionRate: 0.5,
		AverageGrade:             65,
	}
	assessment, err := RuleScorer{}.Score(fv)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if math.Abs(assessment.RiskScore-0.9) > 1e-9 {
		t.Errorf("risk score = %v, want 0.9", assessment.RiskScore)
	}
	if assessment.RiskLevel != "CRITICAL" {
		t.Errorf("risk level = %s, want CRITICAL", assessment.RiskLevel)
	}
	if assessment.Confidence != 0.6 {
		t.Errorf("confidence = %v, want 0.6", assessment.Confidence)
	}
	if len(assessment.Factors) != 3 {
		t.Errorf("factors = %d, want 3: %v", len(assessment.Factors), assessment.Factors)
	}
	for _, label := range []string{"Low attendance", "Incomplete assignments", "Low grades"} {
		if _, ok := assessment.Factors[label]; !ok {
			t.Errorf("missing factor %q", label)
		}
	}
	gradeFactor := assessment.Factors["Low grades"]
	if math.Abs(gradeFactor.Value-0.05) > 1e-9 {
		t.Errorf("grade factor value = %v, want 0.05", gradeFactor.Value)
	}
	if gradeFactor.Severity != SeverityHigh {
		t.Errorf("grade factor severity = %s, want HIGH", gradeFactor.Severity)
	}
}

func TestIdentifyFactorsThresholds(t *testing.T) {
	normalized := make([]float64, len(FeatureNames))
	// attendance_rate just over the MEDIUM bar, average_grade over HIGH.
	normalized[0] = 0.51
	normalized[2] = 0.71
	factors := identifyFactors(normalized)
	if len(factors) != 2 {
		t.Fatalf("factors = %d, want 2: %v", len(factors), factors)
	}
	if f := factors[FeatureLabels["attendance_rate"]]; f.Severity != SeverityMedium {
		t.Errorf("attendance severity = %s, want MEDIUM", f.Severity)
	}
	if f := factors[FeatureLabels["average_grade"]]; f.Severity != SeverityHigh {
		t.Errorf("grade severity = %s, want HIGH", f.Severity)
	}
	if _, ok := factors[FeatureLabels["late_submissions_rate"]]; ok {
		t.Error("feature at 0 should not be flagged")
	}
}
