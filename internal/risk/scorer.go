package risk

// Scorer turns a feature vector into a risk assessment. The rule-based
// fallback and the trained model are both Scorers so orchestration code
// never branches on training state.
type Scorer interface {
	Score(fv FeatureVector) (Assessment, error)
	Trained() bool
}

type Severity string

const (
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

type Factor struct {
	Severity    Severity `json:"severity"`
	Value       float64  `json:"value"`
	Description string   `json:"description,omitempty"`
}

type Assessment struct {
	RiskScore  float64           `json:"risk_score"`
	RiskLevel  string            `json:"risk_level"`
	Confidence float64           `json:"confidence"`
	Factors    map[string]Factor `json:"factors"`
	Outcome    string            `json:"predicted_outcome"`
}

// Level breakpoints are inclusive lower bounds: 0.25 is already MEDIUM,
// 0.75 is already CRITICAL.
func DetermineRiskLevel(score float64) string {
	switch {
	case score < 0.25:
		return "LOW"
	case score < 0.5:
		return "MEDIUM"
	case score < 0.75:
		return "HIGH"
	default:
		return "CRITICAL"
	}
}

var outcomeByLevel = map[string]string{
	"LOW":      "The student shows solid academic indicators and is expected to maintain satisfactory performance.",
	"MEDIUM":   "The student presents some risk factors that need attention. With early intervention, performance can improve.",
	"HIGH":     "The student presents multiple significant risk factors. Immediate intervention is required to avoid academic problems.",
	"CRITICAL": "The student is at critical risk of academic failure. Urgent intervention and intensive follow-up are required.",
}

func OutcomeForLevel(level string) string {
	return outcomeByLevel[level]
}

// identifyFactors flags every normalized feature above the factor thresholds:
// >0.7 HIGH, >0.5 MEDIUM, below that omitted. The value reported is the
// normalized feature value.
func identifyFactors(normalized []float64) map[string]Factor {
	factors := map[string]Factor{}
	for i, name := range FeatureNames {
		if i >= len(normalized) {
			break
		}
		v := normalized[i]
		label := FeatureLabels[name]
		switch {
		case v > 0.7:
			factors[label] = Factor{Severity: SeverityHigh, Value: v, Description: "Critical factor: " + label}
		case v > 0.5:
			factors[label] = Factor{Severity: SeverityMedium, Value: v, Description: "Risk factor: " + label}
		}
	}
	return factors
}
