package risk

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// ModelKey identifies the deployed academic risk artifact in model_snapshot.
const ModelKey = "academic_risk"

// Confidence of trained-model predictions is a fixed stub carried over from
// the deployed predictor; replacing it with a calibrated measure is a known
// open item.
const trainedConfidence = 0.85

// ModelParams is the serialized artifact: logistic weights keyed by feature
// name plus the standardizing scaler fitted at training time.
type ModelParams struct {
	Bias        float64            `json:"bias"`
	Weights     map[string]float64 `json:"weights"`
	Scaler      ScalerParams       `json:"scaler"`
	TrainedAt   time.Time          `json:"trained_at"`
	SampleCount int                `json:"sample_count"`
	Seed        int64              `json:"seed"`
	Epochs      int                `json:"epochs"`
	LearnRate   float64            `json:"learning_rate"`
	L2          float64            `json:"l2"`
}

type ScalerParams struct {
	Mean map[string]float64 `json:"mean"`
	Std  map[string]float64 `json:"std"`
}

// ModelScorer scores with trained logistic weights over standardized,
// normalized features. risk_score is the positive-class probability.
type ModelScorer struct {
	params ModelParams
	// Dense forms in FeatureNames order, precomputed at load time.
	weights []float64
	mean    []float64
	std     []float64
}

func (m *ModelScorer) Trained() bool { return true }

func (m *ModelScorer) Score(fv FeatureVector) (Assessment, error) {
	normalized := fv.Normalize()
	z := m.params.Bias
	for i := range normalized {
		std := m.std[i]
		if std == 0 {
			std = 1
		}
		z += m.weights[i] * ((normalized[i] - m.mean[i]) / std)
	}
	p := sigmoid(z)

	level := DetermineRiskLevel(p)
	return Assessment{
		RiskScore:  p,
		RiskLevel:  level,
		Confidence: trainedConfidence,
		Factors:    identifyFactors(normalized),
		Outcome:    OutcomeForLevel(level),
	}, nil
}

// NewModelScorer validates params and precomputes dense weight/scaler slices.
func NewModelScorer(params ModelParams) (*ModelScorer, error) {
	if len(params.Weights) == 0 {
		return nil, fmt.Errorf("model params have no weights")
	}
	m := &ModelScorer{
		params:  params,
		weights: make([]float64, len(FeatureNames)),
		mean:    make([]float64, len(FeatureNames)),
		std:     make([]float64, len(FeatureNames)),
	}
	for i, name := range FeatureNames {
		w, ok := params.Weights[name]
		if !ok {
			return nil, fmt.Errorf("model params missing weight for feature %q", name)
		}
		m.weights[i] = w
		m.mean[i] = params.Scaler.Mean[name]
		std := params.Scaler.Std[name]
		if std == 0 {
			std = 1
		}
		m.std[i] = std
	}
	return m, nil
}

// LoadScorer decodes a snapshot's params into a ModelScorer. A nil or empty
// artifact yields the rule-based fallback instead of an error: an untrained
// deployment must keep serving predictions.
func LoadScorer(paramsJSON []byte) Scorer {
	if len(paramsJSON) == 0 || string(paramsJSON) == "null" {
		return RuleScorer{}
	}
	var params ModelParams
	if err := json.Unmarshal(paramsJSON, &params); err != nil {
		return RuleScorer{}
	}
	scorer, err := NewModelScorer(params)
	if err != nil {
		return RuleScorer{}
	}
	return scorer
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
