package risk

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	trainSeed      = 42
	trainEpochs    = 100
	trainLearnRate = 0.1
	trainL2        = 1e-3
	trainTestFrac  = 0.2
	minDatasetSize = 20
)

type Sample struct {
	Features FeatureVector
	AtRisk   bool
}

type Dataset struct {
	Samples   []Sample
	Synthetic bool
}

type TrainResult struct {
	Params            ModelParams
	Accuracy          float64
	FeatureImportance map[string]float64
	TrainSize         int
	TestSize          int
}

// Train fits a ridge-regularized logistic model on standardized features and
// evaluates held-out accuracy on a stratified 20% split. The split and the
// optimizer are seeded, so identical datasets produce identical artifacts.
// Failure never touches a previously deployed snapshot; the caller only
// persists on success.
func Train(ds Dataset) (*TrainResult, error) {
	n := len(ds.Samples)
	if n == 0 {
		return nil, fmt.Errorf("empty training dataset")
	}
	if n < minDatasetSize {
		return nil, fmt.Errorf("training dataset too small: %d samples, need at least %d", n, minDatasetSize)
	}

	d := len(FeatureNames)
	X := mat.NewDense(n, d, nil)
	y := make([]float64, n)
	positives := 0
	for i, s := range ds.Samples {
		X.SetRow(i, s.Features.Normalize())
		if s.AtRisk {
			y[i] = 1
			positives++
		}
	}
	if positives == 0 || positives == n {
		return nil, fmt.Errorf("degenerate label distribution: %d of %d samples at risk", positives, n)
	}

	trainIdx, testIdx := stratifiedSplit(y, trainTestFrac, trainSeed)
	if len(trainIdx) == 0 || len(testIdx) == 0 {
		return nil, fmt.Errorf("degenerate train/test split: %d train, %d test", len(trainIdx), len(testIdx))
	}

	// Scaler fitted on the train fold only.
	mean := make([]float64, d)
	std := make([]float64, d)
	col := make([]float64, len(trainIdx))
	for j := 0; j < d; j++ {
		for k, i := range trainIdx {
			col[k] = X.At(i, j)
		}
		mean[j] = stat.Mean(col, nil)
		std[j] = stat.StdDev(col, nil)
		if std[j] == 0 || math.IsNaN(std[j]) {
			std[j] = 1
		}
	}
	standardize := func(i int) []float64 {
		row := make([]float64, d)
		for j := 0; j < d; j++ {
			row[j] = (X.At(i, j) - mean[j]) / std[j]
		}
		return row
	}

	weights := make([]float64, d)
	bias := 0.0
	grad := make([]float64, d)
	for epoch := 0; epoch < trainEpochs; epoch++ {
		for j := range grad {
			grad[j] = 0
		}
		biasGrad := 0.0
		for _, i := range trainIdx {
			row := standardize(i)
			z := bias
			for j := 0; j < d; j++ {
				z += weights[j] * row[j]
			}
			err := sigmoid(z) - y[i]
			for j := 0; j < d; j++ {
				grad[j] += err * row[j]
			}
			biasGrad += err
		}
		m := float64(len(trainIdx))
		for j := 0; j < d; j++ {
			weights[j] -= trainLearnRate * (grad[j]/m + trainL2*weights[j])
		}
		bias -= trainLearnRate * (biasGrad / m)
	}

	correct := 0
	for _, i := range testIdx {
		row := standardize(i)
		z := bias
		for j := 0; j < d; j++ {
			z += weights[j] * row[j]
		}
		predicted := 0.0
		if sigmoid(z) >= 0.5 {
			predicted = 1
		}
		if predicted == y[i] {
			correct++
		}
	}
	accuracy := float64(correct) / float64(len(testIdx))

	weightMap := make(map[string]float64, d)
	meanMap := make(map[string]float64, d)
	stdMap := make(map[string]float64, d)
	absSum := 0.0
	for j, name := range FeatureNames {
		weightMap[name] = weights[j]
		meanMap[name] = mean[j]
		stdMap[name] = std[j]
		absSum += math.Abs(weights[j])
	}
	importance := make(map[string]float64, d)
	for j, name := range FeatureNames {
		if absSum > 0 {
			importance[name] = math.Abs(weights[j]) / absSum
		} else {
			importance[name] = 0
		}
	}

	return &TrainResult{
		Params: ModelParams{
			Bias:        bias,
			Weights:     weightMap,
			Scaler:      ScalerParams{Mean: meanMap, Std: stdMap},
			TrainedAt:   time.Now().UTC(),
			SampleCount: n,
			Seed:        trainSeed,
			Epochs:      trainEpochs,
			LearnRate:   trainLearnRate,
			L2:          trainL2,
		},
		Accuracy:          accuracy,
		FeatureImportance: importance,
		TrainSize:         len(trainIdx),
		TestSize:          len(testIdx),
	}, nil
}

// stratifiedSplit shuffles each class independently and carves testFrac off
// both, so label balance survives the split.
func stratifiedSplit(y []float64, testFrac float64, seed uint64) (trainIdx, testIdx []int) {
	rng := rand.New(rand.NewSource(seed))
	var pos, neg []int
	for i, label := range y {
		if label == 1 {
			pos = append(pos, i)
		} else {
			neg = append(neg, i)
		}
	}
	for _, class := range [][]int{pos, neg} {
		rng.Shuffle(len(class), func(a, b int) { class[a], class[b] = class[b], class[a] })
		cut := int(math.Round(float64(len(class)) * testFrac))
		testIdx = append(testIdx, class[:cut]...)
		trainIdx = append(trainIdx, class[cut:]...)
	}
	return trainIdx, testIdx
}
