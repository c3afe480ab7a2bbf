package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/campuskit/campuskit-backend/internal/platform/apierr"
	"github.com/campuskit/campuskit-backend/internal/platform/logger"
	"github.com/campuskit/campuskit-backend/internal/repos"
	"github.com/campuskit/campuskit-backend/internal/risk"
	"github.com/campuskit/campuskit-backend/internal/types"
)

const (
	defaultSyntheticSize = 1000
	syntheticSeed        = 42
)

type TrainInput struct {
	SchoolID      uuid.UUID
	UseSynthetic  bool
	SyntheticSize int
}

type TrainOutcome struct {
	Session   *types.TrainingSession `json:"session"`
	Snapshot  *types.ModelSnapshot   `json:"snapshot"`
	Accuracy  float64                `json:"accuracy"`
	TrainSize int                    `json:"train_size"`
	TestSize  int                    `json:"test_size"`
}

type TrainingService interface {
	Run(ctx context.Context, input TrainInput) (*TrainOutcome, error)
	Sessions(ctx context.Context, schoolID uuid.UUID, limit int) ([]*types.TrainingSession, error)
}

type trainingService struct {
	log         *logger.Logger
	collector   *risk.Collector
	enrollments repos.EnrollmentRepo
	snapshots   repos.ModelSnapshotRepo
	sessions    repos.TrainingSessionRepo
	scorers     *ScorerSource
}

func NewTrainingService(
	baseLog *logger.Logger,
	collector *risk.Collector,
	enrollments repos.EnrollmentRepo,
	snapshots repos.ModelSnapshotRepo,
	sessions repos.TrainingSessionRepo,
	scorers *ScorerSource,
) TrainingService {
	return &trainingService{
		log:         baseLog.With("service", "TrainingService"),
		collector:   collector,
		enrollments: enrollments,
		snapshots:   snapshots,
		sessions:    sessions,
		scorers:     scorers,
	}
}

// Run trains a new model artifact and deploys it: snapshot written and
// activated, training session recorded, live scorer swapped. A failed
// training run leaves the previously deployed artifact untouched.
func (s *trainingService) Run(ctx context.Context, input TrainInput) (*TrainOutcome, error) {
	dataset, err := s.buildDataset(ctx, input)
	if err != nil {
		return nil, err
	}

	result, err := risk.Train(dataset)
	if err != nil {
		return nil, apierr.New(http.StatusUnprocessableEntity, "TRAINING_FAILED", err)
	}

	paramsJSON, err := json.Marshal(result.Params)
	if err != nil {
		return nil, err
	}
	metrics := map[string]interface{}{
		"accuracy":           result.Accuracy,
		"train_size":         result.TrainSize,
		"test_size":          result.TestSize,
		"feature_importance": result.FeatureImportance,
		"synthetic":          dataset.Synthetic,
	}
	metricsJSON, err := json.Marshal(metrics)
	if err != nil {
		return nil, err
	}
	importanceJSON, err := json.Marshal(result.FeatureImportance)
	if err != nil {
		return nil, err
	}

	version, err := s.snapshots.NextVersion(ctx, nil, risk.ModelKey)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.snapshots.Create(ctx, nil, &types.ModelSnapshot{
		ModelKey:    risk.ModelKey,
		Version:     version,
		ParamsJSON:  datatypes.JSON(paramsJSON),
		MetricsJSON: datatypes.JSON(metricsJSON),
	})
	if err != nil {
		return nil, err
	}
	if err := s.snapshots.ActivateExclusive(ctx, nil, snapshot.ID, risk.ModelKey); err != nil {
		return nil, err
	}

	session, err := s.sessions.Create(ctx, nil, &types.TrainingSession{
		SchoolID:          input.SchoolID,
		SessionName:       fmt.Sprintf("%s v%d", risk.ModelKey, version),
		ModelType:         risk.ModelKey,
		TrainingDataSize:  len(dataset.Samples),
		Accuracy:          result.Accuracy,
		ModelParameters:   datatypes.JSON(paramsJSON),
		FeatureImportance: datatypes.JSON(importanceJSON),
		UsedSyntheticData: dataset.Synthetic,
	})
	if err != nil {
		return nil, err
	}
	if err := s.sessions.ActivateExclusive(ctx, nil, session.ID, risk.ModelKey); err != nil {
		return nil, err
	}

	scorer, err := risk.NewModelScorer(result.Params)
	if err != nil {
		return nil, err
	}
	s.scorers.Swap(scorer)

	s.log.Info("model trained and deployed",
		"model_key", risk.ModelKey,
		"version", version,
		"accuracy", result.Accuracy,
		"samples", len(dataset.Samples),
		"synthetic", dataset.Synthetic,
	)
	return &TrainOutcome{
		Session:   session,
		Snapshot:  snapshot,
		Accuracy:  result.Accuracy,
		TrainSize: result.TrainSize,
		TestSize:  result.TestSize,
	}, nil
}

// buildDataset assembles training samples from the live academic records,
// labeled by the warning-rule heuristic, or generates a synthetic dataset
// when explicitly requested.
func (s *trainingService) buildDataset(ctx context.Context, input TrainInput) (risk.Dataset, error) {
	if input.UseSynthetic {
		size := input.SyntheticSize
		if size <= 0 {
			size = defaultSyntheticSize
		}
		return risk.SyntheticDataset(size, syntheticSeed), nil
	}

	var schoolID *uuid.UUID
	if input.SchoolID != uuid.Nil {
		schoolID = &input.SchoolID
	}
	refs, err := s.enrollments.ListActiveStudentRefs(ctx, nil, schoolID)
	if err != nil {
		return risk.Dataset{}, err
	}
	samples := make([]risk.Sample, 0, len(refs))
	for _, ref := range refs {
		fv, err := s.collector.Collect(ctx, ref.SchoolID, ref.StudentID)
		if err != nil {
			if errors.Is(err, risk.ErrNoData) {
				continue
			}
			return risk.Dataset{}, err
		}
		samples = append(samples, risk.Sample{Features: fv, AtRisk: risk.HeuristicLabel(fv)})
	}
	return risk.Dataset{Samples: samples, Synthetic: false}, nil
}

func (s *trainingService) Sessions(ctx context.Context, schoolID uuid.UUID, limit int) ([]*types.TrainingSession, error) {
	return s.sessions.List(ctx, nil, schoolID, limit)
}
