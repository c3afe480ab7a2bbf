package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/campuskit/campuskit-backend/internal/cache"
	"github.com/campuskit/campuskit-backend/internal/platform/apierr"
	"github.com/campuskit/campuskit-backend/internal/platform/logger"
	"github.com/campuskit/campuskit-backend/internal/repos"
	"github.com/campuskit/campuskit-backend/internal/risk"
	"github.com/campuskit/campuskit-backend/internal/types"
)

// RetentionPeriod bounds how long a prediction is served before it expires
// and the retention sweep deactivates it.
const RetentionPeriod = 30 * 24 * time.Hour

// bulkConcurrency caps parallel per-student recalculations in a bulk run.
const bulkConcurrency = 8

type BulkOptions struct {
	SchoolID *uuid.UUID
	Force    bool
	Progress func(done, total int)
}

type BulkResult struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

type RiskSummary struct {
	SchoolID         uuid.UUID               `json:"school_id"`
	Total            int64                   `json:"total"`
	ByLevel          map[string]int64        `json:"by_level"`
	HighRiskStudents []*types.RiskPrediction `json:"high_risk_students"`
}

type CleanupResult struct {
	PredictionsDeactivated int64 `json:"predictions_deactivated"`
	AlertsDeactivated      int64 `json:"alerts_deactivated"`
}

type RiskService interface {
	RecalculateStudent(ctx context.Context, schoolID, studentID uuid.UUID) (*types.RiskPrediction, error)
	RecalculateAll(ctx context.Context, opts BulkOptions) (*BulkResult, error)
	GetCurrent(ctx context.Context, schoolID, studentID uuid.UUID) (*types.RiskPrediction, *types.JobRun, error)
	Summary(ctx context.Context, schoolID uuid.UUID) (*RiskSummary, error)
	CleanupExpired(ctx context.Context) (*CleanupResult, error)
}

type riskService struct {
	log             *logger.Logger
	collector       *risk.Collector
	scorers         *ScorerSource
	predictions     repos.RiskPredictionRepo
	enrollments     repos.EnrollmentRepo
	alerts          AlertService
	recommendations RecommendationService
	jobs            JobService
	predCache       *cache.PredictionCache
}

func NewRiskService(
	baseLog *logger.Logger,
	collector *risk.Collector,
	scorers *ScorerSource,
	predictions repos.RiskPredictionRepo,
	enrollments repos.EnrollmentRepo,
	alerts AlertService,
	recommendations RecommendationService,
	jobs JobService,
	predCache *cache.PredictionCache,
) RiskService {
	return &riskService{
		log:             baseLog.With("service", "RiskService"),
		collector:       collector,
		scorers:         scorers,
		predictions:     predictions,
		enrollments:     enrollments,
		alerts:          alerts,
		recommendations: recommendations,
		jobs:            jobs,
		predCache:       predCache,
	}
}

// RecalculateStudent runs the full pipeline for one student: collect
// features, score with whichever scorer is deployed, upsert the prediction,
// then derive alerts and recommendations from the new assessment.
func (s *riskService) RecalculateStudent(ctx context.Context, schoolID, studentID uuid.UUID) (*types.RiskPrediction, error) {
	fv, err := s.collector.Collect(ctx, schoolID, studentID)
	if err != nil {
		if errors.Is(err, risk.ErrNoData) {
			return nil, apierr.New(http.StatusNotFound, "NO_ACADEMIC_DATA", err)
		}
		return nil, err
	}

	scorer := s.scorers.Current()
	assessment, err := scorer.Score(fv)
	if err != nil {
		return nil, err
	}

	factorsJSON, err := json.Marshal(assessment.Factors)
	if err != nil {
		return nil, err
	}
	prediction := &types.RiskPrediction{
		SchoolID:   schoolID,
		StudentID:  studentID,
		RiskScore:  assessment.RiskScore,
		RiskLevel:  assessment.RiskLevel,
		Confidence: assessment.Confidence,
		Factors:    datatypes.JSON(factorsJSON),
		Outcome:    assessment.Outcome,

		AttendanceRate:           fv.AttendanceRate,
		AssignmentCompletionRate: fv.AssignmentCompletionRate,
		AverageGrade:             fv.AverageGrade,
		LateSubmissionsRate:      fv.LateSubmissionsRate,
		ParticipationScore:       fv.ParticipationScore,
		StudyTimeHours:           fv.StudyTimeHours,
		PreviousSemesterGPA:      fv.PreviousSemesterGPA,
		CurrentSemesterGPA:       fv.CurrentSemesterGPA,
		DaysSinceLastLogin:       fv.DaysSinceLastLogin,
	}
	saved, err := s.predictions.Upsert(ctx, nil, prediction)
	if err != nil {
		return nil, err
	}
	s.predCache.Set(ctx, saved)

	if _, err := s.alerts.GenerateForPrediction(ctx, saved, assessment); err != nil {
		s.log.Warn("alert generation failed", "student_id", studentID, "error", err)
	}
	if _, err := s.recommendations.GenerateForPrediction(ctx, saved, assessment); err != nil {
		s.log.Warn("recommendation generation failed", "student_id", studentID, "error", err)
	}

	s.log.Info("risk recalculated",
		"school_id", schoolID,
		"student_id", studentID,
		"risk_level", saved.RiskLevel,
		"risk_score", saved.RiskScore,
		"trained_model", scorer.Trained(),
	)
	return saved, nil
}

// RecalculateAll sweeps every actively enrolled student. Students with a
// fresh prediction are skipped unless forced; students without data are
// skipped; individual failures are counted, never fatal to the sweep.
func (s *riskService) RecalculateAll(ctx context.Context, opts BulkOptions) (*BulkResult, error) {
	refs, err := s.enrollments.ListActiveStudentRefs(ctx, nil, opts.SchoolID)
	if err != nil {
		return nil, err
	}

	result := &BulkResult{Total: len(refs)}
	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkConcurrency)
	for _, ref := range refs {
		ref := ref
		g.Go(func() error {
			outcome := s.recalcOne(gctx, ref, opts.Force)
			mu.Lock()
			switch outcome {
			case bulkProcessed:
				result.Processed++
			case bulkSkipped:
				result.Skipped++
			case bulkFailed:
				result.Failed++
			}
			done++
			if opts.Progress != nil {
				opts.Progress(done, result.Total)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.log.Info("bulk recalculation finished",
		"total", result.Total,
		"processed", result.Processed,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"force", opts.Force,
	)
	return result, nil
}

type bulkOutcome int

const (
	bulkProcessed bulkOutcome = iota
	bulkSkipped
	bulkFailed
)

func (s *riskService) recalcOne(ctx context.Context, ref repos.StudentRef, force bool) bulkOutcome {
	if !force {
		existing, err := s.predictions.GetActiveByStudent(ctx, nil, ref.SchoolID, ref.StudentID)
		if err == nil && existing != nil && time.Since(existing.LastUpdated) < RetentionPeriod {
			return bulkSkipped
		}
	}
	_, err := s.RecalculateStudent(ctx, ref.SchoolID, ref.StudentID)
	if err != nil {
		if errors.Is(err, risk.ErrNoData) {
			return bulkSkipped
		}
		s.log.Warn("bulk recalculation: student failed",
			"school_id", ref.SchoolID,
			"student_id", ref.StudentID,
			"error", err,
		)
		return bulkFailed
	}
	return bulkProcessed
}

// GetCurrent serves the active prediction, cache first. On a miss or an
// expired prediction it enqueues an async recalculation and returns the job
// so the caller can poll; it never computes inline on the read path.
func (s *riskService) GetCurrent(ctx context.Context, schoolID, studentID uuid.UUID) (*types.RiskPrediction, *types.JobRun, error) {
	if cached, ok := s.predCache.Get(ctx, schoolID, studentID); ok {
		if s.fresh(cached) {
			return cached, nil, nil
		}
		// Stale entries go straight back to the database next time.
		s.predCache.Invalidate(ctx, schoolID, studentID)
	}

	prediction, err := s.predictions.GetActiveByStudent(ctx, nil, schoolID, studentID)
	if err != nil {
		return nil, nil, err
	}
	if prediction != nil && s.fresh(prediction) {
		s.predCache.Set(ctx, prediction)
		return prediction, nil, nil
	}

	entityID := studentID
	run, err := s.jobs.Enqueue(ctx, EnqueueInput{
		SchoolID:    schoolID,
		RequestedBy: studentID,
		JobType:     types.JobTypeRiskRecalc,
		EntityType:  "student",
		EntityID:    &entityID,
		Payload:     map[string]interface{}{"school_id": schoolID, "student_id": studentID},
	})
	if err != nil {
		return nil, nil, err
	}
	return nil, run, nil
}

func (s *riskService) fresh(prediction *types.RiskPrediction) bool {
	return prediction != nil && prediction.IsActive && time.Since(prediction.LastUpdated) < RetentionPeriod
}

func (s *riskService) Summary(ctx context.Context, schoolID uuid.UUID) (*RiskSummary, error) {
	counts, err := s.predictions.CountActiveByLevel(ctx, nil, schoolID)
	if err != nil {
		return nil, err
	}
	summary := &RiskSummary{
		SchoolID: schoolID,
		ByLevel: map[string]int64{
			types.RiskLow:      0,
			types.RiskMedium:   0,
			types.RiskHigh:     0,
			types.RiskCritical: 0,
		},
	}
	for _, c := range counts {
		summary.ByLevel[c.RiskLevel] = c.Count
		summary.Total += c.Count
	}
	highRisk, err := s.predictions.ListActiveByLevel(ctx, nil, schoolID, []string{types.RiskHigh, types.RiskCritical})
	if err != nil {
		return nil, err
	}
	summary.HighRiskStudents = highRisk
	return summary, nil
}

// CleanupExpired is the retention sweep: predictions and alerts past the
// retention window stop being served but stay on disk for audit.
func (s *riskService) CleanupExpired(ctx context.Context) (*CleanupResult, error) {
	cutoff := time.Now().Add(-RetentionPeriod)
	predictions, err := s.predictions.DeactivateOlderThan(ctx, nil, cutoff)
	if err != nil {
		return nil, err
	}
	alerts, err := s.alerts.DeactivateOlderThan(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	result := &CleanupResult{PredictionsDeactivated: predictions, AlertsDeactivated: alerts}
	if predictions > 0 || alerts > 0 {
		s.log.Info("retention sweep finished",
			"predictions_deactivated", predictions,
			"alerts_deactivated", alerts,
		)
	}
	return result, nil
}
