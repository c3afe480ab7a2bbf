package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/campuskit/campuskit-backend/internal/platform/apierr"
	"github.com/campuskit/campuskit-backend/internal/platform/logger"
	"github.com/campuskit/campuskit-backend/internal/repos"
	"github.com/campuskit/campuskit-backend/internal/risk"
	"github.com/campuskit/campuskit-backend/internal/types"
)

type AlertService interface {
	GenerateForPrediction(ctx context.Context, prediction *types.RiskPrediction, assessment risk.Assessment) (*types.PredictiveAlert, error)
	ListActive(ctx context.Context, schoolID uuid.UUID, studentID *uuid.UUID) ([]*types.PredictiveAlert, error)
	Acknowledge(ctx context.Context, schoolID, alertID, userID uuid.UUID) (*types.PredictiveAlert, error)
	DeactivateOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type alertService struct {
	log    *logger.Logger
	alerts repos.PredictiveAlertRepo
}

func NewAlertService(baseLog *logger.Logger, alerts repos.PredictiveAlertRepo) AlertService {
	return &alertService{
		log:    baseLog.With("service", "AlertService"),
		alerts: alerts,
	}
}

var actionsByPriority = map[string][]string{
	types.PriorityHigh: {
		"Schedule a meeting with the student within the next week",
		"Review recent assignment submissions with the student",
		"Share study resources targeted at the weakest areas",
	},
	types.PriorityCritical: {
		"Contact the student within 48 hours",
		"Involve the academic advisor and set up an intervention plan",
		"Arrange tutoring for the courses with failing grades",
		"Follow up weekly until the risk level drops",
	},
}

// GenerateForPrediction raises an academic risk alert for HIGH and CRITICAL
// assessments. At most one active alert of the type exists per student, so
// repeated recalculations do not flood staff.
func (s *alertService) GenerateForPrediction(ctx context.Context, prediction *types.RiskPrediction, assessment risk.Assessment) (*types.PredictiveAlert, error) {
	if assessment.RiskLevel != types.RiskHigh && assessment.RiskLevel != types.RiskCritical {
		return nil, nil
	}
	exists, err := s.alerts.ActiveExists(ctx, nil, prediction.SchoolID, prediction.StudentID, types.AlertAcademicRisk)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	priority := types.PriorityHigh
	if assessment.RiskLevel == types.RiskCritical {
		priority = types.PriorityCritical
	}
	evidence, err := json.Marshal(assessment.Factors)
	if err != nil {
		return nil, err
	}
	actions, err := json.Marshal(actionsByPriority[priority])
	if err != nil {
		return nil, err
	}

	alert := &types.PredictiveAlert{
		SchoolID:           prediction.SchoolID,
		StudentID:          prediction.StudentID,
		AlertType:          types.AlertAcademicRisk,
		Priority:           priority,
		ConfidenceScore:    assessment.Confidence,
		PredictedOutcome:   assessment.Outcome,
		SupportingEvidence: datatypes.JSON(evidence),
		RecommendedActions: datatypes.JSON(actions),
		IsActive:           true,
	}
	created, err := s.alerts.Create(ctx, nil, alert)
	if err != nil {
		return nil, err
	}
	s.log.Info("predictive alert raised",
		"school_id", created.SchoolID,
		"student_id", created.StudentID,
		"priority", created.Priority,
	)
	return created, nil
}

func (s *alertService) ListActive(ctx context.Context, schoolID uuid.UUID, studentID *uuid.UUID) ([]*types.PredictiveAlert, error) {
	return s.alerts.ListActive(ctx, nil, schoolID, studentID)
}

func (s *alertService) Acknowledge(ctx context.Context, schoolID, alertID, userID uuid.UUID) (*types.PredictiveAlert, error) {
	alert, err := s.alerts.GetByID(ctx, nil, alertID)
	if err != nil {
		return nil, err
	}
	if alert == nil || alert.SchoolID != schoolID {
		return nil, apierr.New(http.StatusNotFound, "ALERT_NOT_FOUND", errors.New("alert not found"))
	}
	return s.alerts.Acknowledge(ctx, nil, alertID, userID)
}

func (s *alertService) DeactivateOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.alerts.DeactivateOlderThan(ctx, nil, cutoff)
}
