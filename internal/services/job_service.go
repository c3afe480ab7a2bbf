package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/campuskit/campuskit-backend/internal/platform/apierr"
	"github.com/campuskit/campuskit-backend/internal/platform/logger"
	"github.com/campuskit/campuskit-backend/internal/repos"
	"github.com/campuskit/campuskit-backend/internal/types"
)

type EnqueueInput struct {
	SchoolID    uuid.UUID
	RequestedBy uuid.UUID
	JobType     string
	EntityType  string
	EntityID    *uuid.UUID
	Payload     interface{}
}

type JobService interface {
	Enqueue(ctx context.Context, input EnqueueInput) (*types.JobRun, error)
	GetByID(ctx context.Context, schoolID, id uuid.UUID) (*types.JobRun, error)
}

type jobService struct {
	log  *logger.Logger
	jobs repos.JobRunRepo
}

func NewJobService(baseLog *logger.Logger, jobs repos.JobRunRepo) JobService {
	return &jobService{
		log:  baseLog.With("service", "JobService"),
		jobs: jobs,
	}
}

func (s *jobService) Enqueue(ctx context.Context, input EnqueueInput) (*types.JobRun, error) {
	if input.JobType == "" {
		return nil, apierr.New(http.StatusBadRequest, "MISSING_JOB_TYPE", errors.New("job type is required"))
	}
	var payload datatypes.JSON
	if input.Payload != nil {
		raw, err := json.Marshal(input.Payload)
		if err != nil {
			return nil, err
		}
		payload = datatypes.JSON(raw)
	}
	run, err := s.jobs.Create(ctx, nil, &types.JobRun{
		SchoolID:    input.SchoolID,
		RequestedBy: input.RequestedBy,
		JobType:     input.JobType,
		EntityType:  input.EntityType,
		EntityID:    input.EntityID,
		Status:      types.JobQueued,
		Stage:       "queued",
		Payload:     payload,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("job enqueued", "job_id", run.ID, "job_type", run.JobType, "school_id", run.SchoolID)
	return run, nil
}

func (s *jobService) GetByID(ctx context.Context, schoolID, id uuid.UUID) (*types.JobRun, error) {
	run, err := s.jobs.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if run == nil || run.SchoolID != schoolID {
		return nil, apierr.New(http.StatusNotFound, "JOB_NOT_FOUND", errors.New("job not found"))
	}
	return run, nil
}
