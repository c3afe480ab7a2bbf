package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/campuskit-backend/internal/middleware"
	"github.com/campuskit/campuskit-backend/internal/platform/apierr"
	"github.com/campuskit/campuskit-backend/internal/platform/logger"
	"github.com/campuskit/campuskit-backend/internal/services"
	"github.com/campuskit/campuskit-backend/internal/types"
)

type TrainingHandler struct {
	log      *logger.Logger
	training services.TrainingService
	jobs     services.JobService
}

func NewTrainingHandler(baseLog *logger.Logger, training services.TrainingService, jobs services.JobService) *TrainingHandler {
	return &TrainingHandler{
		log:      baseLog.With("handler", "TrainingHandler"),
		training: training,
		jobs:     jobs,
	}
}

type trainRequest struct {
	UseSynthetic  bool `json:"use_synthetic"`
	SyntheticSize int  `json:"synthetic_size"`
}

// Run enqueues a training job. Training touches the full tenant dataset, so
// it always runs in the background.
func (h *TrainingHandler) Run(c *gin.Context) {
	var req trainRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, apierr.New(http.StatusBadRequest, "INVALID_BODY", err))
			return
		}
	}
	schoolID := middleware.SchoolID(c)
	run, err := h.jobs.Enqueue(c.Request.Context(), services.EnqueueInput{
		SchoolID:    schoolID,
		RequestedBy: middleware.UserID(c),
		JobType:     types.JobTypeRiskModelTrain,
		EntityType:  "school",
		EntityID:    &schoolID,
		Payload: map[string]interface{}{
			"school_id":      schoolID,
			"use_synthetic":  req.UseSynthetic,
			"synthetic_size": req.SyntheticSize,
		},
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusAccepted, gin.H{"job_id": run.ID, "status": run.Status})
}

func (h *TrainingHandler) Sessions(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	sessions, err := h.training.Sessions(c.Request.Context(), middleware.SchoolID(c), limit)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, sessions)
}
