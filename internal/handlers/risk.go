package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campuskit/campuskit-backend/internal/middleware"
	"github.com/campuskit/campuskit-backend/internal/platform/apierr"
	"github.com/campuskit/campuskit-backend/internal/platform/logger"
	"github.com/campuskit/campuskit-backend/internal/services"
	"github.com/campuskit/campuskit-backend/internal/types"
)

type RiskHandler struct {
	log  *logger.Logger
	risk services.RiskService
	jobs services.JobService
}

func NewRiskHandler(baseLog *logger.Logger, risk services.RiskService, jobs services.JobService) *RiskHandler {
	return &RiskHandler{
		log:  baseLog.With("handler", "RiskHandler"),
		risk: risk,
		jobs: jobs,
	}
}

// Me serves the caller's current prediction. A miss enqueues an async
// recalculation and answers 202 with the job to poll; the read path never
// computes inline.
func (h *RiskHandler) Me(c *gin.Context) {
	schoolID := middleware.SchoolID(c)
	studentID := middleware.UserID(c)
	prediction, run, err := h.risk.GetCurrent(c.Request.Context(), schoolID, studentID)
	if err != nil {
		RespondError(c, err)
		return
	}
	if prediction == nil {
		RespondOK(c, http.StatusAccepted, gin.H{
			"status": "pending",
			"job_id": run.ID,
		})
		return
	}
	RespondOK(c, http.StatusOK, prediction)
}

type calculateRequest struct {
	StudentID uuid.UUID `json:"student_id"`
}

// Calculate recalculates one student synchronously. Staff only.
func (h *RiskHandler) Calculate(c *gin.Context) {
	var req calculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.New(http.StatusBadRequest, "INVALID_BODY", err))
		return
	}
	if req.StudentID == uuid.Nil {
		RespondError(c, apierr.New(http.StatusBadRequest, "MISSING_STUDENT", errors.New("student_id is required")))
		return
	}
	prediction, err := h.risk.RecalculateStudent(c.Request.Context(), middleware.SchoolID(c), req.StudentID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, prediction)
}

type recalculateAllRequest struct {
	Force bool `json:"force"`
}

// RecalculateAll enqueues a tenant-wide sweep as a background job.
func (h *RiskHandler) RecalculateAll(c *gin.Context) {
	var req recalculateAllRequest
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
		JobType:     types.JobTypeRiskRecalcBulk,
		EntityType:  "school",
		EntityID:    &schoolID,
		Payload:     map[string]interface{}{"school_id": schoolID, "force": req.Force},
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusAccepted, gin.H{"job_id": run.ID, "status": run.Status})
}

func (h *RiskHandler) Summary(c *gin.Context) {
	summary, err := h.risk.Summary(c.Request.Context(), middleware.SchoolID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, summary)
}
