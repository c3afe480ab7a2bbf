package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campuskit/campuskit-backend/internal/middleware"
	"github.com/campuskit/campuskit-backend/internal/platform/apierr"
	"github.com/campuskit/campuskit-backend/internal/platform/logger"
	"github.com/campuskit/campuskit-backend/internal/services"
)

type JobHandler struct {
	log  *logger.Logger
	jobs services.JobService
}

func NewJobHandler(baseLog *logger.Logger, jobs services.JobService) *JobHandler {
	return &JobHandler{log: baseLog.With("handler", "JobHandler"), jobs: jobs}
}

func (h *JobHandler) GetByID(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, apierr.New(http.StatusBadRequest, "INVALID_JOB_ID", err))
		return
	}
	run, err := h.jobs.GetByID(c.Request.Context(), middleware.SchoolID(c), jobID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, run)
}
