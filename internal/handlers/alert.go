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

type AlertHandler struct {
	log    *logger.Logger
	alerts services.AlertService
}

func NewAlertHandler(baseLog *logger.Logger, alerts services.AlertService) *AlertHandler {
	return &AlertHandler{log: baseLog.With("handler", "AlertHandler"), alerts: alerts}
}

// List returns the tenant's active alerts, optionally filtered by student.
func (h *AlertHandler) List(c *gin.Context) {
	var studentID *uuid.UUID
	if raw := c.Query("student_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, apierr.New(http.StatusBadRequest, "INVALID_STUDENT_ID", err))
			return
		}
		studentID = &id
	}
	alerts, err := h.alerts.ListActive(c.Request.Context(), middleware.SchoolID(c), studentID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, alerts)
}

func (h *AlertHandler) Acknowledge(c *gin.Context) {
	alertID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, apierr.New(http.StatusBadRequest, "INVALID_ALERT_ID", err))
		return
	}
	alert, err := h.alerts.Acknowledge(c.Request.Context(), middleware.SchoolID(c), alertID, middleware.UserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, alert)
}
