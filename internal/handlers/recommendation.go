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

type RecommendationHandler struct {
	log  *logger.Logger
	recs services.RecommendationService
}

func NewRecommendationHandler(baseLog *logger.Logger, recs services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		log:  baseLog.With("handler", "RecommendationHandler"),
		recs: recs,
	}
}

func (h *RecommendationHandler) Me(c *gin.Context) {
	includeCompleted := c.Query("include_completed") == "true"
	recs, err := h.recs.ListForStudent(
		c.Request.Context(),
		middleware.SchoolID(c),
		middleware.UserID(c),
		includeCompleted,
	)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, recs)
}

func (h *RecommendationHandler) Complete(c *gin.Context) {
	recID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, apierr.New(http.StatusBadRequest, "INVALID_RECOMMENDATION_ID", err))
		return
	}
	var input services.CompleteInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			RespondError(c, apierr.New(http.StatusBadRequest, "INVALID_BODY", err))
			return
		}
	}
	rec, err := h.recs.Complete(
		c.Request.Context(),
		middleware.SchoolID(c),
		middleware.UserID(c),
		recID,
		input,
	)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, rec)
}
