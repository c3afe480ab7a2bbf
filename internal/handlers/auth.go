package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/campuskit-backend/internal/platform/apierr"
	"github.com/campuskit/campuskit-backend/internal/platform/logger"
	"github.com/campuskit/campuskit-backend/internal/services"
)

type AuthHandler struct {
	log  *logger.Logger
	auth services.AuthService
}

func NewAuthHandler(baseLog *logger.Logger, auth services.AuthService) *AuthHandler {
	return &AuthHandler{log: baseLog.With("handler", "AuthHandler"), auth: auth}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, apierr.New(http.StatusBadRequest, "INVALID_BODY", err))
		return
	}
	user, token, err := h.auth.Register(c.Request.Context(), input)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusCreated, gin.H{"user": user, "token": token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.New(http.StatusBadRequest, "INVALID_BODY", err))
		return
	}
	if req.Email == "" || req.Password == "" {
		RespondError(c, apierr.New(http.StatusBadRequest, "INVALID_CREDENTIALS", errors.New("email and password are required")))
		return
	}
	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"user": user, "token": token})
}
