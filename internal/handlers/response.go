package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/campuskit-backend/internal/platform/apierr"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *errorBody  `json:"error,omitempty"`
}

func RespondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, envelope{Success: true, Data: data})
}

// RespondError maps apierr values onto their status and code; anything else
// is a 500 with a generic body so internals never leak to clients.
func RespondError(c *gin.Context, err error) {
	if apiErr, ok := apierr.From(err); ok {
		status := apiErr.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		code := apiErr.Code
		if code == "" {
			code = "ERROR"
		}
		c.JSON(status, envelope{Success: false, Error: &errorBody{Code: code, Message: apiErr.Error()}})
		return
	}
	c.JSON(http.StatusInternalServerError, envelope{
		Success: false,
		Error:   &errorBody{Code: "INTERNAL", Message: "internal server error"},
	})
}
