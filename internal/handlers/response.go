package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// apiError is the machine-readable error carried by every failed response
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// apiResponse is the envelope every endpoint returns
type apiResponse struct {
	OK      bool        `json:"ok"`
	Data    interface{} `json:"data,omitempty"`
	Warning string      `json:"warning,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, apiResponse{OK: true, Data: data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, apiResponse{OK: true, Data: data})
}

// respondWarning reports success with a non-fatal warning, e.g. a
// confirmation email that could not be delivered.
func respondWarning(c *gin.Context, data interface{}, warning string) {
	c.JSON(http.StatusOK, apiResponse{OK: true, Data: data, Warning: warning})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, apiResponse{OK: false, Error: &apiError{Code: code, Message: message}})
}
