// internal/utils/response.go
package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// APIResponse is the uniform envelope: {"status":"success","data":{...}} for
// 2xx, {"status":"fail"|"error","message":...} otherwise. "fail" marks client
// mistakes, "error" marks server faults.
type APIResponse struct {
	Status     string      `json:"status"`
	Message    string      `json:"message,omitempty"`
	Results    *int        `json:"results,omitempty"`
	Total      *int64      `json:"total,omitempty"`
	TotalPages *int        `json:"totalPages,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Status: "success", Data: data})
}

func SuccessMessageResponse(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Status: "success", Message: message, Data: data})
}

func CreatedResponse(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Status: "success", Message: message, Data: data})
}

func NoContentResponse(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ListResponse reports a result count alongside the data, the way list
// endpoints of this API always have.
func ListResponse(c *gin.Context, results int, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Status: "success", Results: &results, Data: data})
}

// PaginatedResponse adds total/totalPages for paginated collections.
func PaginatedResponse(c *gin.Context, results int, total int64, totalPages int, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Status:     "success",
		Results:    &results,
		Total:      &total,
		TotalPages: &totalPages,
		Data:       data,
	})
}

func FailResponse(c *gin.Context, status int, message string) {
	c.JSON(status, APIResponse{Status: "fail", Message: message})
}

func BadRequestResponse(c *gin.Context, message string) {
	FailResponse(c, http.StatusBadRequest, message)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	if message == "" {
		message = "You are not logged in"
	}
	FailResponse(c, http.StatusUnauthorized, message)
}

func ForbiddenResponse(c *gin.Context, message string) {
	if message == "" {
		message = "You do not have permission to perform this action"
	}
	FailResponse(c, http.StatusForbidden, message)
}

func NotFoundResponse(c *gin.Context, message string) {
	FailResponse(c, http.StatusNotFound, message)
}

func InternalErrorResponse(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, APIResponse{
		Status:  "error",
		Message: "Something went wrong",
	})
}

// ErrorResponse maps an operational AppError onto the envelope; anything else
// is logged and hidden behind a generic 500.
func ErrorResponse(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		FailResponse(c, appErr.Status, appErr.Message)
		return
	}

	logrus.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Error("unhandled error")
	InternalErrorResponse(c)
}

func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if userID, exists := c.Get("user_id"); exists {
		if userIDStr, ok := userID.(string); ok {
			return userIDStr, true
		}
	}
	return "", false
}

func GetUserRoleFromContext(c *gin.Context) (string, bool) {
	if role, exists := c.Get("user_role"); exists {
		if roleStr, ok := role.(string); ok {
			return roleStr, true
		}
	}
	return "", false
}
