package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soumyacodes007/social-media-backend/internal/errors"
	"github.com/soumyacodes007/social-media-backend/internal/logger"
	"github.com/soumyacodes007/social-media-backend/internal/metrics"
	"go.uber.org/zap"
)

// RespondWithAPIError sends a structured API error response
func RespondWithAPIError(c *gin.Context, apiErr *errors.APIError) {
	status := apiErr.HTTPStatus()
	fields := []zap.Field{
		zap.String("code", string(apiErr.Code)),
		zap.String("message", apiErr.Message),
		zap.String("path", c.FullPath()),
		logger.WithStatus(status),
	}
	if apiErr.Field != "" {
		fields = append(fields, zap.String("field", apiErr.Field))
	}
	if requestID := c.GetString("request_id"); requestID != "" {
		fields = append(fields, logger.WithRequestID(requestID))
	}

	if status >= http.StatusInternalServerError {
		if apiErr.Cause != "" {
			fields = append(fields, zap.String("cause", apiErr.Cause))
		}
		logger.Log.Error("API error", fields...)
	} else {
		logger.Log.Warn("API error", fields...)
	}
	metrics.RecordError(string(apiErr.Code), c.FullPath())

	c.AbortWithStatusJSON(status, apiErr)
}

// RespondNotFound sends a 404 Not Found response
func RespondNotFound(c *gin.Context, resource string) {
	RespondWithAPIError(c, errors.NotFound(resource))
}

// RespondBadRequest sends a 400 Bad Request response
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithAPIError(c, errors.BadRequest(message))
}

// RespondValidationError sends a 400 response naming the offending field
func RespondValidationError(c *gin.Context, field, message string) {
	RespondWithAPIError(c, errors.ValidationError(field, message))
}

// RespondForbidden sends a 403 Forbidden response
func RespondForbidden(c *gin.Context, message string) {
	RespondWithAPIError(c, errors.Forbidden(message))
}

// RespondConflict sends a 409 Conflict response
func RespondConflict(c *gin.Context, resource string) {
	RespondWithAPIError(c, errors.Conflict(resource))
}

// RespondInternalError sends a 500 response carrying err's text
func RespondInternalError(c *gin.Context, message string, err error) {
	RespondWithAPIError(c, errors.InternalError(message, err))
}

// RespondServiceUnavailable sends a 503 response
func RespondServiceUnavailable(c *gin.Context, message string) {
	RespondWithAPIError(c, errors.ServiceUnavailable(message))
}

// RespondOK sends a 200 JSON response
func RespondOK(c *gin.Context, body interface{}) {
	c.JSON(http.StatusOK, body)
}

// RespondCreated sends a 201 JSON response
func RespondCreated(c *gin.Context, body interface{}) {
	c.JSON(http.StatusCreated, body)
}

// RespondMessage sends {"message": message} with status
func RespondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}
