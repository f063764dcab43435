package v1

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/smartcollab/services"
)

func respondData(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, gin.H{
		"status": "success",
		"data":   data,
	})
}

func respondMessage(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{
		"status":  "success",
		"message": message,
	})
}

func respondValidation(ctx *gin.Context, messages []string) {
	ctx.JSON(http.StatusUnprocessableEntity, gin.H{
		"status":  "error",
		"message": "Validation failed",
		"errors":  messages,
	})
}

// respondError maps service errors to status codes; unexpected errors are logged and hidden
func respondError(ctx *gin.Context, log *logrus.Entry, op string, err error) {
	if v, ok := services.AsValidationError(err); ok {
		respondValidation(ctx, v.Messages)
		return
	}

	switch {
	case errors.Is(err, services.ErrForbidden):
		ctx.JSON(http.StatusForbidden, gin.H{"status": "error", "message": "Access denied"})
	case errors.Is(err, services.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Resource not found"})
	case errors.Is(err, services.ErrInvalidCredentials):
		ctx.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Invalid email or password"})
	default:
		_ = ctx.Error(err)
		log.WithField("operation", op).WithError(err).Error("request failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "An unexpected error occurred",
		})
	}
}

// respondBindError reports malformed or invalid request bodies
func respondBindError(ctx *gin.Context, err error) {
	if messages := bindingMessages(err); len(messages) > 0 {
		respondValidation(ctx, messages)
		return
	}
	ctx.JSON(http.StatusBadRequest, gin.H{
		"status":  "error",
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// optionalFile returns the uploaded file of a form field or nil when none was sent
func optionalFile(ctx *gin.Context, field string) (*multipart.FileHeader, error) {
	header, err := ctx.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	return header, err
}
