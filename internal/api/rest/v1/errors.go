package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/payments"
	"github.com/linapoint/resortagents/internal/service"
	"go.uber.org/zap"
)

// statusFor maps a use-case error onto an HTTP status and a short error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, payments.ErrInvalidSignature):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// errorMessage strips the sentinel prefix from validation failures so the
// client sees only the detail.
func errorMessage(err error) string {
	msg := err.Error()
	return strings.TrimPrefix(msg, service.ErrInvalidInput.Error()+": ")
}

func respondError(ctx *gin.Context, log logger.Logger, err error) {
	status, code := statusFor(err)
	fields := []zap.Field{
		zap.String("path", ctx.FullPath()),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		log.Error("request failed", fields...)
	} else {
		log.Warn("request rejected", fields...)
	}
	ctx.AbortWithStatusJSON(status, ErrorResponse{Error: code, Message: errorMessage(err)})
}

func badRequest(ctx *gin.Context, message string) {
	ctx.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: message})
}
