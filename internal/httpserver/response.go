package httpserver

import (
	"errors"
	"net/http"

	"storefront/internal/commerce"
	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func mapErrorToStatus(err error) int {
	var apiErr *commerce.APIError
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNoCart), errors.Is(err, domain.ErrNoCoupon):
		return http.StatusConflict
	case errors.Is(err, commerce.ErrUnavailable):
		return http.StatusBadGateway
	case errors.As(err, &apiErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *handlers) fail(c *gin.Context, err error, extra gin.H) {
	status := mapErrorToStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	body := gin.H{"error": commerce.UserMessage(err, err.Error())}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
