package handler

import (
	"errors"
	"net/http"
	"strconv"

	"academy/internal/domain"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors to HTTP responses. Unknown errors become a 500 and are attached
// to the gin context for the request logger.
func respondError(c *gin.Context, err error) {
	var ife *domain.InsufficientFundsError
	switch {
	case errors.As(err, &ife):
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":   "insufficient funds",
			"balance": ife.Balance,
			"price":   ife.Requested,
		})
	case errors.Is(err, domain.ErrConfiguration):
		c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": domain.ErrConfiguration.Error()})
	case errors.Is(err, domain.ErrPaymentProvider):
		c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": domain.ErrPaymentProvider.Error(), "retry": true})
	case errors.Is(err, domain.ErrPaymentNotCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "retry": true})
	case errors.Is(err, domain.ErrReferenceConflict):
		c.JSON(http.StatusConflict, gin.H{"error": domain.ErrReferenceConflict.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, domain.ErrPaymentNotFound),
		errors.Is(err, domain.ErrCourseNotFound),
		errors.Is(err, domain.ErrEnrollmentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrReferenceRequired),
		errors.Is(err, domain.ErrInvalidProgress),
		errors.Is(err, domain.ErrInvalidKind),
		errors.Is(err, domain.ErrInvalidPaymentMetadata):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
