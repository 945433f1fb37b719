package handler

import (
	"context"
	"net/http"
	"time"

	"academy/pkg/payment"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type breakerState interface {
	State() string
}

type HealthHandler struct {
	db       *gorm.DB
	provider payment.Provider
}

func NewHealthHandler(db *gorm.DB, provider payment.Provider) *HealthHandler {
	return &HealthHandler{db: db, provider: provider}
}

// Health reports database reachability and the payment processor's circuit state. Only the
// database decides the status code; an open circuit still serves enrollments and balances.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, dbState := http.StatusOK, "ok"
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		status, dbState = http.StatusServiceUnavailable, "unreachable"
	}

	processor := gin.H{"configured": h.provider != nil}
	if h.provider != nil {
		processor["name"] = h.provider.Name()
		if b, ok := h.provider.(breakerState); ok {
			processor["circuit"] = b.State()
		}
	}
	c.JSON(status, gin.H{"status": dbState, "database": dbState, "payment_processor": processor})
}
