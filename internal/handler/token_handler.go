package handler

import (
	"net/http"

	"academy/internal/middleware"
	"academy/internal/service"

	"github.com/gin-gonic/gin"
)

// TokenHandler serves token purchases: checkout creation and redirect-driven verification.
type TokenHandler struct {
	checkout *service.CheckoutService
	verifier *service.VerifierService
}

func NewTokenHandler(checkout *service.CheckoutService, verifier *service.VerifierService) *TokenHandler {
	return &TokenHandler{checkout: checkout, verifier: verifier}
}

// Checkout handles POST /tokens/checkout. Only the token quantity is taken from the client.
func (h *TokenHandler) Checkout(c *gin.Context) {
	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	res, err := h.checkout.CreateSession(c.Request.Context(), middleware.GetUserID(c), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// Verify handles POST /tokens/verify. Safe to call repeatedly, e.g. after every redirect reload.
func (h *TokenHandler) Verify(c *gin.Context) {
	var req struct {
		Reference string `json:"reference" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reference is required"})
		return
	}
	out, err := h.verifier.VerifyAndSettle(c.Request.Context(), req.Reference, service.Caller{
		UserID: middleware.GetUserID(c),
		IP:     c.ClientIP(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reference":       out.Reference,
		"tokens_credited": out.TokensCredited,
		"balance":         out.Balance,
	})
}

// Packages handles GET /tokens/packages.
func (h *TokenHandler) Packages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.checkout.Packages()})
}

// Payments handles GET /tokens/payments: the caller's checkout history.
func (h *TokenHandler) Payments(c *gin.Context) {
	_, limit := parsePagination(c)
	list, err := h.checkout.History(c.Request.Context(), middleware.GetUserID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}
