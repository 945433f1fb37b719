package handler

import (
	"net/http"

	"academy/internal/middleware"
	"academy/internal/service"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	wallets *service.WalletService
}

func NewWalletHandler(wallets *service.WalletService) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

// GetBalance handles GET /wallet. Users without a wallet have a balance of 0.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	balance, err := h.wallets.Balance(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// ListTransactions handles GET /wallet/transactions.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.wallets.Transactions(c.Request.Context(), middleware.GetUserID(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "total": total, "page": page, "limit": limit})
}
