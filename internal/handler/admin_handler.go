package handler

import (
	"net/http"

	"academy/internal/domain"
	"academy/internal/middleware"
	"academy/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler is the back-office surface: token grants and ledger inspection.
type AdminHandler struct {
	wallets *service.WalletService
}

func NewAdminHandler(wallets *service.WalletService) *AdminHandler {
	return &AdminHandler{wallets: wallets}
}

// GrantTokens handles POST /admin/users/:user_id/tokens.
func (h *AdminHandler) GrantTokens(c *gin.Context) {
	var req struct {
		Amount    int64  `json:"amount" binding:"required"`
		Reference string `json:"reference" binding:"max=255"`
		Memo      string `json:"memo" binding:"max=255"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := c.Param("user_id")
	entry, created, err := h.wallets.Grant(c.Request.Context(), middleware.GetUserID(c), userID, req.Amount, req.Reference, req.Memo)
	if err != nil {
		respondError(c, err)
		return
	}
	balance, err := h.wallets.Balance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"entry": entry, "created": created, "balance": balance})
}

// GetUserWallet handles GET /admin/users/:user_id/wallet.
func (h *AdminHandler) GetUserWallet(c *gin.Context) {
	userID := c.Param("user_id")
	page, limit := parsePagination(c)
	balance, err := h.wallets.Balance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	entries, total, err := h.wallets.Transactions(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"balance": balance,
		"data":    entries,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// ListTransactions handles GET /admin/transactions?kind=.
func (h *AdminHandler) ListTransactions(c *gin.Context) {
	kind := domain.EntryKind(c.Query("kind"))
	if kind != "" && !kind.Valid() {
		respondError(c, domain.ErrInvalidKind)
		return
	}
	page, limit := parsePagination(c)
	list, total, err := h.wallets.AllTransactions(c.Request.Context(), kind, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "total": total, "page": page, "limit": limit})
}
