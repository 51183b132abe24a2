package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"grwcomm/internal/repositories"
)

// CreditHandler serves the caller's own credit account and ledger.
type CreditHandler struct {
	creditRepo repositories.CreditRepository
}

// NewCreditHandler builds a CreditHandler.
func NewCreditHandler(creditRepo repositories.CreditRepository) *CreditHandler {
	return &CreditHandler{creditRepo: creditRepo}
}

// GetAccount returns the caller's account, applying the lazy weekly reset
// on the way through.
func (h *CreditHandler) GetAccount(c *gin.Context) {
	account, err := h.creditRepo.GetOrCreate(c.Request.Context(), c.GetInt("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load credit account"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": account, "available": account.Available()})
}

// ListTransactions returns recent ledger entries, newest first.
func (h *CreditHandler) ListTransactions(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	txs, err := h.creditRepo.ListTransactions(c.Request.Context(), c.GetInt("userID"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}
