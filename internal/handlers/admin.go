package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"grwcomm/internal/models"
	"grwcomm/internal/observability"
	"grwcomm/internal/repositories"
	"grwcomm/internal/telemetry"
)

// AdminHandler groups the staff-only moderation and maintenance surface.
type AdminHandler struct {
	reportRepo  repositories.ReportRepository
	creditRepo  repositories.CreditRepository
	bookingRepo repositories.BookingRepository
	userRepo    repositories.UserRepository
	audit       *telemetry.AuditEmitter
}

// NewAdminHandler builds an AdminHandler.
func NewAdminHandler(
	reportRepo repositories.ReportRepository,
	creditRepo repositories.CreditRepository,
	bookingRepo repositories.BookingRepository,
	userRepo repositories.UserRepository,
	audit *telemetry.AuditEmitter,
) *AdminHandler {
	return &AdminHandler{
		reportRepo:  reportRepo,
		creditRepo:  creditRepo,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		audit:       audit,
	}
}

// ListBlocks returns chat blocks for review. ?unreviewed=true narrows to
// the open queue.
func (h *AdminHandler) ListBlocks(c *gin.Context) {
	unreviewedOnly := c.Query("unreviewed") == "true"
	blocks, err := h.reportRepo.ListBlocks(c.Request.Context(), unreviewedOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load blocks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocks": blocks})
}

// ReviewBlock records an admin decision on a chat block. Dismiss marks
// the case reviewed without touching the block state.
func (h *AdminHandler) ReviewBlock(c *gin.Context) {
	blockID, err := strconv.Atoi(c.Param("block_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid block id"})
		return
	}

	var req struct {
		Action string `json:"action" binding:"required"`
		Notes  string `json:"notes" binding:"max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var active *bool
	switch req.Action {
	case models.ReviewActionDismiss:
		// reviewed, block state unchanged
	case models.ReviewActionBlock:
		v := true
		active = &v
	case models.ReviewActionUnblock:
		v := false
		active = &v
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown review action"})
		return
	}

	ctx := c.Request.Context()
	block, err := h.reportRepo.ReviewBlock(ctx, blockID, active, req.Notes)
	if err != nil {
		if errors.Is(err, repositories.ErrBlockNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "block not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to review block"})
		return
	}

	if req.Action == models.ReviewActionUnblock {
		h.audit.Emit(ctx, telemetry.ActionUserUnblocked,
			fmt.Sprintf("block %d", block.ID),
			requestIDFromContext(c), actorID(c), intPtr(block.BlockedUserID))
	}

	c.JSON(http.StatusOK, gin.H{"block": block})
}

// GrantCredits adds admin-granted or bonus credits to a user's account.
func (h *AdminHandler) GrantCredits(c *gin.Context) {
	var req struct {
		UserID int  `json:"user_id" binding:"required"`
		Amount int  `json:"amount" binding:"required,min=1,max=100"`
		Bonus  bool `json:"bonus"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.userRepo.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}

	adminID := c.GetInt("userID")
	account, err := h.creditRepo.AddCredits(ctx, req.UserID, req.Amount, req.Bonus, adminID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to grant credits"})
		return
	}

	observability.AddCreditsGranted(req.Amount)
	h.audit.Emit(ctx, telemetry.ActionCreditGranted,
		fmt.Sprintf("%d credits", req.Amount),
		requestIDFromContext(c), intPtr(adminID), intPtr(req.UserID))

	c.JSON(http.StatusOK, gin.H{"account": account, "available": account.Available()})
}

// CleanupBookings deletes expired slot bookings. Expiry already frees the
// slot on read; this just keeps the table small.
func (h *AdminHandler) CleanupBookings(c *gin.Context) {
	removed, err := h.bookingRepo.CleanupExpired(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clean up bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// SweepWeeklyResets force-applies the weekly reset to every stale account,
// so ledgers stay current even for users who never log in.
func (h *AdminHandler) SweepWeeklyResets(c *gin.Context) {
	ctx := c.Request.Context()
	reset, err := h.creditRepo.SweepWeeklyResets(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sweep weekly resets"})
		return
	}

	if reset > 0 {
		h.audit.Emit(ctx, telemetry.ActionWeeklyCreditReset,
			fmt.Sprintf("%d accounts", reset),
			requestIDFromContext(c), actorID(c), nil)
	}

	c.JSON(http.StatusOK, gin.H{"reset_accounts": reset})
}
