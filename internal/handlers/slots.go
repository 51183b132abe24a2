package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"grwcomm/internal/models"
	"grwcomm/internal/repositories"
)

// SlotHandler exposes read-only slot availability and pre-flight checks.
type SlotHandler struct {
	bookingRepo repositories.BookingRepository
	reportRepo  repositories.ReportRepository
	userRepo    repositories.UserRepository
}

// NewSlotHandler builds a SlotHandler.
func NewSlotHandler(
	bookingRepo repositories.BookingRepository,
	reportRepo repositories.ReportRepository,
	userRepo repositories.UserRepository,
) *SlotHandler {
	return &SlotHandler{bookingRepo: bookingRepo, reportRepo: reportRepo, userRepo: userRepo}
}

// GetAvailability lists another user's active categories with slot usage
// from the caller's perspective.
func (h *SlotHandler) GetAvailability(c *gin.Context) {
	ownerID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.userRepo.GetByID(ctx, ownerID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "user not found"})
		return
	}

	availability, err := h.bookingRepo.GetAvailability(ctx, ownerID, c.GetInt("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load availability"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": ownerID, "categories": availability})
}

// CanSend is the advisory pre-flight check: the send itself re-runs every
// rule inside its own transaction, so an "allowed" here can still be
// refused a moment later.
func (h *SlotHandler) CanSend(c *gin.Context) {
	receiverID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	categoryID, err := strconv.Atoi(c.Query("category_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	ctx := c.Request.Context()
	senderID := c.GetInt("userID")
	if senderID == receiverID {
		c.JSON(http.StatusOK, models.Deny(models.ReasonSelfMessage))
		return
	}

	if _, err := h.userRepo.GetByID(ctx, receiverID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusOK, models.Deny(models.ReasonNotFound))
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load receiver"})
		return
	}

	blocked, err := h.reportRepo.IsBlocked(ctx, senderID, receiverID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check block status"})
		return
	}
	if blocked {
		c.JSON(http.StatusOK, models.Deny(models.ReasonBlocked))
		return
	}

	decision, err := h.bookingRepo.CanSend(ctx, senderID, receiverID, categoryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check availability"})
		return
	}

	c.JSON(http.StatusOK, decision)
}
