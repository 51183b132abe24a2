package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"grwcomm/internal/repositories"
)

// RevealHandler manages one-way identity revelations.
type RevealHandler struct {
	revelationRepo repositories.RevelationRepository
	userRepo       repositories.UserRepository
}

// NewRevealHandler builds a RevealHandler.
func NewRevealHandler(revelationRepo repositories.RevelationRepository, userRepo repositories.UserRepository) *RevealHandler {
	return &RevealHandler{revelationRepo: revelationRepo, userRepo: userRepo}
}

// Reveal shows the caller's real name to another user, optionally scoped
// to a category. Idempotent and irreversible.
func (h *RevealHandler) Reveal(c *gin.Context) {
	var req struct {
		RevealedToID int  `json:"revealed_to_id" binding:"required"`
		CategoryID   *int `json:"category_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	userID := c.GetInt("userID")
	if req.RevealedToID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot reveal identity to yourself"})
		return
	}
	if _, err := h.userRepo.GetByID(ctx, req.RevealedToID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}

	revelation, created, err := h.revelationRepo.Reveal(ctx, userID, req.RevealedToID, req.CategoryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reveal identity"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"revelation": revelation, "created": created})
}

// Status reports whether the caller has revealed themselves to a user.
func (h *RevealHandler) Status(c *gin.Context) {
	revealedToID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var categoryID *int
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid category id %q", raw)})
			return
		}
		categoryID = &id
	}

	revealed, err := h.revelationRepo.HasRevealed(c.Request.Context(), c.GetInt("userID"), revealedToID, categoryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check revelation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"revealed": revealed})
}
