package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"grwcomm/internal/models"
	"grwcomm/internal/repositories"
)

var validVisibilities = map[string]bool{
	models.VisibilityFull:      true,
	models.VisibilityFirstOnly: true,
	models.VisibilityInitials:  true,
	models.VisibilityAnonymous: true,
}

// ProfileHandler serves the caller's own account and profile settings.
type ProfileHandler struct {
	userRepo repositories.UserRepository
}

// NewProfileHandler builds a ProfileHandler.
func NewProfileHandler(userRepo repositories.UserRepository) *ProfileHandler {
	return &ProfileHandler{userRepo: userRepo}
}

// Me returns the caller's user record and profile.
func (h *ProfileHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetInt("userID")

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load account"})
		return
	}
	profile, err := h.userRepo.GetProfile(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "profile": profile})
}

// Update changes the caller's profile settings. Verification status is
// admin-managed and cannot be set here.
func (h *ProfileHandler) Update(c *gin.Context) {
	var req struct {
		Bio            *string `json:"bio" binding:"omitempty,max=1000"`
		Location       *string `json:"location" binding:"omitempty,max=100"`
		NameVisibility *string `json:"name_visibility"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	profile, err := h.userRepo.GetProfile(ctx, c.GetInt("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Location != nil {
		profile.Location = *req.Location
	}
	if req.NameVisibility != nil {
		if !validVisibilities[*req.NameVisibility] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown name visibility"})
			return
		}
		profile.NameVisibility = *req.NameVisibility
	}

	if err := h.userRepo.UpdateProfile(ctx, profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}
