package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"grwcomm/internal/models"
	"grwcomm/internal/repositories"
)

// CategoryHandler manages a user's own message categories.
type CategoryHandler struct {
	categoryRepo repositories.CategoryRepository
}

// NewCategoryHandler builds a CategoryHandler.
func NewCategoryHandler(categoryRepo repositories.CategoryRepository) *CategoryHandler {
	return &CategoryHandler{categoryRepo: categoryRepo}
}

// List returns all categories the caller owns, active or not.
func (h *CategoryHandler) List(c *gin.Context) {
	userID := c.GetInt("userID")
	cats, err := h.categoryRepo.ListByOwner(c.Request.Context(), userID, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

// Create adds a category for the caller.
func (h *CategoryHandler) Create(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required,max=50"`
		SlotLimit *int   `json:"slot_limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slotLimit := 5
	if req.SlotLimit != nil {
		if *req.SlotLimit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "slot limit must not be negative"})
			return
		}
		slotLimit = *req.SlotLimit
	}

	cat, err := h.categoryRepo.Create(c.Request.Context(), models.MessageCategory{
		OwnerID:   c.GetInt("userID"),
		Name:      req.Name,
		SlotLimit: slotLimit,
		IsActive:  true,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "category name already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create category"})
		return
	}

	c.JSON(http.StatusCreated, cat)
}

// Update changes name, slot limit or active flag of an owned category.
func (h *CategoryHandler) Update(c *gin.Context) {
	categoryID, err := strconv.Atoi(c.Param("category_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	existing, err := h.categoryRepo.GetByID(c.Request.Context(), categoryID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "category not found"})
		return
	}
	if existing.OwnerID != c.GetInt("userID") {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your category"})
		return
	}

	var req struct {
		Name      *string `json:"name" binding:"omitempty,max=50"`
		SlotLimit *int    `json:"slot_limit"`
		IsActive  *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.SlotLimit != nil {
		if *req.SlotLimit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "slot limit must not be negative"})
			return
		}
		existing.SlotLimit = *req.SlotLimit
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	updated, err := h.categoryRepo.Update(c.Request.Context(), existing)
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "category name already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update category"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete removes an owned category. Message history keeps a nulled
// category reference; open bookings against it are released.
func (h *CategoryHandler) Delete(c *gin.Context) {
	categoryID, err := strconv.Atoi(c.Param("category_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	err = h.categoryRepo.Delete(c.Request.Context(), c.GetInt("userID"), categoryID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "category not found"})
		return
	}

	c.Status(http.StatusNoContent)
}
