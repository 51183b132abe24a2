package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"grwcomm/internal/models"
	"grwcomm/internal/observability"
	"grwcomm/internal/repositories"
	"grwcomm/internal/telemetry"
)

var validReportTypes = map[string]bool{
	models.ReportTypeSpam:       true,
	models.ReportTypeHarassment: true,
	models.ReportTypeImpostor:   true,
	models.ReportTypeOther:      true,
}

// ReportHandler files user reports, which block the reported user in both
// directions until an admin reviews the case.
type ReportHandler struct {
	reportRepo repositories.ReportRepository
	userRepo   repositories.UserRepository
	audit      *telemetry.AuditEmitter
}

// NewReportHandler builds a ReportHandler.
func NewReportHandler(reportRepo repositories.ReportRepository, userRepo repositories.UserRepository, audit *telemetry.AuditEmitter) *ReportHandler {
	return &ReportHandler{reportRepo: reportRepo, userRepo: userRepo, audit: audit}
}

// Create files a report against a user and activates the chat block in
// the same transaction.
func (h *ReportHandler) Create(c *gin.Context) {
	var req struct {
		ReportedUserID int    `json:"reported_user_id" binding:"required"`
		ReportType     string `json:"report_type" binding:"required"`
		Note           string `json:"note" binding:"max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validReportTypes[req.ReportType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown report type"})
		return
	}

	ctx := c.Request.Context()
	reporterID := c.GetInt("userID")
	if req.ReportedUserID == reporterID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot report yourself"})
		return
	}
	if _, err := h.userRepo.GetByID(ctx, req.ReportedUserID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}

	report, block, err := h.reportRepo.CreateReport(ctx, models.MessageReport{
		ReporterID:     reporterID,
		ReportedUserID: req.ReportedUserID,
		ReportType:     req.ReportType,
		Note:           req.Note,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to file report"})
		return
	}

	observability.IncReport()
	h.audit.Emit(ctx, telemetry.ActionUserReported,
		fmt.Sprintf("%s report %d", report.ReportType, report.ID),
		requestIDFromContext(c), intPtr(reporterID), intPtr(req.ReportedUserID))

	c.JSON(http.StatusCreated, gin.H{"report": report, "block": block})
}

// ListBlocks returns chat blocks the caller filed.
func (h *ReportHandler) ListBlocks(c *gin.Context) {
	blocks, err := h.reportRepo.ListBlocks(c.Request.Context(), false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load blocks"})
		return
	}

	userID := c.GetInt("userID")
	mine := make([]models.ChatBlock, 0, len(blocks))
	for _, b := range blocks {
		if b.ReporterID == userID {
			mine = append(mine, b)
		}
	}
	c.JSON(http.StatusOK, gin.H{"blocks": mine})
}
