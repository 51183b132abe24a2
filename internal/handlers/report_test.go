package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"grwcomm/internal/mocks"
	"grwcomm/internal/models"
)

func setupReportRouter(handler *ReportHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.POST("/reports", handler.Create)
	r.GET("/blocks", handler.ListBlocks)
	return r
}

func TestCreateReportActivatesBlock(t *testing.T) {
	reportRepo := new(mocks.ReportRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewReportHandler(reportRepo, userRepo, nil)
	router := setupReportRouter(handler)

	userRepo.On("GetByID", mock.Anything, 2).Return(models.User{ID: 2}, nil).Once()
	reportRepo.On("CreateReport", mock.Anything, models.MessageReport{
		ReporterID: 1, ReportedUserID: 2, ReportType: models.ReportTypeSpam, Note: "spammy",
	}).Return(
		models.MessageReport{ID: 5, ReporterID: 1, ReportedUserID: 2, ReportType: models.ReportTypeSpam},
		models.ChatBlock{ID: 3, ReporterID: 1, BlockedUserID: 2, IsActive: true},
		nil,
	).Once()

	rec := postJSON(router, "/reports", `{"reported_user_id":2,"report_type":"spam","note":"spammy"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Block models.ChatBlock `json:"block"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.True(t, resp.Block.IsActive)
	reportRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestCreateReportUnknownType(t *testing.T) {
	reportRepo := new(mocks.ReportRepositoryMock)
	handler := NewReportHandler(reportRepo, new(mocks.UserRepositoryMock), nil)
	router := setupReportRouter(handler)

	rec := postJSON(router, "/reports", `{"reported_user_id":2,"report_type":"grudge"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	reportRepo.AssertNotCalled(t, "CreateReport", mock.Anything, mock.Anything)
}

func TestCreateReportSelf(t *testing.T) {
	reportRepo := new(mocks.ReportRepositoryMock)
	handler := NewReportHandler(reportRepo, new(mocks.UserRepositoryMock), nil)
	router := setupReportRouter(handler)

	rec := postJSON(router, "/reports", `{"reported_user_id":1,"report_type":"spam"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	reportRepo.AssertNotCalled(t, "CreateReport", mock.Anything, mock.Anything)
}

func TestListBlocksFiltersToCaller(t *testing.T) {
	reportRepo := new(mocks.ReportRepositoryMock)
	handler := NewReportHandler(reportRepo, new(mocks.UserRepositoryMock), nil)
	router := setupReportRouter(handler)

	reportRepo.On("ListBlocks", mock.Anything, false).Return([]models.ChatBlock{
		{ID: 1, ReporterID: 1, BlockedUserID: 2},
		{ID: 2, ReporterID: 9, BlockedUserID: 1},
	}, nil).Once()

	rec := getJSON(router, "/blocks")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Blocks []models.ChatBlock `json:"blocks"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Blocks, 1)
	require.Equal(t, 1, resp.Blocks[0].ID)
	reportRepo.AssertExpectations(t)
}
