package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"grwcomm/internal/mocks"
	"grwcomm/internal/models"
	"grwcomm/internal/repositories"
)

func setupSlotRouter(handler *SlotHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/users/:user_id/slots", handler.GetAvailability)
	r.GET("/users/:user_id/can-send", handler.CanSend)
	return r
}

func TestGetAvailability(t *testing.T) {
	bookingRepo := new(mocks.BookingRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewSlotHandler(bookingRepo, new(mocks.ReportRepositoryMock), userRepo)
	router := setupSlotRouter(handler)

	userRepo.On("GetByID", mock.Anything, 2).Return(models.User{ID: 2}, nil).Once()
	bookingRepo.On("GetAvailability", mock.Anything, 2, 1).Return([]models.SlotAvailability{
		{TotalSlots: 5, UsedSlots: 2, AvailableSlots: 3, Status: models.SlotStatusAvailable},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/2/slots", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	bookingRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestGetAvailabilityUnknownUser(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewSlotHandler(new(mocks.BookingRepositoryMock), new(mocks.ReportRepositoryMock), userRepo)
	router := setupSlotRouter(handler)

	userRepo.On("GetByID", mock.Anything, 99).Return(models.User{}, repositories.ErrUserNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/99/slots", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestCanSendSelf(t *testing.T) {
	handler := NewSlotHandler(new(mocks.BookingRepositoryMock), new(mocks.ReportRepositoryMock), new(mocks.UserRepositoryMock))
	router := setupSlotRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/users/1/can-send?category_id=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var decision models.Decision
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&decision))
	require.False(t, decision.Allowed)
	require.Equal(t, models.ReasonSelfMessage, decision.Reason)
}

func TestCanSendBlocked(t *testing.T) {
	reportRepo := new(mocks.ReportRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewSlotHandler(new(mocks.BookingRepositoryMock), reportRepo, userRepo)
	router := setupSlotRouter(handler)

	userRepo.On("GetByID", mock.Anything, 2).Return(models.User{ID: 2}, nil).Once()
	reportRepo.On("IsBlocked", mock.Anything, 1, 2).Return(true, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/2/can-send?category_id=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var decision models.Decision
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&decision))
	require.Equal(t, models.ReasonBlocked, decision.Reason)
	reportRepo.AssertExpectations(t)
}

func TestCanSendDelegatesToRepo(t *testing.T) {
	bookingRepo := new(mocks.BookingRepositoryMock)
	reportRepo := new(mocks.ReportRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewSlotHandler(bookingRepo, reportRepo, userRepo)
	router := setupSlotRouter(handler)

	userRepo.On("GetByID", mock.Anything, 2).Return(models.User{ID: 2}, nil).Once()
	reportRepo.On("IsBlocked", mock.Anything, 1, 2).Return(false, nil).Once()
	bookingRepo.On("CanSend", mock.Anything, 1, 2, 5).Return(models.Deny(models.ReasonSlotsFull), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/2/can-send?category_id=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var decision models.Decision
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&decision))
	require.Equal(t, models.ReasonSlotsFull, decision.Reason)
	bookingRepo.AssertExpectations(t)
}
