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

func setupRevealRouter(handler *RevealHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.POST("/reveal", handler.Reveal)
	r.GET("/reveal/:user_id", handler.Status)
	return r
}

func TestRevealCreates(t *testing.T) {
	revelationRepo := new(mocks.RevelationRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewRevealHandler(revelationRepo, userRepo)
	router := setupRevealRouter(handler)

	catID := 5
	userRepo.On("GetByID", mock.Anything, 2).Return(models.User{ID: 2}, nil).Once()
	revelationRepo.On("Reveal", mock.Anything, 1, 2, &catID).Return(
		models.IdentityRevelation{ID: 8, RevealerID: 1, RevealedToID: 2, CategoryID: &catID}, true, nil,
	).Once()

	rec := postJSON(router, "/reveal", `{"revealed_to_id":2,"category_id":5}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	revelationRepo.AssertExpectations(t)
}

func TestRevealIdempotent(t *testing.T) {
	revelationRepo := new(mocks.RevelationRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewRevealHandler(revelationRepo, userRepo)
	router := setupRevealRouter(handler)

	userRepo.On("GetByID", mock.Anything, 2).Return(models.User{ID: 2}, nil).Once()
	revelationRepo.On("Reveal", mock.Anything, 1, 2, (*int)(nil)).Return(
		models.IdentityRevelation{ID: 8, RevealerID: 1, RevealedToID: 2}, false, nil,
	).Once()

	rec := postJSON(router, "/reveal", `{"revealed_to_id":2}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, false, resp["created"])
	revelationRepo.AssertExpectations(t)
}

func TestRevealSelfRejected(t *testing.T) {
	revelationRepo := new(mocks.RevelationRepositoryMock)
	handler := NewRevealHandler(revelationRepo, new(mocks.UserRepositoryMock))
	router := setupRevealRouter(handler)

	rec := postJSON(router, "/reveal", `{"revealed_to_id":1}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	revelationRepo.AssertNotCalled(t, "Reveal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRevealStatus(t *testing.T) {
	revelationRepo := new(mocks.RevelationRepositoryMock)
	handler := NewRevealHandler(revelationRepo, new(mocks.UserRepositoryMock))
	router := setupRevealRouter(handler)

	revelationRepo.On("HasRevealed", mock.Anything, 1, 2, (*int)(nil)).Return(true, nil).Once()

	rec := getJSON(router, "/reveal/2")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, true, resp["revealed"])
	revelationRepo.AssertExpectations(t)
}
