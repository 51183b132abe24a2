package handlers

import (
	"bytes"
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

func setupCategoryRouter(handler *CategoryHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/categories", handler.List)
	r.POST("/categories", handler.Create)
	r.PATCH("/categories/:category_id", handler.Update)
	r.DELETE("/categories/:category_id", handler.Delete)
	return r
}

func TestCreateCategoryDefaultsSlotLimit(t *testing.T) {
	categoryRepo := new(mocks.CategoryRepositoryMock)
	handler := NewCategoryHandler(categoryRepo)
	router := setupCategoryRouter(handler)

	categoryRepo.On("Create", mock.Anything, models.MessageCategory{
		OwnerID: 1, Name: "Coffee Chat", SlotLimit: 5, IsActive: true,
	}).Return(models.MessageCategory{ID: 3, OwnerID: 1, Name: "Coffee Chat", SlotLimit: 5, IsActive: true}, nil).Once()

	rec := postJSON(router, "/categories", `{"name":"Coffee Chat"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	categoryRepo.AssertExpectations(t)
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	categoryRepo := new(mocks.CategoryRepositoryMock)
	handler := NewCategoryHandler(categoryRepo)
	router := setupCategoryRouter(handler)

	categoryRepo.On("Create", mock.Anything, mock.Anything).
		Return(models.MessageCategory{}, repositories.ErrCategoryExists).Once()

	rec := postJSON(router, "/categories", `{"name":"Coffee Chat"}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	categoryRepo.AssertExpectations(t)
}

func TestUpdateCategoryNotOwner(t *testing.T) {
	categoryRepo := new(mocks.CategoryRepositoryMock)
	handler := NewCategoryHandler(categoryRepo)
	router := setupCategoryRouter(handler)

	categoryRepo.On("GetByID", mock.Anything, 3).Return(
		models.MessageCategory{ID: 3, OwnerID: 9}, nil).Once()

	req := httptest.NewRequest(http.MethodPatch, "/categories/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	categoryRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateCategorySlotLimit(t *testing.T) {
	categoryRepo := new(mocks.CategoryRepositoryMock)
	handler := NewCategoryHandler(categoryRepo)
	router := setupCategoryRouter(handler)

	categoryRepo.On("GetByID", mock.Anything, 3).Return(
		models.MessageCategory{ID: 3, OwnerID: 1, Name: "Coffee Chat", SlotLimit: 5, IsActive: true}, nil).Once()
	categoryRepo.On("Update", mock.Anything, models.MessageCategory{
		ID: 3, OwnerID: 1, Name: "Coffee Chat", SlotLimit: 2, IsActive: true,
	}).Return(models.MessageCategory{ID: 3, OwnerID: 1, Name: "Coffee Chat", SlotLimit: 2, IsActive: true}, nil).Once()

	req := httptest.NewRequest(http.MethodPatch, "/categories/3", bytes.NewBufferString(`{"slot_limit":2}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.MessageCategory
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 2, resp.SlotLimit)
	categoryRepo.AssertExpectations(t)
}

func TestDeleteCategory(t *testing.T) {
	categoryRepo := new(mocks.CategoryRepositoryMock)
	handler := NewCategoryHandler(categoryRepo)
	router := setupCategoryRouter(handler)

	categoryRepo.On("Delete", mock.Anything, 1, 3).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/categories/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	categoryRepo.AssertExpectations(t)
}
