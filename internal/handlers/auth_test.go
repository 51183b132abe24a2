package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"grwcomm/internal/middleware"
	"grwcomm/internal/mocks"
	"grwcomm/internal/models"
)

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	return r
}

func TestRegisterHashesPassword(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, "secret", time.Hour)
	router := setupAuthRouter(handler)

	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Username == "alex" &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter2hunter2")) == nil
	})).Return(models.User{ID: 1, Username: "alex"}, nil).Once()

	rec := postJSON(router, "/auth/register",
		`{"username":"alex","email":"alex@example.com","password":"hunter2hunter2"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestLoginIssuesToken(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, "secret", time.Hour)
	router := setupAuthRouter(handler)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	userRepo.On("GetByUsername", mock.Anything, "alex").Return(models.User{
		ID: 1, Username: "alex", PasswordHash: string(hash), IsActive: true,
	}, nil).Once()

	rec := postJSON(router, "/auth/login", `{"username":"alex","password":"hunter2hunter2"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	token, ok := resp["token"].(string)
	require.True(t, ok)

	claims, err := middleware.ParseToken("secret", token)
	require.NoError(t, err)
	require.Equal(t, 1, claims.UserID)
	userRepo.AssertExpectations(t)
}

func TestLoginWrongPassword(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, "secret", time.Hour)
	router := setupAuthRouter(handler)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	userRepo.On("GetByUsername", mock.Anything, "alex").Return(models.User{
		ID: 1, Username: "alex", PasswordHash: string(hash), IsActive: true,
	}, nil).Once()

	rec := postJSON(router, "/auth/login", `{"username":"alex","password":"wrong-password"}`)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	userRepo.AssertExpectations(t)
}
