package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"hrms-backend/internal/middleware"
	"hrms-backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/auth/register", AuthRegister(db))
	r.POST("/auth/login", AuthLogin(db))

	protected := r.Group("")
	protected.Use(middleware.JWTAuth())
	protected.GET("/user", GetCurrentUser(db))

	return r
}

func TestAuth_RegisterLoginAndToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	db := setupTestDB(t)
	r := newAuthRouter(db)

	// Регистрация выдает токен сразу
	w := postJSON(r, "/auth/register", gin.H{
		"firstName": "Анна",
		"lastName":  "Смирнова",
		"email":     "anna@example.com",
		"password":  "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var registered AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	require.True(t, registered.Success)
	require.NotEmpty(t, registered.Token)

	// Пароль не хранится в открытом виде
	var user models.User
	require.NoError(t, db.Where("email = ?", "anna@example.com").First(&user).Error)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.NotEmpty(t, user.PasswordHash)

	// Повторная регистрация с тем же email отклоняется
	w = postJSON(r, "/auth/register", gin.H{
		"firstName": "Анна",
		"lastName":  "Смирнова",
		"email":     "anna@example.com",
		"password":  "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Вход с верным паролем
	w = postJSON(r, "/auth/login", gin.H{
		"email":    "anna@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var logged AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logged))
	require.True(t, logged.Success)
	require.NotEmpty(t, logged.Token)

	// Вход с неверным паролем
	w = postJSON(r, "/auth/login", gin.H{
		"email":    "anna@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Токен проходит через middleware
	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.Header.Set("Authorization", "Bearer "+logged.Token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var me models.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "anna@example.com", me.Email)

	// Без токена доступа нет
	req = httptest.NewRequest(http.MethodGet, "/user", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUser_PhotoURLNormalizedOnLoad(t *testing.T) {
	db := setupTestDB(t)

	user := models.User{
		FirstName:    "Анна",
		LastName:     "Иванова",
		Email:        "anna@example.com",
		PasswordHash: "x",
		PhotoUrl:     "uploads/anna.jpg",
	}
	require.NoError(t, db.Create(&user).Error)

	// Хук AfterFind добавляет ведущий слэш при чтении из базы
	var loaded models.User
	require.NoError(t, db.First(&loaded, user.ID).Error)
	assert.Equal(t, "/uploads/anna.jpg", loaded.PhotoUrl)

	// Уже нормализованный путь не меняется
	require.NoError(t, db.First(&loaded, user.ID).Error)
	assert.Equal(t, "/uploads/anna.jpg", loaded.PhotoUrl)
}
