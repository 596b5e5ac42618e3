package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"hrms-backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newLeaveRouter(db *gorm.DB, userID uint, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	})

	r.POST("/leave-requests", LeaveRequestCreate(db))
	r.GET("/leave-requests", LeaveRequestList(db))
	r.PUT("/leave-requests/:id/status", LeaveRequestDecide(db, nil))

	return r
}

func TestLeaveRequest_SubmitAndDecide(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "ivan@example.com")
	pinTime(t, time.Date(2024, 3, 11, 9, 0, 0, 0, time.Local))

	employee := models.Employee{UserID: &user.ID, FirstName: "Иван", LastName: "Петров"}
	require.NoError(t, db.Create(&employee).Error)

	category := models.LeaveCategory{Name: "Ежегодный отпуск", DaysPerYear: 24}
	require.NoError(t, db.Create(&category).Error)

	r := newLeaveRouter(db, user.ID, "employee")

	w := postJSON(r, "/leave-requests", gin.H{
		"leave_category_id": category.ID,
		"start_date":        "2024-04-01T00:00:00Z",
		"end_date":          "2024-04-14T00:00:00Z",
		"reason":            "Семейные обстоятельства",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var created models.LeaveRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, models.LeaveStatusPending, created.Status)

	// Дата конца раньше начала отклоняется
	w = postJSON(r, "/leave-requests", gin.H{
		"leave_category_id": category.ID,
		"start_date":        "2024-04-14T00:00:00Z",
		"end_date":          "2024-04-01T00:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Админ одобряет заявку
	admin := newLeaveRouter(db, 0, "admin")
	w = putJSON(admin, fmt.Sprintf("/leave-requests/%d/status", created.ID), gin.H{
		"status":  "approved",
		"comment": "Согласовано",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var decided models.LeaveRequest
	require.NoError(t, db.First(&decided, created.ID).Error)
	assert.Equal(t, models.LeaveStatusApproved, decided.Status)
	require.NotNil(t, decided.DecidedAt)

	// Повторное решение отклоняется
	w = putJSON(admin, fmt.Sprintf("/leave-requests/%d/status", created.ID), gin.H{"status": "rejected"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Недопустимый статус не проходит валидацию
	w = putJSON(admin, fmt.Sprintf("/leave-requests/%d/status", created.ID), gin.H{"status": "maybe"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
