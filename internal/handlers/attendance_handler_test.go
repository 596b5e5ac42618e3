package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"hrms-backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAttendanceRouter(db *gorm.DB, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != 0 {
			c.Set("user_id", userID)
			c.Set("role", "employee")
		}
		c.Next()
	})

	r.POST("/attendance/clock-in", AttendanceClockIn(db))
	r.POST("/attendance/clock-out", AttendanceClockOut(db))
	r.GET("/attendance/today", AttendanceToday(db))

	return r
}

func TestAttendance_ClockInClockOut(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "ivan@example.com")
	now := time.Date(2024, 3, 11, 9, 0, 0, 0, time.Local)
	advance := pinTime(t, now)

	employee := models.Employee{UserID: &user.ID, FirstName: "Иван", LastName: "Петров"}
	require.NoError(t, db.Create(&employee).Error)

	r := newAttendanceRouter(db, user.ID)

	// До прихода статус not_started
	w := getJSON(r, "/attendance/today")
	require.Equal(t, http.StatusOK, w.Code)

	var today struct {
		Duty models.DutyStatus `json:"duty"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &today))
	assert.Equal(t, models.DutyNotStarted, today.Duty)

	// Отмечаем приход
	w = postJSON(r, "/attendance/clock-in", gin.H{"lat": 43.2, "lng": 76.9})
	require.Equal(t, http.StatusOK, w.Code)

	var attendance models.Attendance
	require.NoError(t, db.Where("employee_id = ?", employee.ID).First(&attendance).Error)
	require.NotNil(t, attendance.ClockIn)
	assert.Equal(t, now.Unix(), attendance.ClockIn.Unix())
	require.NotNil(t, attendance.ClockInLatitude)
	assert.InDelta(t, 43.2, *attendance.ClockInLatitude, 0.0001)

	// Повторный приход отклоняется
	w = postJSON(r, "/attendance/clock-in", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Теперь on_duty
	w = getJSON(r, "/attendance/today")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &today))
	assert.Equal(t, models.DutyOnDuty, today.Duty)

	// Отмечаем уход
	advance(8 * time.Hour)
	w = postJSON(r, "/attendance/clock-out", nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, db.Where("employee_id = ?", employee.ID).First(&attendance).Error)
	require.NotNil(t, attendance.ClockOut)
	assert.Equal(t, now.Add(8*time.Hour).Unix(), attendance.ClockOut.Unix())

	// После ухода off_duty, запись за день одна
	w = getJSON(r, "/attendance/today")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &today))
	assert.Equal(t, models.DutyOffDuty, today.Duty)

	var count int64
	require.NoError(t, db.Model(&models.Attendance{}).Where("employee_id = ?", employee.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAttendance_ClockOutWithoutRecord(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "ivan@example.com")
	pinTime(t, time.Date(2024, 3, 11, 18, 0, 0, 0, time.Local))

	employee := models.Employee{UserID: &user.ID, FirstName: "Иван", LastName: "Петров"}
	require.NoError(t, db.Create(&employee).Error)

	r := newAttendanceRouter(db, user.ID)

	w := postJSON(r, "/attendance/clock-out", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttendance_NoEmployeeLink(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "ivan@example.com")
	pinTime(t, time.Date(2024, 3, 11, 9, 0, 0, 0, time.Local))

	r := newAttendanceRouter(db, user.ID)

	w := postJSON(r, "/attendance/clock-in", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
