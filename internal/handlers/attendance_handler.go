package handlers

import (
	"errors"
	"net/http"

	"hrms-backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ClockRequest необязательные координаты отметки
type ClockRequest struct {
	Latitude  *float64 `json:"lat"`
	Longitude *float64 `json:"lng"`
	Notes     string   `json:"notes"`
}

// requireEmployee находит сотрудника текущего пользователя или завершает
// запрос ошибкой
func requireEmployee(db *gorm.DB, c *gin.Context) (*models.Employee, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Требуется авторизация"})
		return nil, false
	}

	var employee models.Employee
	if err := db.Where("user_id = ?", userID).First(&employee).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "К учетной записи не привязан сотрудник"})
		return nil, false
	}

	return &employee, true
}

// AttendanceClockIn отмечает приход сотрудника за текущий день
func AttendanceClockIn(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		employee, ok := requireEmployee(db, c)
		if !ok {
			return
		}

		var req ClockRequest
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		today := dateOnly(timeNow())

		var attendance models.Attendance
		err := db.Where("employee_id = ? AND date = ?", employee.ID, today).First(&attendance).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			attendance = models.Attendance{
				EmployeeID: employee.ID,
				Date:       today,
			}
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении посещаемости"})
			return
		}

		if attendance.ClockIn != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Приход уже отмечен"})
			return
		}

		now := timeNow()
		attendance.ClockIn = &now
		attendance.ClockInLatitude = req.Latitude
		attendance.ClockInLongitude = req.Longitude
		if req.Notes != "" {
			attendance.Notes = req.Notes
		}

		if err := db.Save(&attendance).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при сохранении посещаемости"})
			return
		}

		c.JSON(http.StatusOK, attendance)
	}
}

// AttendanceClockOut отмечает уход сотрудника за текущий день
func AttendanceClockOut(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		employee, ok := requireEmployee(db, c)
		if !ok {
			return
		}

		var req ClockRequest
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		var attendance models.Attendance
		err := db.Where("employee_id = ? AND date = ?", employee.ID, dateOnly(timeNow())).
			First(&attendance).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Приход за сегодня не отмечен"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении посещаемости"})
			return
		}

		if attendance.ClockOut != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Уход уже отмечен"})
			return
		}

		now := timeNow()
		attendance.ClockOut = &now
		attendance.ClockOutLatitude = req.Latitude
		attendance.ClockOutLongitude = req.Longitude

		if err := db.Save(&attendance).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при сохранении посещаемости"})
			return
		}

		c.JSON(http.StatusOK, attendance)
	}
}

// AttendanceToday возвращает запись посещаемости за сегодня вместе
// с вычисленным статусом смены
func AttendanceToday(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		employee, ok := requireEmployee(db, c)
		if !ok {
			return
		}

		attendance, err := todayAttendance(db, employee.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении посещаемости"})
			return
		}
		duty := models.ResolveDutyStatus(attendance)

		c.JSON(http.StatusOK, gin.H{
			"attendance": attendance,
			"duty":       duty,
		})
	}
}
