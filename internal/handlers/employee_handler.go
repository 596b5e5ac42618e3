package handlers

import (
	"errors"
	"net/http"
	"time"

	"hrms-backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type EmployeeCreateRequest struct {
	FirstName    string     `json:"firstName" binding:"required"`
	LastName     string     `json:"lastName" binding:"required"`
	Position     string     `json:"position"`
	DepartmentID *uint      `json:"department_id"`
	ShiftID      *uint      `json:"shift_id"`
	HireDate     *time.Time `json:"hire_date"`
	UserID       *uint      `json:"user_id"`
}

// isUniqueViolation проверяет, что ошибка БД вызвана нарушением
// уникального ограничения
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// EmployeeCreate создает карточку сотрудника
func EmployeeCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req EmployeeCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		employee := models.Employee{
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Position:     req.Position,
			DepartmentID: req.DepartmentID,
			ShiftID:      req.ShiftID,
			HireDate:     req.HireDate,
			UserID:       req.UserID,
		}

		if err := db.Create(&employee).Error; err != nil {
			if isUniqueViolation(err) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Пользователь уже привязан к другому сотруднику"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании сотрудника"})
			return
		}

		c.JSON(http.StatusOK, employee)
	}
}

// EmployeeList возвращает список сотрудников с подразделениями и сменами
func EmployeeList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Preload("Department").Preload("Shift")

		if departmentID := c.Query("department_id"); departmentID != "" {
			query = query.Where("department_id = ?", departmentID)
		}

		var employees []models.Employee
		if err := query.Order("last_name ASC").Find(&employees).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении сотрудников"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"employees": employees})
	}
}

// EmployeeGetByID возвращает карточку сотрудника
func EmployeeGetByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var employee models.Employee
		if err := db.Preload("Department").Preload("Shift").
			First(&employee, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Сотрудник не найден"})
			return
		}

		c.JSON(http.StatusOK, employee)
	}
}

// EmployeeUpdate обновляет карточку сотрудника
func EmployeeUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var employee models.Employee
		if err := db.First(&employee, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Сотрудник не найден"})
			return
		}

		var req EmployeeCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		employee.FirstName = req.FirstName
		employee.LastName = req.LastName
		employee.Position = req.Position
		employee.DepartmentID = req.DepartmentID
		employee.ShiftID = req.ShiftID
		if req.HireDate != nil {
			employee.HireDate = req.HireDate
		}

		if err := db.Save(&employee).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении сотрудника"})
			return
		}

		c.JSON(http.StatusOK, employee)
	}
}

// EmployeeLinkUser привязывает учетную запись к сотруднику.
// Передача user_id = null убирает привязку.
func EmployeeLinkUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var employee models.Employee
		if err := db.First(&employee, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Сотрудник не найден"})
			return
		}

		var req struct {
			UserID *uint `json:"user_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		if req.UserID != nil {
			var user models.User
			if err := db.First(&user, *req.UserID).Error; err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "Пользователь не найден"})
				return
			}
		}

		employee.UserID = req.UserID
		if err := db.Save(&employee).Error; err != nil {
			if isUniqueViolation(err) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Пользователь уже привязан к другому сотруднику"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при привязке пользователя"})
			return
		}

		c.JSON(http.StatusOK, employee)
	}
}
