package handlers

import (
	"net/http"
	"strconv"
	"time"

	"hrms-backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Справочники настроек: смены, категории отпусков, праздничные дни.
// Обычные CRUD-экраны администратора.

type ShiftRequest struct {
	Name         string `json:"name" binding:"required"`
	StartTime    string `json:"start_time" binding:"required"`
	EndTime      string `json:"end_time" binding:"required"`
	GraceMinutes int    `json:"grace_minutes"`
}

func ShiftCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ShiftRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		// Проверяем формат времени "HH:MM"
		if _, err := time.Parse("15:04", req.StartTime); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверное время начала смены"})
			return
		}
		if _, err := time.Parse("15:04", req.EndTime); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверное время конца смены"})
			return
		}

		shift := models.Shift{
			Name:         req.Name,
			StartTime:    req.StartTime,
			EndTime:      req.EndTime,
			GraceMinutes: req.GraceMinutes,
		}

		if err := db.Create(&shift).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании смены"})
			return
		}

		c.JSON(http.StatusOK, shift)
	}
}

func ShiftList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var shifts []models.Shift
		if err := db.Order("start_time ASC").Find(&shifts).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении смен"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"shifts": shifts})
	}
}

func ShiftDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Delete(&models.Shift{}, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при удалении смены"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

type LeaveCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	DaysPerYear int    `json:"days_per_year"`
	Paid        *bool  `json:"paid"`
}

func LeaveCategoryCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LeaveCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		category := models.LeaveCategory{
			Name:        req.Name,
			DaysPerYear: req.DaysPerYear,
			Paid:        true,
		}
		if req.Paid != nil {
			category.Paid = *req.Paid
		}

		if err := db.Create(&category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании категории отпуска"})
			return
		}

		c.JSON(http.StatusOK, category)
	}
}

func LeaveCategoryList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.LeaveCategory
		if err := db.Order("name ASC").Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении категорий"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"categories": categories})
	}
}

func LeaveCategoryDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Delete(&models.LeaveCategory{}, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при удалении категории"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

type HolidayRequest struct {
	Name string    `json:"name" binding:"required"`
	Date time.Time `json:"date" binding:"required"`
}

func HolidayCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req HolidayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		holiday := models.Holiday{
			Name: req.Name,
			Date: dateOnly(req.Date),
		}

		if err := db.Create(&holiday).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании праздника"})
			return
		}

		c.JSON(http.StatusOK, holiday)
	}
}

func HolidayList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Order("date ASC")
		if year, err := strconv.Atoi(c.Query("year")); err == nil {
			from := time.Date(year, 1, 1, 0, 0, 0, 0, time.Local)
			query = query.Where("date >= ? AND date < ?", from, from.AddDate(1, 0, 0))
		}

		var holidays []models.Holiday
		if err := query.Find(&holidays).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении праздников"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"holidays": holidays})
	}
}

func HolidayDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Delete(&models.Holiday{}, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при удалении праздника"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
