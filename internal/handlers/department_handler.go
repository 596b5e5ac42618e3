package handlers

import (
	"net/http"

	"hrms-backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DepartmentRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func DepartmentCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DepartmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		department := models.Department{
			Name:        req.Name,
			Description: req.Description,
		}

		if err := db.Create(&department).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании подразделения"})
			return
		}

		c.JSON(http.StatusOK, department)
	}
}

func DepartmentList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var departments []models.Department
		if err := db.Order("name ASC").Find(&departments).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении подразделений"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"departments": departments})
	}
}

func DepartmentUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var department models.Department
		if err := db.First(&department, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Подразделение не найдено"})
			return
		}

		var req DepartmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		department.Name = req.Name
		department.Description = req.Description

		if err := db.Save(&department).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении подразделения"})
			return
		}

		c.JSON(http.StatusOK, department)
	}
}

func DepartmentDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Delete(&models.Department{}, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при удалении подразделения"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
