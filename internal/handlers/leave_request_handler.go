package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"hrms-backend/internal/models"
	"hrms-backend/internal/services"
	"hrms-backend/internal/websocket"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type LeaveRequestCreateRequest struct {
	LeaveCategoryID uint      `json:"leave_category_id" binding:"required"`
	StartDate       time.Time `json:"start_date" binding:"required"`
	EndDate         time.Time `json:"end_date" binding:"required"`
	Reason          string    `json:"reason"`
}

type LeaveDecisionRequest struct {
	Status  string `json:"status" binding:"required,oneof=approved rejected"`
	Comment string `json:"comment"`
}

// LeaveRequestCreate подает заявку на отпуск от текущего сотрудника
func LeaveRequestCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		employee, ok := requireEmployee(db, c)
		if !ok {
			return
		}

		var req LeaveRequestCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		if req.EndDate.Before(req.StartDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Дата конца отпуска раньше даты начала"})
			return
		}

		var category models.LeaveCategory
		if err := db.First(&category, req.LeaveCategoryID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Категория отпуска не найдена"})
			return
		}

		request := models.LeaveRequest{
			EmployeeID:      employee.ID,
			LeaveCategoryID: req.LeaveCategoryID,
			StartDate:       dateOnly(req.StartDate),
			EndDate:         dateOnly(req.EndDate),
			Reason:          req.Reason,
			Status:          models.LeaveStatusPending,
		}

		if err := db.Create(&request).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании заявки"})
			return
		}

		c.JSON(http.StatusOK, request)
	}
}

// LeaveRequestList возвращает заявки: свои для сотрудника, все для админа
func LeaveRequestList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("role")

		query := db.Preload("LeaveCategory").Order("created_at DESC")

		if role != "admin" && role != "hr" {
			employee, ok := requireEmployee(db, c)
			if !ok {
				return
			}
			query = query.Where("employee_id = ?", employee.ID)
		} else if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var requests []models.LeaveRequest
		if err := query.Find(&requests).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении заявок"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"requests": requests})
	}
}

// LeaveRequestDecide фиксирует решение по заявке и уведомляет сотрудника
// через WebSocket и push. Уведомления — best-effort, решение уже сохранено.
func LeaveRequestDecide(db *gorm.DB, notifications *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request models.LeaveRequest
		if err := db.Preload("Employee").First(&request, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Заявка не найдена"})
			return
		}

		if request.Status != models.LeaveStatusPending {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Решение по заявке уже принято"})
			return
		}

		var req LeaveDecisionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		now := timeNow()
		request.Status = req.Status
		request.DecisionComment = req.Comment
		request.DecidedAt = &now

		if err := db.Save(&request).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при сохранении решения"})
			return
		}

		// Уведомляем сотрудника, если к нему привязана учетная запись
		if request.Employee.UserID != nil {
			userID := *request.Employee.UserID

			websocket.SendLeaveStatusUpdate(userID, request.ID, request.Status)

			if notifications != nil {
				go func() {
					var user models.User
					if err := db.First(&user, userID).Error; err != nil || user.FCMToken == "" {
						return
					}

					title := "Заявка на отпуск"
					body := fmt.Sprintf("Ваша заявка %s", statusText(request.Status))

					ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
					defer cancel()

					if err := notifications.SendPushNotification(ctx, user.FCMToken, title, body, map[string]string{
						"type":       "leave_request",
						"request_id": fmt.Sprintf("%d", request.ID),
						"status":     request.Status,
					}); err != nil {
						log.Printf("LeaveRequestDecide: ошибка отправки push: %v", err)
					}
				}()
			}
		}

		c.JSON(http.StatusOK, request)
	}
}

func statusText(status string) string {
	switch status {
	case models.LeaveStatusApproved:
		return "одобрена"
	case models.LeaveStatusRejected:
		return "отклонена"
	default:
		return status
	}
}
