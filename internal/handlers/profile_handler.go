package handlers

import (
	"net/http"
	"time"

	"hrms-backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func UserGetProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")
		role, _ := c.Get("role")

		// Если это админ, возвращаем специальный ответ
		if role == "admin" && userID == 0 {
			c.JSON(http.StatusOK, models.UserResponse{
				ID:        0,
				FirstName: "Admin",
				Role:      "admin",
				CreatedAt: time.Now(),
			})
			return
		}

		var user models.User
		if err := db.Preload("Employee").Preload("Employee.Department").
			Preload("Employee.Shift").First(&user, userID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить профиль"})
			return
		}

		response := userToResponse(&user)
		if user.Employee != nil {
			if user.Employee.Department != nil {
				response.Employee.Department = user.Employee.Department.Name
			}
			if user.Employee.Shift != nil {
				response.Employee.Shift = user.Employee.Shift.Name
			}
		}

		c.JSON(http.StatusOK, response)
	}
}

func UserUpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Требуется авторизация"})
			return
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить пользователя"})
			return
		}

		var req struct {
			FirstName string `json:"firstName"`
			LastName  string `json:"lastName"`
			Phone     string `json:"phone"`
			PhotoUrl  string `json:"photoUrl"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		// Обновляем только разрешенные поля
		updates := map[string]interface{}{}

		if req.FirstName != "" {
			updates["first_name"] = req.FirstName
		}
		if req.LastName != "" {
			updates["last_name"] = req.LastName
		}
		if req.Phone != "" {
			updates["phone"] = req.Phone
		}
		if req.PhotoUrl != "" {
			// Убеждаемся, что URL начинается с /
			photoUrl := req.PhotoUrl
			if photoUrl[0] != '/' {
				photoUrl = "/" + photoUrl
			}
			updates["photo_url"] = photoUrl
		}

		if len(updates) > 0 {
			if err := db.Model(&user).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении профиля"})
				return
			}
		}

		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении обновленных данных"})
			return
		}

		c.JSON(http.StatusOK, userToResponse(&user))
	}
}
