package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"hrms-backend/internal/middleware"
	"hrms-backend/internal/models"
	"hrms-backend/internal/services"
	"hrms-backend/internal/services/cache"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// timeNow позволяет подменять текущее время в тестах. Граница "сегодня"
// для поиска посещаемости считается от этого времени в зоне сервера.
var timeNow = time.Now

// Значения по умолчанию для запроса недавних точек
const (
	defaultRecentLimit   = 300
	defaultRecentMinutes = 180
)

// LocationUpdateRequest координаты от клиента. Оба поля обязательны,
// диапазон значений не проверяется.
type LocationUpdateRequest struct {
	Latitude  *float64 `json:"lat" binding:"required"`
	Longitude *float64 `json:"lng" binding:"required"`
}

// dateOnly обрезает время до начала календарного дня
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// currentUserID достает ID авторизованного пользователя из контекста.
// Административный токен (user_id = 0) не привязан к пользователю
// и для трекинга не годится.
func currentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	userID, ok := value.(uint)
	if !ok || userID == 0 {
		return 0, false
	}
	return userID, true
}

// findEmployeeID ищет ID сотрудника, привязанного к пользователю.
// Отсутствие привязки — нормальная ситуация; любая другая ошибка
// хранилища возвращается вызывающему.
func findEmployeeID(db *gorm.DB, userID uint) (*uint, error) {
	var employee models.Employee
	err := db.Where("user_id = ?", userID).First(&employee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &employee.ID, nil
}

// todayAttendance возвращает запись посещаемости сотрудника за сегодня,
// nil при отсутствии записи, либо ошибку хранилища
func todayAttendance(db *gorm.DB, employeeID uint) (*models.Attendance, error) {
	var attendance models.Attendance
	err := db.Where("employee_id = ? AND date = ?", employeeID, dateOnly(timeNow())).
		First(&attendance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attendance, nil
}

// TrackingLocationUpdate принимает обновление местоположения: перезаписывает
// кэш позиции пользователя, вычисляет статус смены по сегодняшней
// посещаемости, сохраняет неизменяемую точку истории и рассылает сигнал
// в канал присутствия. Шаги выполняются последовательно, без транзакции:
// кэш позиции не является источником истины, расхождение при сбое между
// шагами допустимо.
func TrackingLocationUpdate(db *gorm.DB, presence *services.PresenceService, cacheSvc *cache.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Требуется авторизация"})
			return
		}

		var req LocationUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Неверный формат координат: %v", err)})
			return
		}

		lat := *req.Latitude
		lng := *req.Longitude

		// Шаг 1: обновляем кэш последней известной позиции
		latLong := fmt.Sprintf("%f,%f", lat, lng)
		if err := db.Model(&models.User{}).Where("id = ?", userID).
			Update("latlong", latLong).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении позиции пользователя"})
			return
		}

		// Шаги 2-4: привязка к сотруднику и статус смены за сегодня.
		// Сбой хранилища здесь — серверная ошибка: нельзя записать точку
		// с неверным статусом смены.
		employeeID, err := findEmployeeID(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при поиске сотрудника"})
			return
		}
		var attendance *models.Attendance
		if employeeID != nil {
			attendance, err = todayAttendance(db, *employeeID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении посещаемости"})
				return
			}
		}
		duty := models.ResolveDutyStatus(attendance)

		// Шаг 5: неизменяемая точка истории
		point := models.TrackingPoint{
			UserID:     userID,
			Latitude:   lat,
			Longitude:  lng,
			DutyStatus: duty,
			CreatedAt:  timeNow(),
		}
		if err := db.Create(&point).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при сохранении точки"})
			return
		}

		middleware.LocationUpdatesTotal.WithLabelValues(string(duty)).Inc()

		// Обновляем кэш последней точки, ошибки не критичны
		if cacheSvc != nil {
			if err := cacheSvc.Set(c.Request.Context(), cacheSvc.LastPointKey(userID), models.TrackingPointResponse{
				Latitude:   point.Latitude,
				Longitude:  point.Longitude,
				DutyStatus: point.DutyStatus,
				CreatedAt:  point.CreatedAt,
			}); err != nil {
				log.Printf("TrackingLocationUpdate: ошибка кэша последней точки: %v", err)
			}
		}

		// Шаг 6: сигнал присутствия, асинхронно и без гарантий доставки
		if presence != nil {
			go presence.PublishLocation(userID, employeeID, lat, lng, duty)
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// setPresence фиксирует переход онлайн/оффлайн и рассылает сигнал
func setPresence(db *gorm.DB, presence *services.PresenceService, c *gin.Context, online bool) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Требуется авторизация"})
		return
	}

	// Запоминаем текущее состояние, чтобы дашборды видели его после переподключения
	var record models.UserPresence
	err := db.Where("user_id = ?", userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		record = models.UserPresence{UserID: userID}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении присутствия"})
		return
	}

	record.IsOnline = online
	record.LastSeenAt = timeNow()
	if err := db.Save(&record).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении присутствия"})
		return
	}

	if presence != nil {
		// Сигнал — с доставкой без гарантий, сбой поиска его не блокирует
		employeeID, err := findEmployeeID(db, userID)
		if err != nil {
			log.Printf("setPresence: ошибка при поиске сотрудника: %v", err)
		}
		go presence.PublishPresence(userID, employeeID, online)
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// TrackingOnline отмечает текущего пользователя как онлайн
func TrackingOnline(db *gorm.DB, presence *services.PresenceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		setPresence(db, presence, c, true)
	}
}

// TrackingOffline отмечает текущего пользователя как оффлайн
func TrackingOffline(db *gorm.DB, presence *services.PresenceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		setPresence(db, presence, c, false)
	}
}

// TrackingRecentPoints возвращает точки текущего пользователя за окно
// времени, от старых к новым. Пустой список — нормальный результат.
func TrackingRecentPoints(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Требуется авторизация"})
			return
		}

		limit := defaultRecentLimit
		if val, err := strconv.Atoi(c.Query("limit")); err == nil && val > 0 {
			limit = val
		}

		minutes := defaultRecentMinutes
		if val, err := strconv.Atoi(c.Query("minutes")); err == nil && val > 0 {
			minutes = val
		}

		since := timeNow().Add(-time.Duration(minutes) * time.Minute)

		var points []models.TrackingPoint
		if err := db.Where("user_id = ? AND created_at >= ?", userID, since).
			Order("created_at ASC").
			Limit(limit).
			Find(&points).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении точек"})
			return
		}

		responses := make([]models.TrackingPointResponse, 0, len(points))
		for _, p := range points {
			responses = append(responses, models.TrackingPointResponse{
				Latitude:   p.Latitude,
				Longitude:  p.Longitude,
				DutyStatus: p.DutyStatus,
				CreatedAt:  p.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, gin.H{"points": responses})
	}
}

// TrackingLastPoint возвращает последнюю точку для пользователя или
// сотрудника. user_id имеет приоритет; employee_id разрешается через
// привязку. Неизвестный идентификатор или пустая история — не ошибка,
// а ответ {"point": null}.
func TrackingLastPoint(db *gorm.DB, cacheSvc *cache.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentUserID(c); !ok {
			// Запрос доступен и административному токену
			if _, exists := c.Get("user_id"); !exists {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Требуется авторизация"})
				return
			}
		}

		var targetUserID uint

		if raw := c.Query("user_id"); raw != "" {
			val, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный user_id"})
				return
			}
			targetUserID = uint(val)
		} else if raw := c.Query("employee_id"); raw != "" {
			val, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный employee_id"})
				return
			}

			var employee models.Employee
			if err := db.First(&employee, uint(val)).Error; err != nil || employee.UserID == nil {
				c.JSON(http.StatusOK, gin.H{"point": nil})
				return
			}
			targetUserID = *employee.UserID
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Требуется user_id или employee_id"})
			return
		}

		// Быстрый путь через кэш
		if cacheSvc != nil {
			var cached models.TrackingPointResponse
			hit, err := cacheSvc.Get(c.Request.Context(), cacheSvc.LastPointKey(targetUserID), &cached)
			if err != nil {
				log.Printf("TrackingLastPoint: ошибка чтения кэша: %v", err)
			} else if hit {
				c.JSON(http.StatusOK, gin.H{"point": cached})
				return
			}
		}

		var point models.TrackingPoint
		err := db.Where("user_id = ?", targetUserID).
			Order("created_at DESC").
			First(&point).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"point": nil})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении точки"})
			return
		}

		response := models.TrackingPointResponse{
			Latitude:   point.Latitude,
			Longitude:  point.Longitude,
			DutyStatus: point.DutyStatus,
			CreatedAt:  point.CreatedAt,
		}

		if cacheSvc != nil {
			if err := cacheSvc.Set(c.Request.Context(), cacheSvc.LastPointKey(targetUserID), response); err != nil {
				log.Printf("TrackingLastPoint: ошибка записи кэша: %v", err)
			}
		}

		c.JSON(http.StatusOK, gin.H{"point": response})
	}
}
