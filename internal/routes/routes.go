package routes

import (
	"hrms-backend/internal/handlers"
	"hrms-backend/internal/middleware"
	"hrms-backend/internal/services"
	"hrms-backend/internal/services/cache"
	"hrms-backend/internal/websocket"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(api *gin.RouterGroup, db *gorm.DB, presence *services.PresenceService, cacheSvc *cache.Service, notifications *services.NotificationService) {
	// Публичные маршруты для аутентификации
	auth := api.Group("/auth")
	{
		auth.POST("/register", handlers.AuthRegister(db))
		auth.POST("/login", handlers.AuthLogin(db))
	}

	// Защищенные маршруты (требуют аутентификации)
	protected := api.Group("")
	protected.Use(middleware.JWTAuth())
	{
		// Текущий пользователь и профиль
		protected.GET("/user", handlers.GetCurrentUser(db))
		protected.GET("/profile", handlers.UserGetProfile(db))
		protected.PUT("/profile", handlers.UserUpdateProfile(db))
		protected.PUT("/fcm-token", handlers.UpdateFCMToken(db))
		protected.POST("/upload", handlers.UploadFile)

		// Трекинг местоположения и присутствие
		protected.POST("/tracking/location", handlers.TrackingLocationUpdate(db, presence, cacheSvc))
		protected.POST("/tracking/online", handlers.TrackingOnline(db, presence))
		protected.POST("/tracking/offline", handlers.TrackingOffline(db, presence))
		protected.GET("/tracking/location/recent", handlers.TrackingRecentPoints(db))
		protected.GET("/tracking/location/last", handlers.TrackingLastPoint(db, cacheSvc))

		// Посещаемость
		protected.POST("/attendance/clock-in", handlers.AttendanceClockIn(db))
		protected.POST("/attendance/clock-out", handlers.AttendanceClockOut(db))
		protected.GET("/attendance/today", handlers.AttendanceToday(db))

		// Заявки на отпуск
		protected.POST("/leave-requests", handlers.LeaveRequestCreate(db))
		protected.GET("/leave-requests", handlers.LeaveRequestList(db))

		// WebSocket подключение для получения обновлений в реальном времени
		protected.GET("/ws", websocket.Handler())

		// Административные экраны справочников
		admin := protected.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/employees", handlers.EmployeeCreate(db))
			admin.GET("/employees", handlers.EmployeeList(db))
			admin.GET("/employees/:id", handlers.EmployeeGetByID(db))
			admin.PUT("/employees/:id", handlers.EmployeeUpdate(db))
			admin.PUT("/employees/:id/user", handlers.EmployeeLinkUser(db))

			admin.POST("/departments", handlers.DepartmentCreate(db))
			admin.GET("/departments", handlers.DepartmentList(db))
			admin.PUT("/departments/:id", handlers.DepartmentUpdate(db))
			admin.DELETE("/departments/:id", handlers.DepartmentDelete(db))

			admin.POST("/shifts", handlers.ShiftCreate(db))
			admin.GET("/shifts", handlers.ShiftList(db))
			admin.DELETE("/shifts/:id", handlers.ShiftDelete(db))

			admin.POST("/leave-categories", handlers.LeaveCategoryCreate(db))
			admin.GET("/leave-categories", handlers.LeaveCategoryList(db))
			admin.DELETE("/leave-categories/:id", handlers.LeaveCategoryDelete(db))

			admin.POST("/holidays", handlers.HolidayCreate(db))
			admin.GET("/holidays", handlers.HolidayList(db))
			admin.DELETE("/holidays/:id", handlers.HolidayDelete(db))

			admin.PUT("/leave-requests/:id/status", handlers.LeaveRequestDecide(db, notifications))
		}
	}
}
