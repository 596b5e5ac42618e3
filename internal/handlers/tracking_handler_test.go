package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hrms-backend/internal/models"
	"hrms-backend/internal/services"
	"hrms-backend/internal/services/cache"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Employee{},
		&models.Department{},
		&models.Shift{},
		&models.LeaveCategory{},
		&models.Holiday{},
		&models.LeaveRequest{},
		&models.Attendance{},
		&models.TrackingPoint{},
		&models.UserPresence{},
	))

	return db
}

// pinTime фиксирует "сейчас" для обработчиков и возвращает функцию
// сдвига времени вперед
func pinTime(t *testing.T, start time.Time) func(d time.Duration) {
	t.Helper()

	current := start
	timeNow = func() time.Time { return current }
	t.Cleanup(func() { timeNow = time.Now })

	return func(d time.Duration) { current = current.Add(d) }
}

// newTrackingRouter собирает роутер трекинга. userID = 0 имитирует
// запрос без авторизации.
func newTrackingRouter(db *gorm.DB, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)

	presence := services.NewPresenceService(nil)
	cacheSvc := cache.NewService() // кэширование выключено без CACHE_ENABLED

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != 0 {
			c.Set("user_id", userID)
			c.Set("role", "employee")
		}
		c.Next()
	})

	r.POST("/tracking/location", TrackingLocationUpdate(db, presence, cacheSvc))
	r.POST("/tracking/online", TrackingOnline(db, presence))
	r.POST("/tracking/offline", TrackingOffline(db, presence))
	r.GET("/tracking/location/recent", TrackingRecentPoints(db))
	r.GET("/tracking/location/last", TrackingLastPoint(db, cacheSvc))

	return r
}

func createTestUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()

	user := models.User{
		FirstName:    "Иван",
		LastName:     "Петров",
		Email:        email,
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func postJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func putJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func getJSON(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func pointCount(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.TrackingPoint{}).Where("user_id = ?", userID).Count(&count).Error)
	return count
}

func TestTrackingLocationUpdate_AppendOnlyHistory(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "ivan@example.com")
	advance := pinTime(t, time.Date(2024, 3, 11, 10, 0, 0, 0, time.Local))

	r := newTrackingRouter(db, user.ID)

	for i := 0; i < 5; i++ {
		w := postJSON(r, "/tracking/location", gin.H{"lat": 43.2 + float64(i)*0.001, "lng": 76.9})
		require.Equal(t, http.StatusOK, w.Code)
		advance(time.Minute)
	}

	var points []models.TrackingPoint
	require.NoError(t, db.Where("user_id = ?", user.ID).Order("id ASC").Find(&points).Error)
	require.Len(t, points, 5)

	// Метки времени не убывают, каждая вставка — отдельная запись
	for i := 1; i < len(points); i++ {
		assert.False(t, points[i].CreatedAt.Before(points[i-1].CreatedAt))
	}

	// Кэш позиции пользователя перезаписан последним обновлением
	var updated models.User
	require.NoError(t, db.First(&updated, user.ID).Error)
	assert.Equal(t, fmt.Sprintf("%f,%f", 43.204, 76.9), updated.LatLong)
}

func TestTrackingLocationUpdate_DutyStatusStamp(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "ivan@example.com")
	pinTime(t, time.Date(2024, 3, 11, 10, 0, 0, 0, time.Local))

	employee := models.Employee{UserID: &user.ID, FirstName: "Иван", LastName: "Петров"}
	require.NoError(t, db.Create(&employee).Error)

	r := newTrackingRouter(db, user.ID)

	// Без записи посещаемости — not_started
	require.Equal(t, http.StatusOK, postJSON(r, "/tracking/location", gin.H{"lat": 43.2, "lng": 76.9}).Code)

	// После прихода — on_duty
	clockIn := time.Date(2024, 3, 11, 9, 0, 0, 0, time.Local)
	attendance := models.Attendance{
		EmployeeID: employee.ID,
		Date:       time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local),
		ClockIn:    &clockIn,
	}
	require.NoError(t, db.Create(&attendance).Error)
	require.Equal(t, http.StatusOK, postJSON(r, "/tracking/location", gin.H{"lat": 43.2, "lng": 76.9}).Code)

	// После ухода — off_duty, даже при заполненном приходе
	clockOut := clockIn.Add(8 * time.Hour)
	attendance.ClockOut = &clockOut
	require.NoError(t, db.Save(&attendance).Error)
	require.Equal(t, http.StatusOK, postJSON(r, "/tracking/location", gin.H{"lat": 43.2, "lng": 76.9}).Code)

	var points []models.TrackingPoint
	require.NoError(t, db.Where("user_id = ?", user.ID).Order("id ASC").Find(&points).Error)
	require.Len(t, points, 3)
	assert.Equal(t, models.DutyNotStarted, points[0].DutyStatus)
	assert.Equal(t, models.DutyOnDuty, points[1].DutyStatus)
	assert.Equal(t, models.DutyOffDuty, points[2].DutyStatus)
}

func TestTrackingLocationUpdate_StorageFaultIsServerError(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "ivan@example.com")
	pinTime(t, time.Date(2024, 3, 11, 10, 0, 0, 0, time.Local))

	employee := models.Employee{UserID: &user.ID, FirstName: "Иван", LastName: "Петров"}
	require.NoError(t, db.Create(&employee).Error)

	clockIn := time.Date(2024, 3, 11, 9, 0, 0, 0, time.Local)
	attendance := models.Attendance{
		EmployeeID: employee.ID,
		Date:       time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local),
		ClockIn:    &clockIn,
	}
	require.NoError(t, db.Create(&attendance).Error)

	r := newTrackingRouter(db, user.ID)

	// Сбой чтения посещаемости: нельзя молча записать точку со
	// статусом not_started для сотрудника на смене
	require.NoError(t, db.Migrator().DropTable(&models.Attendance{}))
	w := postJSON(r, "/tracking/location", gin.H{"lat": 43.2, "lng": 76.9})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, int64(0), pointCount(t, db, user.ID))

	// Сбой поиска сотрудника — тоже серверная ошибка
	require.NoError(t, db.Migrator().DropTable(&models.Employee{}))
	w = postJSON(r, "/tracking/location", gin.H{"lat": 43.2, "lng": 76.9})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, int64(0), pointCount(t, db, user.ID))
}

func TestTrackingLocationUpdate_OutOfRangeAccepted(t *testing.T) {
	// Диапазон координат не проверяется, lat=200 принимается
	db := setupTestDB(t)
	user := createTestUser(t, db, "ivan@example.com")
	pinTime(t, time.Date(2024, 3, 11, 10, 0, 0, 0, time.Local))

	r := newTrackingRouter(db, user.ID)

	w := postJSON(r, "/tracking/location", gin.H{"lat": 200.0, "lng": -300.0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, pointCount(t, db, user.ID))
}

func TestTrackingLocationUpdate_ValidationRejectsBeforeWrites(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "ivan@example.com")
	pinTime(t, time.Date(2024, 3, 11, 10, 0, 0, 0, time.Local))

	r := newTrackingRouter(db, user.ID)

	// Отсутствует lng
	w := postJSON(r, "/tracking/location", gin.H{"lat": 43.2})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Нечисловая широта
	w = postJSON(r, "/tracking/location", gin.H{"lat": "abc", "lng": 76.9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Побочных эффектов нет: ни точек, ни кэша позиции
	assert.EqualValues(t, 0, pointCount(t, db, user.ID))

	var updated models.User
	require.NoError(t, db.First(&updated, user.ID).Error)
	assert.Empty(t, updated.LatLong)
}

func TestTrackingLocationUpdate_Unauthenticated(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "ivan@example.com")
	pinTime(t, time.Date(2024, 3, 11, 10, 0, 0, 0, time.Local))

	// userID = 0: контекст без авторизации
	r := newTrackingRouter(db, 0)

	w := postJSON(r, "/tracking/location", gin.H{"lat": 43.2, "lng": 76.9})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.EqualValues(t, 0, pointCount(t, db, user.ID))

	var updated models.User
	require.NoError(t, db.First(&updated, user.ID).Error)
	assert.Empty(t, updated.LatLong)
}

type recentResponse struct {
	Points []models.TrackingPointResponse `json:"points"`
}

func insertPoint(t *testing.T, db *gorm.DB, userID uint, at time.Time) {
	t.Helper()

	require.NoError(t, db.Create(&models.TrackingPoint{
		UserID:     userID,
		Latitude:   43.2,
		Longitude:  76.9,
		DutyStatus: models.DutyOnDuty,
		CreatedAt:  at,
	}).Error)
}

func TestTrackingRecentPoints_Window(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "ivan@example.com")
	now := time.Date(2024, 3, 11, 12, 0, 0, 0, time.Local)
	pinTime(t, now)

	// Точки на -200, -100 и -10 минут от "сейчас"
	insertPoint(t, db, user.ID, now.Add(-200*time.Minute))
	insertPoint(t, db, user.ID, now.Add(-100*time.Minute))
	insertPoint(t, db, user.ID, now.Add(-10*time.Minute))

	r := newTrackingRouter(db, user.ID)

	w := getJSON(r, "/tracking/location/recent?minutes=180")
	require.Equal(t, http.StatusOK, w.Code)

	var resp recentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// Окно в 180 минут отрезает точку на -200, порядок от старых к новым
	require.Len(t, resp.Points, 2)
	assert.Equal(t, now.Add(-100*time.Minute).Unix(), resp.Points[0].CreatedAt.Unix())
	assert.Equal(t, now.Add(-10*time.Minute).Unix(), resp.Points[1].CreatedAt.Unix())
}

func TestTrackingRecentPoints_Cap(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "ivan@example.com")
	now := time.Date(2024, 3, 11, 12, 0, 0, 0, time.Local)
	pinTime(t, now)

	// 320 точек внутри окна, с шагом в секунду
	base := now.Add(-30 * time.Minute)
	for i := 0; i < 320; i++ {
		insertPoint(t, db, user.ID, base.Add(time.Duration(i)*time.Second))
	}

	r := newTrackingRouter(db, user.ID)

	w := getJSON(r, "/tracking/location/recent?limit=300")
	require.Equal(t, http.StatusOK, w.Code)

	var resp recentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// Возвращаются ровно 300 самых старых точек окна
	require.Len(t, resp.Points, 300)
	assert.Equal(t, base.Unix(), resp.Points[0].CreatedAt.Unix())
	assert.Equal(t, base.Add(299*time.Second).Unix(), resp.Points[299].CreatedAt.Unix())
}

func TestTrackingRecentPoints_EmptyResult(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "ivan@example.com")
	pinTime(t, time.Date(2024, 3, 11, 12, 0, 0, 0, time.Local))

	r := newTrackingRouter(db, user.ID)

	w := getJSON(r, "/tracking/location/recent")
	require.Equal(t, http.StatusOK, w.Code)

	var resp recentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Points)
	assert.Empty(t, resp.Points)
}

type lastResponse struct {
	Point *models.TrackingPointResponse `json:"point"`
}

func TestTrackingLastPoint_ByEmployee(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "ivan@example.com")
	now := time.Date(2024, 3, 11, 12, 0, 0, 0, time.Local)
	pinTime(t, now)

	employee := models.Employee{UserID: &user.ID, FirstName: "Иван", LastName: "Петров"}
	require.NoError(t, db.Create(&employee).Error)

	insertPoint(t, db, user.ID, now.Add(-20*time.Minute))
	insertPoint(t, db, user.ID, now.Add(-5*time.Minute))

	r := newTrackingRouter(db, user.ID)

	w := getJSON(r, fmt.Sprintf("/tracking/location/last?employee_id=%d", employee.ID))
	require.Equal(t, http.StatusOK, w.Code)

	var resp lastResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Point)

	// Привязка разрешается к пользователю, возвращается самая свежая точка
	assert.Equal(t, now.Add(-5*time.Minute).Unix(), resp.Point.CreatedAt.Unix())
}

func TestTrackingLastPoint_UserIDTakesPrecedence(t *testing.T) {
	db := setupTestDB(t)
	first := createTestUser(t, db, "first@example.com")
	second := createTestUser(t, db, "second@example.com")
	now := time.Date(2024, 3, 11, 12, 0, 0, 0, time.Local)
	pinTime(t, now)

	employee := models.Employee{UserID: &second.ID, FirstName: "Анна", LastName: "Смирнова"}
	require.NoError(t, db.Create(&employee).Error)

	insertPoint(t, db, first.ID, now.Add(-1*time.Minute))
	insertPoint(t, db, second.ID, now.Add(-2*time.Minute))

	r := newTrackingRouter(db, first.ID)

	w := getJSON(r, fmt.Sprintf("/tracking/location/last?user_id=%d&employee_id=%d", first.ID, employee.ID))
	require.Equal(t, http.StatusOK, w.Code)

	var resp lastResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Point)
	assert.Equal(t, now.Add(-1*time.Minute).Unix(), resp.Point.CreatedAt.Unix())
}

func TestTrackingLastPoint_NoHistoryIsNull(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "ivan@example.com")
	pinTime(t, time.Date(2024, 3, 11, 12, 0, 0, 0, time.Local))

	r := newTrackingRouter(db, user.ID)

	// Пользователь без истории
	w := getJSON(r, fmt.Sprintf("/tracking/location/last?user_id=%d", user.ID))
	require.Equal(t, http.StatusOK, w.Code)

	var resp lastResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.Point)

	// Несуществующий сотрудник — тоже не ошибка
	w = getJSON(r, "/tracking/location/last?employee_id=9999")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.Point)
}

func TestTrackingPresence_OnlineOffline(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "ivan@example.com")
	now := time.Date(2024, 3, 11, 12, 0, 0, 0, time.Local)
	advance := pinTime(t, now)

	r := newTrackingRouter(db, user.ID)

	require.Equal(t, http.StatusOK, postJSON(r, "/tracking/online", nil).Code)

	var record models.UserPresence
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&record).Error)
	assert.True(t, record.IsOnline)
	assert.Equal(t, now.Unix(), record.LastSeenAt.Unix())

	advance(10 * time.Minute)
	require.Equal(t, http.StatusOK, postJSON(r, "/tracking/offline", nil).Code)

	require.NoError(t, db.Where("user_id = ?", user.ID).First(&record).Error)
	assert.False(t, record.IsOnline)
	assert.Equal(t, now.Add(10*time.Minute).Unix(), record.LastSeenAt.Unix())

	// Повторные сигналы не плодят записей
	var count int64
	require.NoError(t, db.Model(&models.UserPresence{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
