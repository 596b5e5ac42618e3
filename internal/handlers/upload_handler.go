package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Разрешенные расширения для фотографий профиля
var allowedPhotoExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// UploadFile сохраняет фотографию профиля и возвращает ее URL
func UploadFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Файл не найден"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedPhotoExt[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Допустимы только изображения"})
		return
	}

	// Создаем уникальное имя файла
	newFileName := fmt.Sprintf("%s%s", uuid.New().String(), ext)

	// Поддиректория по дате
	now := time.Now()
	dateDir := filepath.Join("uploads", now.Format("2006/01/02"))
	if err := os.MkdirAll(dateDir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании директории"})
		return
	}

	filePath := filepath.Join(dateDir, newFileName)

	if err := c.SaveUploadedFile(file, filePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при сохранении файла"})
		return
	}

	fileURL := fmt.Sprintf("/uploads/%s/%s", now.Format("2006/01/02"), newFileName)
	c.JSON(http.StatusOK, gin.H{
		"url": fileURL,
	})
}
