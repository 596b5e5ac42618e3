package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Service представляет сервис кэширования для быстрых чтений трекинга
type Service struct {
	redisClient *redis.Client
	ttl         time.Duration
	enabled     bool
}

// NewService создает новый сервис кэширования
func NewService() *Service {
	// Проверяем, включено ли кэширование
	cacheEnabled := os.Getenv("CACHE_ENABLED") == "true"

	if !cacheEnabled {
		return &Service{
			enabled: false,
		}
	}

	redisHost := os.Getenv("REDIS_HOST")
	redisPort := os.Getenv("REDIS_PORT")

	// Получаем TTL для кэша
	cacheDuration := os.Getenv("TRACKING_CACHE_DURATION")
	ttl := 60 // последняя точка живет недолго, минута по умолчанию

	if cacheDuration != "" {
		if val, err := strconv.Atoi(cacheDuration); err == nil {
			ttl = val
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", redisHost, redisPort),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	return &Service{
		redisClient: client,
		ttl:         time.Duration(ttl) * time.Second,
		enabled:     true,
	}
}

// Get получает данные из кэша
func (c *Service) Get(ctx context.Context, key string, result interface{}) (bool, error) {
	if !c.enabled {
		return false, nil
	}

	val, err := c.redisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		// Ключ не найден в кэше
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("ошибка при получении данных из кэша: %w", err)
	}

	if err := json.Unmarshal([]byte(val), result); err != nil {
		return false, fmt.Errorf("ошибка при десериализации данных из кэша: %w", err)
	}

	return true, nil
}

// Set сохраняет данные в кэш
func (c *Service) Set(ctx context.Context, key string, value interface{}) error {
	if !c.enabled {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации данных для кэша: %w", err)
	}

	if err := c.redisClient.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("ошибка при сохранении данных в кэш: %w", err)
	}

	return nil
}

// Invalidate удаляет ключ из кэша
func (c *Service) Invalidate(ctx context.Context, key string) error {
	if !c.enabled {
		return nil
	}
	return c.redisClient.Del(ctx, key).Err()
}

// LastPointKey генерирует ключ кэша последней точки пользователя
func (c *Service) LastPointKey(userID uint) string {
	return fmt.Sprintf("tracking:last:%d", userID)
}

// Close закрывает соединение с Redis
func (c *Service) Close() error {
	if c.enabled {
		return c.redisClient.Close()
	}
	return nil
}
