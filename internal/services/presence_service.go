package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"hrms-backend/internal/middleware"
	"hrms-backend/internal/models"
	"hrms-backend/internal/websocket"

	"github.com/go-redis/redis/v8"
)

// PresenceChannel канал Redis, через который сигналы присутствия
// доставляются всем инстансам сервиса
const PresenceChannel = "presence:events"

// PresenceService публикует сигналы канала присутствия: обновления
// местоположения и переходы онлайн/оффлайн. Все публикации выполняются
// по принципу fire-and-forget: ошибка доставки логируется и не влияет
// на запрос, породивший сигнал.
type PresenceService struct {
	redisClient *redis.Client
}

// NewPresenceService создает сервис публикации. redisClient может быть nil:
// в этом случае сигналы доставляются только локальным подписчикам WebSocket.
func NewPresenceService(redisClient *redis.Client) *PresenceService {
	return &PresenceService{redisClient: redisClient}
}

// LocationEventPayload полезная нагрузка сигнала обновления местоположения
type LocationEventPayload struct {
	UserID     uint              `json:"user_id"`
	EmployeeID *uint             `json:"employee_id"`
	Latitude   float64           `json:"lat"`
	Longitude  float64           `json:"lng"`
	DutyStatus models.DutyStatus `json:"duty"`
}

// PresenceEventPayload полезная нагрузка сигнала онлайн/оффлайн
type PresenceEventPayload struct {
	UserID     uint  `json:"user_id"`
	EmployeeID *uint `json:"employee_id"`
	Online     bool  `json:"online"`
}

// PublishLocation публикует обновление местоположения в канал присутствия
func (s *PresenceService) PublishLocation(userID uint, employeeID *uint, lat, lng float64, duty models.DutyStatus) {
	message := &websocket.Message{
		Type: websocket.LocationUpdateType,
		Payload: LocationEventPayload{
			UserID:     userID,
			EmployeeID: employeeID,
			Latitude:   lat,
			Longitude:  lng,
			DutyStatus: duty,
		},
	}
	s.publish("location", message)
}

// PublishPresence публикует переход онлайн/оффлайн в канал присутствия
func (s *PresenceService) PublishPresence(userID uint, employeeID *uint, online bool) {
	message := &websocket.Message{
		Type: websocket.PresenceUpdateType,
		Payload: PresenceEventPayload{
			UserID:     userID,
			EmployeeID: employeeID,
			Online:     online,
		},
	}
	s.publish("presence", message)
}

// publish отправляет сообщение в Redis канал. Без Redis сообщение уходит
// напрямую локальным подписчикам: инстанс один, мост не нужен.
func (s *PresenceService) publish(signal string, message *websocket.Message) {
	if s.redisClient == nil {
		websocket.BroadcastPresenceMessage(message)
		middleware.PresencePublishTotal.WithLabelValues(signal, "local").Inc()
		return
	}

	payload, err := json.Marshal(message)
	if err != nil {
		log.Printf("PresenceService: ошибка при кодировании сигнала %s: %v", signal, err)
		middleware.PresencePublishTotal.WithLabelValues(signal, "error").Inc()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := s.redisClient.Publish(ctx, PresenceChannel, payload).Err(); err != nil {
		// Точка уже сохранена, ошибку доставки только логируем
		log.Printf("PresenceService: ошибка публикации сигнала %s: %v", signal, err)
		middleware.PresencePublishTotal.WithLabelValues(signal, "error").Inc()
		return
	}

	middleware.PresencePublishTotal.WithLabelValues(signal, "ok").Inc()
}

// StartBridge подписывается на канал Redis и пересылает сигналы локальным
// подписчикам WebSocket. Запускается один раз на инстанс; через мост
// проходят в том числе собственные публикации инстанса.
func (s *PresenceService) StartBridge(ctx context.Context) {
	if s.redisClient == nil {
		return
	}

	go func() {
		pubsub := s.redisClient.Subscribe(ctx, PresenceChannel)
		defer pubsub.Close()

		log.Printf("PresenceService: мост канала присутствия запущен")

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-pubsub.Channel():
				if !ok {
					return
				}

				var message websocket.Message
				if err := json.Unmarshal([]byte(msg.Payload), &message); err != nil {
					log.Printf("PresenceService: некорректное сообщение в канале: %v", err)
					continue
				}

				websocket.BroadcastPresenceMessage(&message)
			}
		}
	}()
}
