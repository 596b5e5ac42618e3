package websocket

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"hrms-backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Константы для типов сообщений WebSocket
const (
	LocationUpdateType    = "LOCATION_UPDATE"
	PresenceUpdateType    = "PRESENCE_UPDATE"
	LeaveStatusUpdateType = "LEAVE_STATUS_UPDATE"
)

// PresenceChannelName имя канала присутствия: в него попадают обновления
// местоположения и переходы онлайн/оффлайн всех пользователей.
const PresenceChannelName = "presence"

// Message представляет формат сообщения WebSocket
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Manager управляет всеми подключениями WebSocket
type Manager struct {
	clients       map[string]map[*websocket.Conn]bool
	clientsByUser map[uint]map[*websocket.Conn]bool
	// Подписчики канала присутствия (дашборды, карта офиса)
	presenceSubs map[*websocket.Conn]bool
	register     chan *Client
	unregister   chan *Client
	mutex        sync.RWMutex
}

// Client представляет клиентское соединение WebSocket
type Client struct {
	conn     *websocket.Conn
	userID   uint
	clientID string
	// true, если клиент запросил подписку на канал присутствия
	watchPresence bool
}

// Глобальный менеджер WebSocket
var wsManager = NewManager()

// NewManager создает новый менеджер WebSocket
func NewManager() *Manager {
	return &Manager{
		clients:       make(map[string]map[*websocket.Conn]bool),
		clientsByUser: make(map[uint]map[*websocket.Conn]bool),
		presenceSubs:  make(map[*websocket.Conn]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
	}
}

// Start запускает обработку регистраций WebSocket
func (manager *Manager) Start() {
	log.Printf("Запуск WebSocket Manager")
	go func() {
		for {
			select {
			case client := <-manager.register:
				log.Printf("Регистрация нового клиента: ID=%s, userID=%d", client.clientID, client.userID)
				manager.mutex.Lock()
				if _, ok := manager.clients[client.clientID]; !ok {
					manager.clients[client.clientID] = make(map[*websocket.Conn]bool)
				}
				manager.clients[client.clientID][client.conn] = true

				if client.userID > 0 {
					if _, ok := manager.clientsByUser[client.userID]; !ok {
						manager.clientsByUser[client.userID] = make(map[*websocket.Conn]bool)
					}
					manager.clientsByUser[client.userID][client.conn] = true
				}

				if client.watchPresence {
					manager.presenceSubs[client.conn] = true
					log.Printf("Клиент %s подписан на канал присутствия", client.clientID)
				}
				manager.mutex.Unlock()
				middleware.WSConnectionsActive.Inc()

			case client := <-manager.unregister:
				log.Printf("Отмена регистрации клиента: ID=%s, userID=%d", client.clientID, client.userID)
				manager.mutex.Lock()
				if _, ok := manager.clients[client.clientID]; ok {
					if _, exists := manager.clients[client.clientID][client.conn]; exists {
						delete(manager.clients[client.clientID], client.conn)
						client.conn.Close()
					}
					if len(manager.clients[client.clientID]) == 0 {
						delete(manager.clients, client.clientID)
					}
				}

				if client.userID > 0 {
					if _, ok := manager.clientsByUser[client.userID]; ok {
						delete(manager.clientsByUser[client.userID], client.conn)
						if len(manager.clientsByUser[client.userID]) == 0 {
							delete(manager.clientsByUser, client.userID)
						}
					}
				}

				delete(manager.presenceSubs, client.conn)
				manager.mutex.Unlock()
				middleware.WSConnectionsActive.Dec()
			}
		}
	}()
}

// BroadcastToUser отправляет сообщение всем подключениям конкретного пользователя
func (manager *Manager) BroadcastToUser(userID uint, message *Message) {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()

	connections, exists := manager.clientsByUser[userID]
	if !exists || len(connections) == 0 {
		return
	}

	jsonMessage, err := json.Marshal(message)
	if err != nil {
		log.Printf("BroadcastToUser: ошибка при кодировании сообщения: %v", err)
		return
	}

	for conn := range connections {
		go manager.writeOrDrop(conn, userID, jsonMessage)
	}
}

// BroadcastPresence отправляет сообщение всем подписчикам канала присутствия
func (manager *Manager) BroadcastPresence(message *Message) {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()

	if len(manager.presenceSubs) == 0 {
		return
	}

	jsonMessage, err := json.Marshal(message)
	if err != nil {
		log.Printf("BroadcastPresence: ошибка при кодировании сообщения: %v", err)
		return
	}

	for conn := range manager.presenceSubs {
		go manager.writeOrDrop(conn, 0, jsonMessage)
	}
}

// writeOrDrop пишет сообщение в соединение и отключает клиента при ошибке
func (manager *Manager) writeOrDrop(conn *websocket.Conn, userID uint, jsonMessage []byte) {
	if err := conn.WriteMessage(websocket.TextMessage, jsonMessage); err != nil {
		log.Printf("WebSocket: ошибка при отправке сообщения: %v", err)
		manager.unregister <- &Client{
			conn:   conn,
			userID: userID,
		}
	}
}

// Handler обрабатывает подключения WebSocket. Подключение должно проходить
// через JWT middleware: неавторизованные клиенты до менеджера не доходят.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Upgrade") != "websocket" {
			c.String(http.StatusBadRequest, "Требуется WebSocket соединение")
			return
		}

		userIDValue, exists := c.Get("user_id")
		if !exists {
			c.String(http.StatusUnauthorized, "Требуется авторизация")
			return
		}
		userID, _ := userIDValue.(uint)

		clientID := c.Query("client_id")
		if clientID == "" {
			clientID = fmt.Sprintf("user_%d", userID)
		}

		// Подписка на канал присутствия запрашивается явно
		watchPresence := c.Query("channel") == PresenceChannelName

		upgrader := websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Разрешаем подключения с любых источников
			},
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("Ошибка обновления соединения до WebSocket: %v", err)
			return
		}

		client := &Client{
			conn:          conn,
			userID:        userID,
			clientID:      clientID,
			watchPresence: watchPresence,
		}

		wsManager.register <- client

		go handleMessages(client)
	}
}

// handleMessages обрабатывает сообщения от клиента
func handleMessages(client *Client) {
	defer func() {
		wsManager.unregister <- client
	}()

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			log.Printf("Ошибка при чтении сообщения от клиента %s: %v", client.clientID, err)
			break
		}

		var data map[string]interface{}
		if err := json.Unmarshal(message, &data); err != nil {
			log.Printf("Ошибка при разборе JSON: %v", err)
			continue
		}

		// Обрабатываем ping-сообщения
		if msgType, ok := data["type"].(string); ok && msgType == "ping" {
			pongMsg := map[string]interface{}{
				"type": "pong",
				"time": time.Now().Unix(),
			}
			pongJSON, _ := json.Marshal(pongMsg)
			if err := client.conn.WriteMessage(websocket.TextMessage, pongJSON); err != nil {
				log.Printf("Ошибка при отправке pong: %v", err)
			}
		}
	}
}

// SendLeaveStatusUpdate отправляет пользователю решение по его заявке на отпуск
func SendLeaveStatusUpdate(userID uint, requestID uint, status string) {
	payload := map[string]interface{}{
		"request_id": requestID,
		"status":     status,
	}
	message := &Message{
		Type:    LeaveStatusUpdateType,
		Payload: payload,
	}
	wsManager.BroadcastToUser(userID, message)
}

// BroadcastPresenceMessage отправляет сообщение в канал присутствия
// всем локальным подписчикам
func BroadcastPresenceMessage(message *Message) {
	wsManager.BroadcastPresence(message)
}

// GetManager возвращает глобальный экземпляр менеджера WebSocket
func GetManager() *Manager {
	return wsManager
}

// StartManager запускает менеджер WebSocket
func StartManager() {
	wsManager.Start()
}
