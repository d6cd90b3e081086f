package ws

import (
	"context"
	"encoding/json"
	"sync"

	"guesswho_backend/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var wsClients = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "guesswho_ws_clients",
	Help: "Текущее число подключенных websocket-клиентов",
})

// решает, может ли пользователь подписаться на канал
type AuthorizeFunc func(ctx context.Context, userID int64, channel string) bool

// конверт исходящего сообщения
type envelope struct {
	Channel string `json:"channel"`
	Data    any    `json:"data"`
}

// Hub доставляет серверные события на приватные каналы подписчиков.
// Доставка at-most-once: медленный клиент теряет сообщение, не блокируя
// критическую секцию
type Hub struct {
	mu        sync.RWMutex
	topics    map[string]map[int64]*Client
	authorize AuthorizeFunc
}

func NewHub(authorize AuthorizeFunc) *Hub {
	return &Hub{
		topics:    make(map[string]map[int64]*Client),
		authorize: authorize,
	}
}

// Publish шлет событие всем подписчикам канала
func (h *Hub) Publish(topic string, event any) {
	h.publish(topic, -1, event)
}

// PublishExcept шлет событие всем подписчикам канала, кроме инициатора -
// семантика toOthers
func (h *Hub) PublishExcept(topic string, exceptUserID int64, event any) {
	h.publish(topic, exceptUserID, event)
}

func (h *Hub) publish(topic string, exceptUserID int64, event any) {
	raw, err := json.Marshal(envelope{Channel: topic, Data: event})
	if err != nil {
		logger.Error("hub: сериализация события", "topic", topic, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for userID, c := range h.topics[topic] {
		if userID == exceptUserID {
			continue
		}
		select {
		case c.send <- raw:
		default:
			logger.Warn("hub: канал отправки переполнен, событие потеряно",
				"topic", topic, "user_id", userID)
		}
	}
}

// subscribe подписывает клиента после проверки прав на канал
func (h *Hub) subscribe(ctx context.Context, c *Client, topic string) bool {
	if h.authorize != nil && !h.authorize(ctx, c.UserID, topic) {
		logger.Warn("hub: подписка отклонена", "topic", topic, "user_id", c.UserID)
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[int64]*Client)
	}
	h.topics[topic][c.UserID] = c
	c.channels[topic] = struct{}{}
	return true
}

func (h *Hub) unsubscribe(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c, topic)
}

// drop снимает клиента со всех каналов при разрыве соединения
func (h *Hub) drop(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for topic := range c.channels {
		h.removeLocked(c, topic)
	}
}

func (h *Hub) removeLocked(c *Client, topic string) {
	delete(c.channels, topic)
	subs := h.topics[topic]
	if subs == nil {
		return
	}
	if subs[c.UserID] == c {
		delete(subs, c.UserID)
	}
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
}
