package ws

import (
	"context"
	"encoding/json"
	"time"

	"guesswho_backend/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

// входящее управляющее сообщение клиента
type clientMessage struct {
	Type    string `json:"type"` // subscribe | unsubscribe
	Channel string `json:"channel"`
}

// Client - одно websocket-соединение аутентифицированного игрока
type Client struct {
	UserID   int64
	conn     *websocket.Conn
	hub      *Hub
	send     chan []byte
	channels map[string]struct{}
}

func NewClient(userID int64, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		UserID:   userID,
		conn:     conn,
		hub:      hub,
		send:     make(chan []byte, 64),
		channels: make(map[string]struct{}),
	}
}

func (c *Client) Run() {
	wsClients.Inc()
	go c.writePump()
	c.readPump()
}

// read: управляющие сообщения подписки
func (c *Client) readPump() {
	defer func() {
		c.hub.drop(c)
		_ = c.conn.Close()
		wsClients.Dec()
	}()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			logger.Debug("ws: соединение закрыто", "user_id", c.UserID, "error", err)
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Channel == "" {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		switch msg.Type {
		case "subscribe":
			ok := c.hub.subscribe(ctx, c, msg.Channel)
			c.ack(msg.Channel, ok)
		case "unsubscribe":
			c.hub.unsubscribe(c, msg.Channel)
		}
		cancel()
	}
}

// подтверждение подписки, чтобы клиент знал результат авторизации канала
func (c *Client) ack(channel string, ok bool) {
	raw, _ := json.Marshal(map[string]any{
		"type":       "subscription",
		"channel":    channel,
		"subscribed": ok,
	})
	select {
	case c.send <- raw:
	default:
	}
}

// write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("ws: ошибка записи", "user_id", c.UserID, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
