// Package notify broadcasts pipeline progress to at most one connected
// dashboard client over a single WebSocket. No stage depends on a client
// being connected — this is presentational, not part of the core pipeline.
package notify

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub manages a single active dashboard connection.
type Hub struct {
	client     *Client // nil when no dashboard is connected
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Client is one active WebSocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// EventType names the kind of progress event a Message carries.
type EventType string

const (
	EventStageStarted  EventType = "stage_started"
	EventStageFinished EventType = "stage_finished"
	EventStageFailed   EventType = "stage_failed"
	EventShortlist     EventType = "shortlist_ready"
)

// Message is the envelope broadcast to the dashboard client.
type Message struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

// StageStats is the payload for stage_started/stage_finished/stage_failed
// events — the same counters each pipeline stage's Run returns.
type StageStats struct {
	Stage string      `json:"stage"`
	Stats interface{} `json:"stats,omitempty"`
	Err   string      `json:"error,omitempty"`
}

// Run drives the hub's event loop: connect/disconnect bookkeeping and
// fan-out of broadcast messages to the one active client. Call it once in
// its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			if h.client != nil {
				close(h.client.send)
			}
			h.client = client
			h.mutex.Unlock()
			slog.Info("dashboard client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			if h.client == client {
				close(h.client.send)
				h.client = nil
				slog.Info("dashboard client disconnected")
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			h.mutex.RLock()
			if h.client != nil {
				select {
				case h.client.send <- message:
				default:
					slog.Warn("dashboard client send channel full, dropping connection")
					close(h.client.send)
					h.client = nil
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// Broadcast safely queues a typed event for the active client, if any.
func (h *Hub) Broadcast(eventType EventType, data interface{}) {
	msg := Message{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}

	jsonData, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal notify message failed", "error", err)
		return
	}

	h.mutex.RLock()
	clientExists := h.client != nil
	h.mutex.RUnlock()

	if !clientExists {
		return
	}
	h.broadcast <- jsonData
}

// StageStarted broadcasts that a pipeline stage began running.
func (h *Hub) StageStarted(stage string) {
	h.Broadcast(EventStageStarted, StageStats{Stage: stage})
}

// StageFinished broadcasts a stage's completion stats.
func (h *Hub) StageFinished(stage string, stats interface{}) {
	h.Broadcast(EventStageFinished, StageStats{Stage: stage, Stats: stats})
}

// StageFailed broadcasts a stage's terminal error.
func (h *Hub) StageFailed(stage string, err error) {
	h.Broadcast(EventStageFailed, StageStats{Stage: stage, Err: err.Error()})
}

// ServeWS upgrades an HTTP request to a WebSocket connection and registers
// it as the hub's active client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		// Reading is only to detect client disconnects; the dashboard
		// never sends commands back.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("notify readPump error", "error", err)
			}
			break
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for {
		message, ok := <-c.send
		if !ok {
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
		c.conn.WriteMessage(websocket.TextMessage, message)
	}
}
