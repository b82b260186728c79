package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/jeongseonghan/semcom/internal/sweep"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WSMessage represents a WebSocket message.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// SweepProgressPayload reports one completed sweep point.
type SweepProgressPayload struct {
	Done     int     `json:"done"`
	Total    int     `json:"total"`
	Progress float64 `json:"progress"` // 0.0 to 1.0
	EbN0dB   float64 `json:"ebno_db"`
	BER      float64 `json:"ber"`
}

// FlowStepPayload reports one completed semantic-flow step.
type FlowStepPayload struct {
	Step int    `json:"step"`
	Name string `json:"name"`
	Text string `json:"text"`
}

// WSHub manages WebSocket connections.
type WSHub struct {
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub() *WSHub {
	return &WSHub{
		clients: make(map[*websocket.Conn]bool),
	}
}

// AddClient registers a new WebSocket connection.
func (h *WSHub) AddClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
	log.Printf("WebSocket client connected (%d total)", len(h.clients))
}

// RemoveClient removes a WebSocket connection.
func (h *WSHub) RemoveClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	conn.Close()
	log.Printf("WebSocket client disconnected (%d remaining)", len(h.clients))
}

// Broadcast sends a message to all connected clients.
func (h *WSHub) Broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("WebSocket marshal error: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.clients {
		err := conn.WriteMessage(websocket.TextMessage, data)
		if err != nil {
			log.Printf("WebSocket write error: %v", err)
			go h.RemoveClient(conn)
		}
	}
}

// BroadcastSweepPoint sends a sweep progress update to all clients.
func (h *WSHub) BroadcastSweepPoint(done, total int, p sweep.Point) {
	h.Broadcast(WSMessage{
		Type: "sweep_progress",
		Payload: SweepProgressPayload{
			Done:     done,
			Total:    total,
			Progress: float64(done) / float64(total),
			EbN0dB:   p.EbN0dB,
			BER:      p.BER,
		},
	})
}

// BroadcastFlowStep sends a semantic-flow step update to all clients.
func (h *WSHub) BroadcastFlowStep(step int, name, text string) {
	h.Broadcast(WSMessage{
		Type: "flow_step",
		Payload: FlowStepPayload{
			Step: step,
			Name: name,
			Text: text,
		},
	})
}

// BroadcastLog sends a log message to all clients.
func (h *WSHub) BroadcastLog(level, message string) {
	h.Broadcast(WSMessage{
		Type: "log",
		Payload: map[string]string{
			"level":   level,
			"message": message,
		},
	})
}
