package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/IKKNIGHT/PureBlocks/internal/runner"
)

// WSEvent is the JSON envelope broadcast to WebSocket clients.
type WSEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Hub fans run events (console lines, draw commands, run status) out to
// every connected WebSocket client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool

	registerCh   chan *Client
	unregisterCh chan *Client
	broadcastCh  chan message
}

type message struct {
	runID string
	data  []byte
}

// Client wraps a single WebSocket connection. A client with a run id only
// receives events of that run.
type Client struct {
	conn  *websocket.Conn
	send  chan []byte
	runID string
}

func NewHub() *Hub {
	return &Hub{
		clients:      make(map[*Client]bool),
		registerCh:   make(chan *Client, 16),
		unregisterCh: make(chan *Client, 16),
		broadcastCh:  make(chan message, 1024),
	}
}

// Run processes register, unregister, and broadcast events.
// Blocks until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return

		case client := <-h.registerCh:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregisterCh:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()

		case msg := <-h.broadcastCh:
			h.mu.RLock()
			for c := range h.clients {
				if c.runID != "" && msg.runID != "" && c.runID != msg.runID {
					continue
				}
				select {
				case c.send <- msg.data:
				default:
					// slow client
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast sends data to every client subscribed to runID, or to all
// clients when runID is empty. It never blocks; when the queue is full the
// message is dropped.
func (h *Hub) Broadcast(runID string, data []byte) {
	select {
	case h.broadcastCh <- message{runID: runID, data: data}:
	default:
	}
}

// BroadcastEvent marshals a WSEvent and broadcasts it. Its signature matches
// runner.WithEvents.
func (h *Hub) BroadcastEvent(eventType string, payload interface{}) {
	data, err := json.Marshal(WSEvent{Type: eventType, Payload: payload})
	if err != nil {
		log.Printf("websocket: failed to marshal %s event: %v", eventType, err)
		return
	}
	h.Broadcast(runIDOf(payload), data)
}

func runIDOf(payload interface{}) string {
	switch p := payload.(type) {
	case runner.ConsoleEvent:
		return p.RunID
	case runner.DrawEvent:
		return p.RunID
	case map[string]string:
		return p["run_id"]
	case map[string]interface{}:
		id, _ := p["run_id"].(string)
		return id
	}
	return ""
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the request and streams events until the client
// goes away.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // editor may be served from another origin
	})
	if err != nil {
		log.Printf("websocket: accept failed: %v", err)
		return
	}

	client := &Client{
		conn:  conn,
		send:  make(chan []byte, 256),
		runID: r.URL.Query().Get("run"),
	}

	h.registerCh <- client

	go h.writePump(r.Context(), client)
	h.readPump(r.Context(), client)
}

func (h *Hub) writePump(ctx context.Context, c *Client) {
	defer c.conn.Close(websocket.StatusNormalClosure, "")

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := c.conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// readPump drains the connection; clients only listen.
func (h *Hub) readPump(ctx context.Context, c *Client) {
	defer func() {
		h.unregisterCh <- c
	}()

	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}
