// Package notify broadcasts analysis lifecycle events to websocket
// subscribers.
package notify

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Message is one broadcast event envelope.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// AnalysisStart is the payload of an analysis_start event.
type AnalysisStart struct {
	JobID       string `json:"job_id"`
	TokenName   string `json:"token_name"`
	TokenSymbol string `json:"token_symbol"`
}

// AnalysisComplete is the payload of an analysis_complete event.
type AnalysisComplete struct {
	JobID        string `json:"job_id"`
	TokenName    string `json:"token_name"`
	TokenSymbol  string `json:"token_symbol"`
	Acronym      string `json:"acronym"`
	WalletsFound int    `json:"wallets_found"`
	TokenID      int64  `json:"token_id"`
}

// Hub fans broadcast messages out to all connected clients. A slow or
// dead client is dropped rather than blocking the rest.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *log.Logger
	verbose  bool

	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte

	// Hooks for gauge updates, optional.
	OnConnect    func()
	OnDisconnect func()
}

// NewHub creates a websocket hub.
func NewHub(logger *log.Logger, verbose bool) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Dashboard clients connect from a separate origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:  logger,
		verbose: verbose,
		clients: make(map[*websocket.Conn]chan []byte),
	}
}

// ServeHTTP upgrades the request and registers the client until its
// connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log("upgrade failed: %v", err)
		return
	}

	send := make(chan []byte, 16)

	h.mu.Lock()
	h.clients[conn] = send
	count := len(h.clients)
	h.mu.Unlock()

	if h.OnConnect != nil {
		h.OnConnect()
	}
	h.log("client connected (%d total)", count)

	go h.writeLoop(conn, send)
	h.readLoop(conn)
}

// Broadcast sends an event to every connected client.
func (h *Hub) Broadcast(event string, data interface{}) {
	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		h.log("marshal broadcast: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, send := range h.clients {
		select {
		case send <- payload:
		default:
			// Client cannot keep up; drop it.
			delete(h.clients, conn)
			close(send)
			conn.Close()
		}
	}
}

// AnalysisStarted broadcasts an analysis_start event.
func (h *Hub) AnalysisStarted(jobID, tokenName, tokenSymbol string) {
	h.Broadcast("analysis_start", AnalysisStart{
		JobID:       jobID,
		TokenName:   tokenName,
		TokenSymbol: tokenSymbol,
	})
}

// AnalysisCompleted broadcasts an analysis_complete event.
func (h *Hub) AnalysisCompleted(jobID, tokenName, tokenSymbol, acronym string, walletsFound int, tokenID int64) {
	h.Broadcast("analysis_complete", AnalysisComplete{
		JobID:        jobID,
		TokenName:    tokenName,
		TokenSymbol:  tokenSymbol,
		Acronym:      acronym,
		WalletsFound: walletsFound,
		TokenID:      tokenID,
	})
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) writeLoop(conn *websocket.Conn, send chan []byte) {
	for payload := range send {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			break
		}
	}
	conn.Close()
}

// readLoop drains client frames until the connection dies, then
// unregisters it. Inbound payloads are ignored.
func (h *Hub) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	if send, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(send)
	}
	h.mu.Unlock()

	conn.Close()
	if h.OnDisconnect != nil {
		h.OnDisconnect()
	}
	h.log("client disconnected")
}

func (h *Hub) log(format string, args ...interface{}) {
	if h.verbose {
		h.logger.Printf("[notify] "+format, args...)
	}
}
