package gateway

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"blackjack-lite/internal/auth"
	"blackjack-lite/internal/ledger"
	"blackjack-lite/internal/lobby"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: Restrict in production
	},
}

// Connection represents a WebSocket client connection.
type Connection struct {
	ID      uint64
	Conn    *websocket.Conn
	Send    chan []byte
	Gateway *Gateway

	mu       sync.Mutex
	playerID uint64
	username string
}

// Gateway manages WebSocket connections and routes game commands to the
// lobby and ledger.
type Gateway struct {
	mu          sync.RWMutex
	connections map[uint64]*Connection
	playerConns map[uint64]*Connection
	nextConnID  uint64

	auth   auth.Service
	lobby  *lobby.Lobby
	ledger *ledger.Ledger
}

func New(authService auth.Service, lby *lobby.Lobby, led *ledger.Ledger) *Gateway {
	return &Gateway{
		connections: make(map[uint64]*Connection),
		playerConns: make(map[uint64]*Connection),
		auth:        authService,
		lobby:       lby,
		ledger:      led,
	}
}

// HandleWebSocket upgrades the request and starts the connection pumps.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] Upgrade error: %v", err)
		return
	}

	g.mu.Lock()
	g.nextConnID++
	c := &Connection{
		ID:      g.nextConnID,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		Gateway: g,
	}
	g.connections[c.ID] = c
	total := len(g.connections)
	g.mu.Unlock()

	log.Printf("[Gateway] Client connected: conn_%d, total: %d", c.ID, total)

	go c.readPump()
	go c.writePump()
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(65536)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Gateway] Read error: %v", err)
			}
			break
		}
		if messageType == websocket.TextMessage {
			c.handleMessage(message)
		}
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.connections, c.ID)
	if pid := c.PlayerID(); pid != 0 && g.playerConns[pid] == c {
		delete(g.playerConns, pid)
	}
	log.Printf("[Gateway] Client disconnected: conn_%d, total: %d", c.ID, len(g.connections))
}

func (g *Gateway) bindPlayer(c *Connection, playerID uint64, username string) {
	c.mu.Lock()
	c.playerID = playerID
	c.username = username
	c.mu.Unlock()

	g.mu.Lock()
	g.playerConns[playerID] = c
	g.mu.Unlock()
}

func (c *Connection) PlayerID() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playerID
}

func (c *Connection) send(msg serverMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[Gateway] marshal failed: %v", err)
		return
	}
	select {
	case c.Send <- data:
	default:
		// Drop if buffer full
	}
}

func (c *Connection) sendError(code, message string) {
	c.send(serverMessage{Type: "error", Code: code, Message: message})
}

// broadcastToPlayers fans a message out to every listed player with a
// live connection.
func (g *Gateway) broadcastToPlayers(playerIDs []uint64, msg serverMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[Gateway] marshal failed: %v", err)
		return
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, id := range playerIDs {
		c := g.playerConns[id]
		if c == nil {
			continue
		}
		select {
		case c.Send <- data:
		default:
			// Drop if buffer full
		}
	}
}
