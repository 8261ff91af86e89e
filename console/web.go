package console

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/panyam/templar"

	"github.com/panyam/sigplot/core"
)

// WSMessage represents a WebSocket message exchanged with a dashboard
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// wsClient is one connected dashboard
type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan WSMessage
	done chan struct{}
}

// WebServer serves the dashboard page, the REST API and the live
// websocket channel for one session
type WebServer struct {
	session   *Session
	archive   *SampleArchive
	templates *templar.TemplateGroup

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*wsClient
}

// NewWebServer creates a new web server instance.  The archive may be
// nil, in which case the archive routes are not registered.
func NewWebServer(session *Session, archive *SampleArchive, templatesDir string) (*WebServer, error) {
	templates, err := SetupTemplates(templatesDir)
	if err != nil {
		return nil, err
	}

	return &WebServer{
		session:   session,
		archive:   archive,
		templates: templates,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Dashboards connect from whatever host serves them
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*wsClient),
	}, nil
}

// Handler returns a configured HTTP handler with all routes
func (ws *WebServer) Handler() http.Handler {
	r := mux.NewRouter()

	NewPlotAPI(ws.session).RegisterRoutes(r)
	if ws.archive != nil {
		NewArchiveAPI(ws.archive).RegisterRoutes(r)
	}

	r.HandleFunc("/ws", ws.handleWebSocket)
	r.HandleFunc("/", ws.handleDashboard).Methods("GET")

	return r
}

// ClientCount returns the number of connected dashboards
func (ws *WebServer) ClientCount() int {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return len(ws.clients)
}

// Shutdown disconnects every dashboard
func (ws *WebServer) Shutdown() {
	ws.mu.Lock()
	clients := make([]*wsClient, 0, len(ws.clients))
	for _, c := range ws.clients {
		clients = append(clients, c)
	}
	ws.mu.Unlock()

	for _, c := range clients {
		c.conn.Close()
	}
}

// handleDashboard renders the dashboard page with the current chart
// document inlined so the first paint needs no round trip
func (ws *WebServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	cfg, err := ws.session.Config()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"Title":      "Signal Console",
		"SessionID":  ws.session.ID,
		"WindowMs":   ws.session.WindowMs(),
		"ConfigJSON": toJSON(cfg),
	}

	templates := ws.templates.MustLoad("index.html", "")
	if err := ws.templates.RenderHtmlTemplate(w, templates[0], "", data, nil); err != nil {
		http.Error(w, fmt.Sprintf("Failed to render page: %v", err), http.StatusInternalServerError)
		return
	}
}

// handleWebSocket upgrades the connection and streams chart documents
// until the client goes away
func (ws *WebServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		core.Error("WebSocket upgrade failed: %v", err)
		return
	}

	client := &wsClient{
		id:   fmt.Sprintf("conn_%s", conn.RemoteAddr().String()),
		conn: conn,
		send: make(chan WSMessage, 8),
		done: make(chan struct{}),
	}

	ws.mu.Lock()
	ws.clients[client.id] = client
	ws.mu.Unlock()

	core.Info("WebSocket client connected: %s", client.id)

	go ws.writeLoop(client)
	go ws.pushLoop(client)

	ws.deliver(client, WSMessage{
		Type: "connected",
		Data: map[string]interface{}{
			"status":    "connected",
			"sessionId": ws.session.ID,
			"id":        client.id,
		},
	})
	ws.sendConfig(client)

	ws.readLoop(client)

	ws.mu.Lock()
	delete(ws.clients, client.id)
	ws.mu.Unlock()
	close(client.done)
	conn.Close()

	core.Info("WebSocket client disconnected: %s", client.id)
}

// readLoop handles inbound client messages until the connection drops
func (ws *WebServer) readLoop(client *wsClient) {
	for {
		var msg WSMessage
		if err := client.conn.ReadJSON(&msg); err != nil {
			return
		}

		core.Debug("Received WebSocket message: %s from %s", msg.Type, client.id)

		switch msg.Type {
		case "ping":
			ws.deliver(client, WSMessage{Type: "pong", Data: msg.Data})
		case "refresh":
			ws.sendConfig(client)
		case "clear":
			// Clearing notifies subscribers, which pushes the empty chart
			ws.session.Clear()
		default:
			core.Warn("Unknown WebSocket message type: %s", msg.Type)
		}
	}
}

// writeLoop serializes all outbound traffic for one client
func (ws *WebServer) writeLoop(client *wsClient) {
	for {
		select {
		case msg := <-client.send:
			if err := client.conn.WriteJSON(msg); err != nil {
				// Unblocks the read loop as well
				client.conn.Close()
				return
			}
		case <-client.done:
			return
		}
	}
}

// pushLoop forwards session change notifications as config messages
func (ws *WebServer) pushLoop(client *wsClient) {
	subID, changes := ws.session.Subscribe()
	defer ws.session.Unsubscribe(subID)

	for {
		select {
		case <-changes:
			ws.sendConfig(client)
		case <-client.done:
			return
		}
	}
}

func (ws *WebServer) sendConfig(client *wsClient) {
	cfg, err := ws.session.Config()
	if err != nil {
		core.Error("config build failed for %s: %v", client.id, err)
		return
	}
	ws.deliver(client, WSMessage{Type: "config", Data: cfg})
}

// deliver queues a message without ever blocking the caller.  A full
// queue means the client is wedged; dropped configs are recovered by
// the next change notification.
func (ws *WebServer) deliver(client *wsClient, msg WSMessage) {
	select {
	case client.send <- msg:
	case <-client.done:
	default:
	}
}

func toJSON(v interface{}) string {
	b, _ := json.Marshal(v)
	return string(b)
}
