package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait          = 10 * time.Second
	pongWait           = 60 * time.Second
	pingPeriod         = (pongWait * 9) / 10
	maxMessageSize     = 512
	wsBufferSize       = 1024
	incomingBufferSize = 16
	outgoingBufferSize = 256

	// scatterKind registers a view as the scatter-plot renderer
	// instead of a tree layout.
	scatterKind = "scatter"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  wsBufferSize,
	WriteBufferSize: wsBufferSize,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type (
	// Client represents a WebSocket view connection. Once registered
	// for a kind it acts as the remote renderer for that view: every
	// highlight operation the coordinator computes is forwarded to it
	// as a JSON event.
	Client struct {
		server   *Server
		conn     *websocket.Conn
		kind     string
		outgoing chan *ViewEvent
	}

	// ViewEvent is one highlight operation on the wire.
	ViewEvent struct {
		Type              string `json:"type"`
		NodeID            *int   `json:"node_id,omitempty"`
		ParentID          *int   `json:"parent_id,omitempty"`
		ChildID           *int   `json:"child_id,omitempty"`
		Path              []int  `json:"path,omitempty"`
		Indexes           []int  `json:"indexes,omitempty"`
		DatasetMembership []bool `json:"dataset_membership,omitempty"`
	}

	registerRequest struct {
		Type string `json:"type"`
		Kind string `json:"kind"`
	}
)

// Event types sent to views.
const (
	EventHighlightNode = "highlight_node"
	EventHighlightLink = "highlight_link"
	EventInstancePath  = "instance_path"
	EventReset         = "reset"
	EventHighlightPts  = "highlight_points"
	EventResetPts      = "reset_points"
)

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		server:   s,
		conn:     conn,
		outgoing: make(chan *ViewEvent, outgoingBufferSize),
	}
	s.registerWebSocket(client)
	go client.run()
}

// Close closes the underlying connection, ending the client's run loop.
func (c *Client) Close() {
	_ = c.conn.Close()
}

func (c *Client) run() {
	defer func() {
		c.server.unregisterWebSocket(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	incoming := make(chan []byte, incomingBufferSize)
	go c.readMessages(incoming)

	for {
		select {
		case message, ok := <-incoming:
			if !ok {
				return
			}
			c.handleRegister(message)

		case event := <-c.outgoing:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(event); err != nil {
				slog.Error("WebSocket write failed", "error", err)
				return
			}

		case <-ticker.C:
			if !c.sendPing() {
				return
			}
		}
	}
}

func (c *Client) readMessages(incoming chan []byte) {
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			close(incoming)
			return
		}
		incoming <- message
	}
}

/*
handleRegister processes a view's registration message and binds the
client into the coordinator for the requested kind. Re-registering
switches the view to another kind.
*/
func (c *Client) handleRegister(message []byte) {
	var req registerRequest
	if err := json.Unmarshal(message, &req); err != nil {
		slog.Error("Failed to parse WebSocket message", "error", err)
		return
	}
	if req.Type != "register" {
		return
	}
	c.server.mu.Lock()
	c.kind = req.Kind
	c.server.bindLocked(c)
	c.server.mu.Unlock()
}

func (c *Client) sendPing() bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := c.conn.WriteMessage(websocket.PingMessage, nil)
	return err == nil
}

/*
send queues an event for delivery. Events are dropped with a warning
when the view cannot keep up, the coordinator must never block on a
slow socket.
*/
func (c *Client) send(ev *ViewEvent) {
	select {
	case c.outgoing <- ev:
	default:
		slog.Warn("dropping view event, outgoing buffer full", "kind", c.kind, "type", ev.Type)
	}
}

// HighlightNode implements highlight.Renderer.
func (c *Client) HighlightNode(id int) {
	c.send(&ViewEvent{Type: EventHighlightNode, NodeID: &id})
}

// HighlightLink implements highlight.Renderer.
func (c *Client) HighlightLink(parentID, childID int) {
	c.send(&ViewEvent{Type: EventHighlightLink, ParentID: &parentID, ChildID: &childID})
}

// ApplyInstancePath implements highlight.Renderer.
func (c *Client) ApplyInstancePath(ids []int) {
	c.send(&ViewEvent{Type: EventInstancePath, Path: ids})
}

// Reset implements highlight.Renderer.
func (c *Client) Reset() {
	c.send(&ViewEvent{Type: EventReset})
}

// HighlightPoints implements highlight.PointRenderer.
func (c *Client) HighlightPoints(indexes []int) {
	c.send(&ViewEvent{Type: EventHighlightPts, Indexes: indexes})
}

// ResetPoints implements highlight.PointRenderer.
func (c *Client) ResetPoints(datasetMembership []bool) {
	c.send(&ViewEvent{Type: EventResetPts, DatasetMembership: datasetMembership})
}
