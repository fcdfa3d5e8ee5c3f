// Package server exposes the coordination core over HTTP: payload
// ingestion, selection and instance endpoints, and a WebSocket
// registry through which browser views act as remote renderers.
package server

import (
	"log/slog"
	"net/http"
	"sync"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"

	"github.com/AlessandroCarella/treescope/explanation"
	"github.com/AlessandroCarella/treescope/feature"
	"github.com/AlessandroCarella/treescope/highlight"
	"github.com/AlessandroCarella/treescope/tree"
)

// Server implements the HTTP API of the explanation dashboard core.
type Server struct {
	store       explanation.SessionStore
	coordinator *highlight.Coordinator
	mu          sync.Mutex
	current     *explanation.Session
	sockets     map[*Client]struct{}
}

// New creates a server on top of a session store.
func New(store explanation.SessionStore) *Server {
	return &Server{
		store:       store,
		coordinator: highlight.NewCoordinator(),
		sockets:     make(map[*Client]struct{}),
	}
}

// Coordinator returns the coordinator driving all registered views.
func (s *Server) Coordinator() *highlight.Coordinator { return s.coordinator }

// SetupRoutes configures and returns the HTTP router with all API endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return slog.Default()
		}),
	))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set(
			"Access-Control-Allow-Methods",
			"GET, POST, PUT, DELETE, OPTIONS",
		)
		c.Writer.Header().Set(
			"Access-Control-Allow-Headers",
			"Content-Type, Authorization",
		)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/explain", s.handleExplain)
		api.POST("/select", s.handleSelect)
		api.POST("/instance", s.handleInstance)
		api.POST("/reset", s.handleReset)
		api.GET("/state", s.handleState)
		api.GET("/explanations/:id", s.handleGetExplanation)
		api.GET("/ws", s.handleWebSocket)
	}

	return router
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

/*
handleExplain ingests a precomputed explanation payload, persists a
session for it, makes it the current one, rebinds every connected
view and applies the payload's explained instance.
*/
func (s *Server) handleExplain(c *gin.Context) {
	e, err := explanation.Read(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	session, err := explanation.NewSession(e)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.store.Create(c.Request.Context(), session); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	s.mu.Lock()
	s.current = session
	s.coordinator.ResetSession()
	for client := range s.sockets {
		s.bindLocked(client)
	}
	inst := e.EncodedInstance
	s.mu.Unlock()

	if len(inst) > 0 {
		s.coordinator.SetExplainedInstance(inst)
	}

	c.JSON(http.StatusCreated, gin.H{"session_id": session.ID})
}

type selectRequest struct {
	NodeID int    `json:"node_id"`
	Source string `json:"source"`
}

/*
handleSelect handles a node click from a view. Whether the node is a
leaf is derived from the session tree, never trusted from the client.
*/
func (s *Server) handleSelect(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	session := s.currentSession()
	if session == nil {
		c.JSON(http.StatusConflict, errorResponse{Error: "no explanation loaded"})
		return
	}
	node := session.Tree.Node(req.NodeID)
	if node == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "unknown node"})
		return
	}
	s.coordinator.CoordinateHighlighting(req.NodeID, node.IsLeaf, tree.Kind(req.Source))
	c.JSON(http.StatusOK, s.stateResponse(session))
}

/*
handleInstance sets or replaces the explained instance for the
current session and persists it with the archived payload.
*/
func (s *Server) handleInstance(c *gin.Context) {
	var inst feature.Instance
	if err := c.ShouldBindJSON(&inst); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	session := s.currentSession()
	if session == nil {
		c.JSON(http.StatusConflict, errorResponse{Error: "no explanation loaded"})
		return
	}
	session.SetInstance(inst)
	s.coordinator.SetExplainedInstance(inst)

	// The payload is shared with concurrent readers of the memory
	// store, so it is mutated and encoded under the server mutex.
	s.mu.Lock()
	session.Explanation.EncodedInstance = inst
	err := s.store.Store(c.Request.Context(), session)
	s.mu.Unlock()
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.stateResponse(session))
}

// handleReset clears the selection and the explained instance.
func (s *Server) handleReset(c *gin.Context) {
	session := s.currentSession()
	if session != nil {
		session.SetInstance(nil)
	}
	s.coordinator.ResetSession()
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

type stateResponse struct {
	SessionID     string              `json:"session_id"`
	Selected      *int                `json:"selected"`
	Instance      feature.Instance    `json:"instance,omitempty"`
	InstancePaths map[tree.Kind][]int `json:"instance_paths"`
}

func (s *Server) handleState(c *gin.Context) {
	session := s.currentSession()
	if session == nil {
		c.JSON(http.StatusConflict, errorResponse{Error: "no explanation loaded"})
		return
	}
	c.JSON(http.StatusOK, s.stateResponse(session))
}

func (s *Server) stateResponse(session *explanation.Session) stateResponse {
	sel := s.coordinator.Selection()
	resp := stateResponse{
		SessionID:     session.ID,
		Selected:      sel.Selected,
		Instance:      sel.Instance,
		InstancePaths: make(map[tree.Kind][]int, len(session.States)),
	}
	for kind, state := range session.States {
		resp.InstancePaths[kind] = state.InstancePath()
	}
	return resp
}

// handleGetExplanation looks an archived payload up by session id.
func (s *Server) handleGetExplanation(c *gin.Context) {
	session, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if session == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "unknown explanation"})
		return
	}
	// Snapshot the payload under the server mutex: the memory store
	// hands out the live session, whose instance handleInstance
	// replaces.
	s.mu.Lock()
	e := *session.Explanation
	s.mu.Unlock()
	c.JSON(http.StatusOK, e)
}

func (s *Server) currentSession() *explanation.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

/*
bindLocked wires a registered view into the coordinator as a remote
renderer for the current session. Views registered before a session
is loaded are bound when one arrives. Callers hold s.mu.
*/
func (s *Server) bindLocked(client *Client) {
	if s.current == nil || client.kind == "" {
		return
	}
	if client.kind == scatterKind {
		sh := highlight.NewScatterHighlighter(
			s.current.Tree, s.current.Explanation.ScatterPlot.OriginalData, client)
		s.coordinator.RegisterScatterHighlighter(sh)
		return
	}
	kind := tree.Kind(client.kind)
	state, ok := s.current.States[kind]
	if !ok {
		slog.Warn("view registered for unknown tree kind", "kind", client.kind)
		return
	}
	s.coordinator.RegisterTreeHandler(kind, highlight.NewHandler(state, client))
}

func (s *Server) registerWebSocket(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets[client] = struct{}{}
}

func (s *Server) unregisterWebSocket(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sockets, client)
}

// CloseWebSockets closes all active WebSocket connections.
func (s *Server) CloseWebSockets() {
	s.mu.Lock()
	conns := make([]*Client, 0, len(s.sockets))
	for client := range s.sockets {
		conns = append(conns, client)
	}
	s.mu.Unlock()

	for _, client := range conns {
		client.Close()
	}
}
