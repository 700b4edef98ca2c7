package mockservice

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agentmode/agentprobe/internal/common/httpmw"
	"github.com/agentmode/agentprobe/internal/common/logger"
	v1 "github.com/agentmode/agentprobe/pkg/api/v1"
)

// Server serves the Agent Mode HTTP surface for one scenario. Session state
// is seeded at construction and read-only afterwards, so handlers need no
// locking.
type Server struct {
	scenario Scenario
	sessions []v1.Session
	byID     map[string]v1.Session
	logger   *logger.Logger
	router   *gin.Engine
}

// NewServer creates a mock server for the given scenario.
func NewServer(sc Scenario, log *logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	sc.normalize()
	sessions := seedSessions(sc.SeedSessions)
	byID := make(map[string]v1.Session, len(sessions))
	for _, sess := range sessions {
		byID[sess.ID] = sess
	}

	s := &Server{
		scenario: sc,
		sessions: sessions,
		byID:     byID,
		logger:   log.WithFields(zap.String("component", "mock-agent-mode")),
		router:   gin.New(),
	}

	s.router.Use(gin.Recovery())
	s.router.Use(httpmw.RequestLogger(s.logger, "mock-agent-mode"))
	s.router.Use(httpmw.OtelTracing("mock-agent-mode"))

	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler, for both the binary and in-process tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	agent := s.router.Group("/v1/agent")
	{
		agent.GET("/health", s.handleHealth)
		agent.GET("/sessions", s.handleListSessions)
		agent.GET("/sessions/:id", s.handleGetSession)
		agent.POST("/sessions/:id/messages", s.handleSendMessage)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.scenario.Health != nil {
		writeBehavior(c, s.scenario.Health)
		return
	}
	c.JSON(http.StatusOK, v1.HealthResponse{
		Adapter:   s.scenario.Adapter,
		Healthy:   s.scenario.IsHealthy(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleListSessions(c *gin.Context) {
	if s.scenario.SessionList != nil {
		writeBehavior(c, s.scenario.SessionList)
		return
	}
	c.JSON(http.StatusOK, v1.SessionListResponse{Sessions: s.sessions})
}

func (s *Server) handleGetSession(c *gin.Context) {
	if s.scenario.SessionLookup != nil {
		writeBehavior(c, s.scenario.SessionLookup)
		return
	}
	sess, ok := s.byID[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// handleSendMessage always declines: the real service forwards messages to a
// terminal-attached CLI, which the mock does not carry.
func (s *Server) handleSendMessage(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"error": "message delivery requires the terminal-attached CLI"})
}

// writeBehavior sends an override response verbatim.
func writeBehavior(c *gin.Context, b *RouteBehavior) {
	contentType := b.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(b.Status, contentType, []byte(b.Body))
}

// seedSessions builds n fake active sessions; counts below zero seed none.
// The slice is non-nil even when empty so the list serializes as [] rather
// than null.
func seedSessions(n int) []v1.Session {
	if n < 0 {
		n = 0
	}
	sessions := make([]v1.Session, 0, n)
	now := time.Now().UTC()
	for i := 0; i < n; i++ {
		sessions = append(sessions, v1.Session{
			ID:        uuid.NewString(),
			State:     v1.SessionStateActive,
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}
	return sessions
}
