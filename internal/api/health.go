package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/streamvault/internal/browser"
	"github.com/stwalsh4118/streamvault/internal/db"
)

// HealthResponse represents the response from the health check endpoint
type HealthResponse struct {
	Status   string                 `json:"status"`
	Database string                 `json:"database"`
	Catalog  string                 `json:"catalog"`
	Channels int                    `json:"channels"`
	Time     string                 `json:"time"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db      *db.DB
	session *browser.Session
}

// NewHealthHandler creates a new health check handler
func NewHealthHandler(database *db.DB, session *browser.Session) *HealthHandler {
	return &HealthHandler{db: database, session: session}
}

// Check handles GET /api/health
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	state := h.session.State()
	response := HealthResponse{
		Status:   "ok",
		Catalog:  state.Variant,
		Channels: state.Channels,
		Time:     time.Now().UTC().Format(time.RFC3339),
		Details:  make(map[string]interface{}),
	}

	if err := h.db.Health(ctx); err != nil {
		response.Status = "degraded"
		response.Database = "unhealthy"
		response.Details["database_error"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	response.Database = "healthy"
	c.JSON(http.StatusOK, response)
}

// SetupHealthRoutes registers health check routes
func SetupHealthRoutes(apiGroup *gin.RouterGroup, database *db.DB, session *browser.Session) {
	handler := NewHealthHandler(database, session)
	apiGroup.GET("/health", handler.Check)
}
