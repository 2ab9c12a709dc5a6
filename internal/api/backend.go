package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/streamvault/internal/backend"
	"github.com/stwalsh4118/streamvault/internal/browser"
	"github.com/stwalsh4118/streamvault/internal/logger"
	"github.com/stwalsh4118/streamvault/internal/middleware"
	"github.com/stwalsh4118/streamvault/internal/models"
)

// BackendChannelRequest represents a backend channel create or replace
type BackendChannelRequest struct {
	Name         string `json:"name" binding:"required"`
	StreamURL    string `json:"stream_url" binding:"required"`
	Language     string `json:"language"`
	Country      string `json:"country"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func (r BackendChannelRequest) input() backend.ChannelInput {
	return backend.ChannelInput{
		Name:         r.Name,
		StreamURL:    r.StreamURL,
		Language:     r.Language,
		Country:      r.Country,
		ThumbnailURL: r.ThumbnailURL,
	}
}

// BackendChannelListResponse represents the backend channel list
type BackendChannelListResponse struct {
	Channels []models.BackendChannel `json:"channels"`
}

// CreatePlaylistRequest represents a request to create a playlist
type CreatePlaylistRequest struct {
	Name string `json:"name" binding:"required"`
}

// PlaylistListResponse represents the caller's playlists
type PlaylistListResponse struct {
	Playlists []models.Playlist `json:"playlists"`
}

// AddToPlaylistRequest represents a request to add a channel to a playlist
type AddToPlaylistRequest struct {
	ChannelID *int64 `json:"channel_id" binding:"required,min=0"`
}

// SaveProfileRequest represents a profile update
type SaveProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

// AssignRoleRequest represents a role assignment
type AssignRoleRequest struct {
	Role models.UserRole `json:"role" binding:"required"`
}

// RoleResponse represents the caller's role
type RoleResponse struct {
	Role    models.UserRole `json:"role"`
	IsAdmin bool            `json:"is_admin"`
}

// BackendHandler handles the structured backend endpoints
type BackendHandler struct {
	service *backend.Service
	session *browser.Session
}

// NewBackendHandler creates a new backend handler instance. session may be
// nil; when it holds the backend catalog it is refreshed after channel edits.
func NewBackendHandler(service *backend.Service, session *browser.Session) *BackendHandler {
	return &BackendHandler{service: service, session: session}
}

func (h *BackendHandler) refreshCatalog(ctx context.Context) {
	if h.session == nil || h.session.State().Variant != browser.VariantBackend {
		return
	}
	if _, err := h.session.RefreshBackend(ctx); err != nil {
		logger.Log.Warn().
			Err(err).
			Msg("Failed to refresh catalog after channel change")
	}
}

// ListChannels handles GET /api/backend/channels
func (h *BackendHandler) ListChannels(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	channels, err := h.service.ListChannels(ctx)
	if err != nil {
		writeBackendError(c, err, "list channels")
		return
	}
	if channels == nil {
		channels = []models.BackendChannel{}
	}

	c.JSON(http.StatusOK, BackendChannelListResponse{Channels: channels})
}

// GetChannel handles GET /api/backend/channels/:id
func (h *BackendHandler) GetChannel(c *gin.Context) {
	id, ok := parseID(c, "id", "channel")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	ch, err := h.service.GetChannel(ctx, id)
	if err != nil {
		writeBackendError(c, err, "get channel")
		return
	}

	c.JSON(http.StatusOK, ch)
}

// CreateChannel handles POST /api/backend/channels
func (h *BackendHandler) CreateChannel(c *gin.Context) {
	var req BackendChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, http.StatusBadRequest, "invalid_request", "Invalid request body: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	ch, err := h.service.AddChannel(ctx, middleware.Principal(c), req.input())
	if err != nil {
		writeBackendError(c, err, "create channel")
		return
	}
	h.refreshCatalog(ctx)

	c.JSON(http.StatusCreated, ch)
}

// UpdateChannel handles PUT /api/backend/channels/:id
func (h *BackendHandler) UpdateChannel(c *gin.Context) {
	id, ok := parseID(c, "id", "channel")
	if !ok {
		return
	}

	var req BackendChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, http.StatusBadRequest, "invalid_request", "Invalid request body: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	ch, err := h.service.UpdateChannel(ctx, middleware.Principal(c), id, req.input())
	if err != nil {
		writeBackendError(c, err, "update channel")
		return
	}
	h.refreshCatalog(ctx)

	c.JSON(http.StatusOK, ch)
}

// DeleteChannel handles DELETE /api/backend/channels/:id
func (h *BackendHandler) DeleteChannel(c *gin.Context) {
	id, ok := parseID(c, "id", "channel")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.service.DeleteChannel(ctx, middleware.Principal(c), id); err != nil {
		writeBackendError(c, err, "delete channel")
		return
	}
	h.refreshCatalog(ctx)

	c.Status(http.StatusNoContent)
}

// ListPlaylists handles GET /api/playlists
func (h *BackendHandler) ListPlaylists(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	playlists, err := h.service.ListPlaylists(ctx, middleware.Principal(c))
	if err != nil {
		writeBackendError(c, err, "list playlists")
		return
	}
	if playlists == nil {
		playlists = []models.Playlist{}
	}

	c.JSON(http.StatusOK, PlaylistListResponse{Playlists: playlists})
}

// GetPlaylist handles GET /api/playlists/:id
func (h *BackendHandler) GetPlaylist(c *gin.Context) {
	id, ok := parseID(c, "id", "playlist")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	playlist, err := h.service.GetPlaylist(ctx, middleware.Principal(c), id)
	if err != nil {
		writeBackendError(c, err, "get playlist")
		return
	}

	c.JSON(http.StatusOK, playlist)
}

// CreatePlaylist handles POST /api/playlists
func (h *BackendHandler) CreatePlaylist(c *gin.Context) {
	var req CreatePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, http.StatusBadRequest, "invalid_request", "Invalid request body: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	playlist, err := h.service.CreatePlaylist(ctx, middleware.Principal(c), req.Name)
	if err != nil {
		writeBackendError(c, err, "create playlist")
		return
	}

	c.JSON(http.StatusCreated, playlist)
}

// DeletePlaylist handles DELETE /api/playlists/:id
func (h *BackendHandler) DeletePlaylist(c *gin.Context) {
	id, ok := parseID(c, "id", "playlist")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.service.DeletePlaylist(ctx, middleware.Principal(c), id); err != nil {
		writeBackendError(c, err, "delete playlist")
		return
	}

	c.Status(http.StatusNoContent)
}

// AddToPlaylist handles POST /api/playlists/:id/channels
func (h *BackendHandler) AddToPlaylist(c *gin.Context) {
	id, ok := parseID(c, "id", "playlist")
	if !ok {
		return
	}

	var req AddToPlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, http.StatusBadRequest, "invalid_request", "Invalid request body: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	playlist, err := h.service.AddChannelToPlaylist(ctx, middleware.Principal(c), id, *req.ChannelID)
	if err != nil {
		writeBackendError(c, err, "add channel to playlist")
		return
	}

	c.JSON(http.StatusOK, playlist)
}

// RemoveFromPlaylist handles DELETE /api/playlists/:id/channels/:channel_id
func (h *BackendHandler) RemoveFromPlaylist(c *gin.Context) {
	id, ok := parseID(c, "id", "playlist")
	if !ok {
		return
	}
	channelID, ok := parseChannelNumber(c, "channel_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	playlist, err := h.service.RemoveChannelFromPlaylist(ctx, middleware.Principal(c), id, channelID)
	if err != nil {
		writeBackendError(c, err, "remove channel from playlist")
		return
	}

	c.JSON(http.StatusOK, playlist)
}

// GetProfile handles GET /api/profile
func (h *BackendHandler) GetProfile(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	profile, err := h.service.GetCallerProfile(ctx, middleware.Principal(c))
	if err != nil {
		writeBackendError(c, err, "get profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// SaveProfile handles PUT /api/profile
func (h *BackendHandler) SaveProfile(c *gin.Context) {
	var req SaveProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, http.StatusBadRequest, "invalid_request", "Invalid request body: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	profile, err := h.service.SaveCallerProfile(ctx, middleware.Principal(c), req.Name)
	if err != nil {
		writeBackendError(c, err, "save profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetUserProfile handles GET /api/users/:principal/profile
func (h *BackendHandler) GetUserProfile(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	profile, err := h.service.GetUserProfile(ctx, middleware.Principal(c), models.Principal(c.Param("principal")))
	if err != nil {
		writeBackendError(c, err, "get profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetRole handles GET /api/role
func (h *BackendHandler) GetRole(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	role, err := h.service.GetCallerRole(ctx, middleware.Principal(c))
	if err != nil {
		writeBackendError(c, err, "get role")
		return
	}

	c.JSON(http.StatusOK, RoleResponse{Role: role, IsAdmin: role == models.RoleAdmin})
}

// AssignRole handles PUT /api/users/:principal/role
func (h *BackendHandler) AssignRole(c *gin.Context) {
	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, http.StatusBadRequest, "invalid_request", "Invalid request body: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user := models.Principal(c.Param("principal"))
	if err := h.service.AssignRole(ctx, middleware.Principal(c), user, req.Role); err != nil {
		writeBackendError(c, err, "assign role")
		return
	}

	c.JSON(http.StatusOK, gin.H{"principal": user, "role": req.Role})
}

// SetupBackendRoutes registers the backend channel, playlist and user routes
func SetupBackendRoutes(apiGroup *gin.RouterGroup, service *backend.Service, session *browser.Session) {
	handler := NewBackendHandler(service, session)

	apiGroup.GET("/backend/channels", handler.ListChannels)
	apiGroup.GET("/backend/channels/:id", handler.GetChannel)
	apiGroup.POST("/backend/channels", handler.CreateChannel)
	apiGroup.PUT("/backend/channels/:id", handler.UpdateChannel)
	apiGroup.DELETE("/backend/channels/:id", handler.DeleteChannel)

	apiGroup.GET("/playlists", handler.ListPlaylists)
	apiGroup.POST("/playlists", handler.CreatePlaylist)
	apiGroup.GET("/playlists/:id", handler.GetPlaylist)
	apiGroup.DELETE("/playlists/:id", handler.DeletePlaylist)
	apiGroup.POST("/playlists/:id/channels", handler.AddToPlaylist)
	apiGroup.DELETE("/playlists/:id/channels/:channel_id", handler.RemoveFromPlaylist)

	apiGroup.GET("/profile", handler.GetProfile)
	apiGroup.PUT("/profile", handler.SaveProfile)
	apiGroup.GET("/role", handler.GetRole)
	apiGroup.GET("/users/:principal/profile", handler.GetUserProfile)
	apiGroup.PUT("/users/:principal/role", handler.AssignRole)
}
