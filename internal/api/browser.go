package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/streamvault/internal/browser"
	"github.com/stwalsh4118/streamvault/internal/catalog"
	"github.com/stwalsh4118/streamvault/internal/favourites"
	"github.com/stwalsh4118/streamvault/internal/fetcher"
	"github.com/stwalsh4118/streamvault/internal/filter"
	"github.com/stwalsh4118/streamvault/internal/logger"
	"github.com/stwalsh4118/streamvault/internal/middleware"
	"github.com/stwalsh4118/streamvault/internal/models"
)

// LoadSourceRequest represents a request to load a playlist source.
// An empty URL loads the configured default.
type LoadSourceRequest struct {
	URL string `json:"url"`
}

// LoadSourceResponse reports the outcome of a source load
type LoadSourceResponse struct {
	URL      string `json:"url"`
	Parsed   int    `json:"parsed"`
	Channels int    `json:"channels"`
}

// AddManualChannelRequest represents a user-entered channel
type AddManualChannelRequest struct {
	Name         string `json:"name" binding:"required"`
	StreamURL    string `json:"stream_url" binding:"required"`
	Language     string `json:"language"`
	Country      string `json:"country"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// SelectRequest represents a request to select a channel
type SelectRequest struct {
	ID string `json:"id" binding:"required"`
}

// ModeRequest represents a filter mode change: "all", "favourites" or "playlist:<id>"
type ModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// FiltersRequest represents a partial update of the facets and search text
type FiltersRequest struct {
	Language *string `json:"language,omitempty"`
	Country  *string `json:"country,omitempty"`
	Search   *string `json:"search,omitempty"`
}

// ChannelListResponse represents a list of catalog records
type ChannelListResponse struct {
	Channels []models.ChannelRecord `json:"channels"`
	Count    int                    `json:"count"`
}

// FavouritesResponse represents the caller's favourite channel ids
type FavouritesResponse struct {
	IDs []string `json:"ids"`
}

// ToggleFavouriteResponse reports whether the channel is now a favourite
type ToggleFavouriteResponse struct {
	ID        string `json:"id"`
	Favourite bool   `json:"favourite"`
}

// BrowserHandler handles the browsing session endpoints
type BrowserHandler struct {
	session *browser.Session
}

// NewBrowserHandler creates a new browser handler instance
func NewBrowserHandler(session *browser.Session) *BrowserHandler {
	return &BrowserHandler{session: session}
}

func channelList(records []models.ChannelRecord) ChannelListResponse {
	if records == nil {
		records = []models.ChannelRecord{}
	}
	return ChannelListResponse{Channels: records, Count: len(records)}
}

// GetState handles GET /api/state
func (h *BrowserHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.State())
}

// ListCatalog handles GET /api/catalog
func (h *BrowserHandler) ListCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, channelList(h.session.Records()))
}

// ListVisible handles GET /api/channels
func (h *BrowserHandler) ListVisible(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	records, err := h.session.Visible(ctx, middleware.Principal(c))
	if err != nil {
		logger.Log.Error().
			Err(err).
			Msg("Failed to filter channels")
		abortWith(c, http.StatusInternalServerError, "query_failed", "Failed to retrieve channel list")
		return
	}

	c.JSON(http.StatusOK, channelList(records))
}

// GetFacetOptions handles GET /api/facets
func (h *BrowserHandler) GetFacetOptions(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.FacetOptions())
}

// LoadSource handles POST /api/source
func (h *BrowserHandler) LoadSource(c *gin.Context) {
	var req LoadSourceRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWith(c, http.StatusBadRequest, "invalid_request", "Invalid request body: "+err.Error())
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), loadTimeout)
	defer cancel()

	parsed, err := h.session.LoadSource(ctx, req.URL)
	if err != nil {
		switch {
		case errors.Is(err, browser.ErrWrongVariant):
			abortWith(c, http.StatusConflict, "wrong_variant", "The catalog is not built from a playlist source")
		case errors.Is(err, browser.ErrNoSource):
			abortWith(c, http.StatusBadRequest, "no_source", "No playlist URL given and none configured")
		case fetcher.IsSuperseded(err):
			abortWith(c, http.StatusConflict, "superseded", "A newer source load replaced this one")
		case fetcher.IsFetchFailed(err):
			abortWith(c, http.StatusBadGateway, "fetch_failed", "Failed to load the playlist directly or through the relay")
		default:
			logger.Log.Error().
				Err(err).
				Str("url", req.URL).
				Msg("Failed to load source")
			abortWith(c, http.StatusInternalServerError, "load_failed", "Failed to load the playlist")
		}
		return
	}

	state := h.session.State()
	c.JSON(http.StatusOK, LoadSourceResponse{
		URL:      state.SourceURL,
		Parsed:   parsed,
		Channels: state.Channels,
	})
}

// RefreshBackend handles POST /api/refresh
func (h *BrowserHandler) RefreshBackend(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	n, err := h.session.RefreshBackend(ctx)
	if err != nil {
		switch {
		case errors.Is(err, browser.ErrWrongVariant):
			abortWith(c, http.StatusConflict, "wrong_variant", "The catalog is not built from the backend")
		case fetcher.IsSuperseded(err):
			abortWith(c, http.StatusConflict, "superseded", "A newer refresh replaced this one")
		default:
			logger.Log.Error().
				Err(err).
				Msg("Failed to refresh backend catalog")
			abortWith(c, http.StatusInternalServerError, "refresh_failed", "Failed to refresh the catalog")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"channels": n})
}

// AddManualChannel handles POST /api/manual-channels
func (h *BrowserHandler) AddManualChannel(c *gin.Context) {
	var req AddManualChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, http.StatusBadRequest, "invalid_request", "Invalid request body: "+err.Error())
		return
	}

	rec, err := h.session.AddManualChannel(catalog.ManualInput{
		Name:         req.Name,
		StreamURL:    req.StreamURL,
		Language:     req.Language,
		Country:      req.Country,
		ThumbnailURL: req.ThumbnailURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, browser.ErrWrongVariant):
			abortWith(c, http.StatusConflict, "wrong_variant", "Manual channels need the playlist catalog")
		case errors.Is(err, catalog.ErrInvalidChannel):
			abortWith(c, http.StatusBadRequest, "invalid_channel", "Channel name and stream URL are required")
		default:
			abortWith(c, http.StatusInternalServerError, "create_failed", "Failed to add channel")
		}
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// Select handles PUT /api/selection
func (h *BrowserHandler) Select(c *gin.Context) {
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, http.StatusBadRequest, "invalid_request", "Invalid request body: "+err.Error())
		return
	}

	rec, err := h.session.Select(req.ID)
	if err != nil {
		abortWith(c, http.StatusNotFound, "not_found", "Channel not found")
		return
	}

	c.JSON(http.StatusOK, rec)
}

// GetSelection handles GET /api/selection
func (h *BrowserHandler) GetSelection(c *gin.Context) {
	rec, ok := h.session.Selected()
	if !ok {
		abortWith(c, http.StatusNotFound, "not_found", "No channel selected")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ClearSelection handles DELETE /api/selection
func (h *BrowserHandler) ClearSelection(c *gin.Context) {
	h.session.ClearSelection()
	c.Status(http.StatusNoContent)
}

// SetMode handles PUT /api/filters/mode
func (h *BrowserHandler) SetMode(c *gin.Context) {
	var req ModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, http.StatusBadRequest, "invalid_request", "Invalid request body: "+err.Error())
		return
	}

	mode, err := filter.ParseMode(req.Mode)
	if err != nil {
		abortWith(c, http.StatusBadRequest, "invalid_mode", err.Error())
		return
	}

	h.session.SetMode(mode)
	c.JSON(http.StatusOK, h.session.State())
}

// SetFilters handles PUT /api/filters
func (h *BrowserHandler) SetFilters(c *gin.Context) {
	var req FiltersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, http.StatusBadRequest, "invalid_request", "Invalid request body: "+err.Error())
		return
	}

	if req.Language != nil {
		h.session.SetLanguage(*req.Language)
	}
	if req.Country != nil {
		h.session.SetCountry(*req.Country)
	}
	if req.Search != nil {
		h.session.SetSearch(*req.Search)
	}

	c.JSON(http.StatusOK, h.session.State())
}

// ListFavourites handles GET /api/favourites
func (h *BrowserHandler) ListFavourites(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	ids, err := h.session.FavouriteIDs(ctx, middleware.Principal(c))
	if err != nil {
		logger.Log.Error().
			Err(err).
			Msg("Failed to list favourites")
		abortWith(c, http.StatusInternalServerError, "query_failed", "Failed to retrieve favourites")
		return
	}

	c.JSON(http.StatusOK, FavouritesResponse{IDs: ids})
}

// ToggleFavourite handles POST /api/favourites/:id/toggle
func (h *BrowserHandler) ToggleFavourite(c *gin.Context) {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	on, err := h.session.ToggleFavourite(ctx, middleware.Principal(c), id)
	if err != nil {
		if errors.Is(err, favourites.ErrNotBackendID) {
			abortWith(c, http.StatusBadRequest, "invalid_id", "Only backend channels can be favourited when signed in")
			return
		}
		writeBackendError(c, err, "toggle favourite")
		return
	}

	c.JSON(http.StatusOK, ToggleFavouriteResponse{ID: id, Favourite: on})
}

// SetupBrowserRoutes registers the browsing session routes
func SetupBrowserRoutes(apiGroup *gin.RouterGroup, session *browser.Session) {
	handler := NewBrowserHandler(session)

	apiGroup.GET("/state", handler.GetState)
	apiGroup.GET("/catalog", handler.ListCatalog)
	apiGroup.GET("/channels", handler.ListVisible)
	apiGroup.GET("/facets", handler.GetFacetOptions)

	apiGroup.POST("/source", handler.LoadSource)
	apiGroup.POST("/refresh", handler.RefreshBackend)
	apiGroup.POST("/manual-channels", handler.AddManualChannel)

	apiGroup.GET("/selection", handler.GetSelection)
	apiGroup.PUT("/selection", handler.Select)
	apiGroup.DELETE("/selection", handler.ClearSelection)

	apiGroup.PUT("/filters", handler.SetFilters)
	apiGroup.PUT("/filters/mode", handler.SetMode)

	apiGroup.GET("/favourites", handler.ListFavourites)
	apiGroup.POST("/favourites/:id/toggle", handler.ToggleFavourite)
}
