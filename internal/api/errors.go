// Package api provides the HTTP handlers of the channel browser.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/streamvault/internal/backend"
	"github.com/stwalsh4118/streamvault/internal/logger"
)

const (
	requestTimeout = 5 * time.Second
	// Playlist sources can be tens of megabytes behind a slow relay
	loadTimeout = 90 * time.Second
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func abortWith(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: code, Message: message})
}

// parseID reads an int64 path parameter, writing a 400 when it is malformed
func parseID(c *gin.Context, param, what string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		abortWith(c, http.StatusBadRequest, "invalid_id", "Invalid "+what+" ID format")
		return 0, false
	}
	return id, true
}

// parseChannelNumber reads a playlist entry number. Zero is valid since parsed
// playlist numbering starts there.
func parseChannelNumber(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id < 0 {
		abortWith(c, http.StatusBadRequest, "invalid_id", "Invalid channel ID format")
		return 0, false
	}
	return id, true
}

// writeBackendError maps backend sentinel errors onto HTTP responses
func writeBackendError(c *gin.Context, err error, action string) {
	switch {
	case backend.IsUnauthenticated(err):
		abortWith(c, http.StatusUnauthorized, "unauthenticated", "Sign in to "+action)
	case backend.IsForbidden(err):
		abortWith(c, http.StatusForbidden, "forbidden", "Not allowed to "+action)
	case backend.IsChannelNotFound(err):
		abortWith(c, http.StatusNotFound, "not_found", "Channel not found")
	case backend.IsPlaylistNotFound(err):
		abortWith(c, http.StatusNotFound, "not_found", "Playlist not found")
	case errors.Is(err, backend.ErrNotInPlaylist):
		abortWith(c, http.StatusNotFound, "not_found", "Channel is not in the playlist")
	case backend.IsProfileNotFound(err):
		abortWith(c, http.StatusNotFound, "not_found", "Profile not found")
	case backend.IsInvalidInput(err):
		abortWith(c, http.StatusBadRequest, "invalid_request", err.Error())
	case backend.IsConflict(err):
		abortWith(c, http.StatusConflict, "conflict", err.Error())
	default:
		logger.Log.Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Msg("Backend request failed")
		abortWith(c, http.StatusInternalServerError, "internal_error", "Failed to "+action)
	}
}
