package backend

import "errors"

// Custom backend service errors
var (
	// ErrUnauthenticated indicates the operation needs a caller identity
	ErrUnauthenticated = errors.New("caller is not authenticated")

	// ErrForbidden indicates the caller lacks the role for the operation
	ErrForbidden = errors.New("caller is not allowed to perform this operation")

	// ErrChannelNotFound indicates the requested channel does not exist
	ErrChannelNotFound = errors.New("channel not found")

	// ErrInvalidChannel indicates a channel without a name or stream url
	ErrInvalidChannel = errors.New("channel name and stream url are required")

	// ErrPlaylistNotFound indicates the playlist does not exist or belongs to someone else
	ErrPlaylistNotFound = errors.New("playlist not found")

	// ErrInvalidPlaylist indicates a playlist without a name
	ErrInvalidPlaylist = errors.New("playlist name is required")

	// ErrAlreadyInPlaylist indicates the channel is already a member of the playlist
	ErrAlreadyInPlaylist = errors.New("channel already in playlist")

	// ErrNotInPlaylist indicates the channel is not a member of the playlist
	ErrNotInPlaylist = errors.New("channel not in playlist")

	// ErrProfileNotFound indicates the principal has not saved a profile
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInvalidProfile indicates a profile without a name
	ErrInvalidProfile = errors.New("profile name is required")

	// ErrInvalidRole indicates an unknown role
	ErrInvalidRole = errors.New("invalid role")
)

// IsUnauthenticated checks if the error is an unauthenticated caller error
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

// IsForbidden checks if the error is a missing permission error
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsChannelNotFound checks if the error is a channel not found error
func IsChannelNotFound(err error) bool {
	return errors.Is(err, ErrChannelNotFound)
}

// IsPlaylistNotFound checks if the error is a playlist not found error
func IsPlaylistNotFound(err error) bool {
	return errors.Is(err, ErrPlaylistNotFound)
}

// IsProfileNotFound checks if the error is a profile not found error
func IsProfileNotFound(err error) bool {
	return errors.Is(err, ErrProfileNotFound)
}

// IsInvalidInput checks if the error reports rejected input
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidChannel) ||
		errors.Is(err, ErrInvalidPlaylist) ||
		errors.Is(err, ErrInvalidProfile) ||
		errors.Is(err, ErrInvalidRole)
}

// IsConflict checks if the error reports a membership that already exists
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyInPlaylist)
}
