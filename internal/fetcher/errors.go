package fetcher

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for playlist fetching
var (
	// ErrRelayFailed is matched by every terminal fetch failure: the relay was the last attempt
	ErrRelayFailed = errors.New("playlist could not be fetched directly or through the relay")
	// ErrMissingHeader is returned when a response body lacks the playlist header marker
	ErrMissingHeader = errors.New("response is not an extended m3u playlist")
	// ErrUnexpectedStatus is returned for non-2xx responses
	ErrUnexpectedStatus = errors.New("unexpected http status")
	// ErrBodyTooLarge indicates the response exceeded the body size limit
	ErrBodyTooLarge = errors.New("response body too large")
	// ErrRelayDisabled is returned for the relay attempt when no relay is configured
	ErrRelayDisabled = errors.New("relay is disabled")
	// ErrSuperseded is returned when a newer load started before this one finished
	ErrSuperseded = errors.New("playlist load superseded by a newer request")
)

// FetchError is the terminal failure of a fetch after the direct and relay attempts
type FetchError struct {
	URL    string
	Direct error
	Relay  error
}

func (e *FetchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "fetch %s: ", e.URL)
	if e.Direct != nil {
		fmt.Fprintf(&b, "direct: %v", e.Direct)
	}
	if e.Relay != nil {
		if e.Direct != nil {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "relay: %v", e.Relay)
	}
	return b.String()
}

// Is makes every FetchError match ErrRelayFailed
func (e *FetchError) Is(target error) bool {
	return target == ErrRelayFailed
}

// Unwrap exposes both attempt errors
func (e *FetchError) Unwrap() []error {
	var errs []error
	if e.Direct != nil {
		errs = append(errs, e.Direct)
	}
	if e.Relay != nil {
		errs = append(errs, e.Relay)
	}
	return errs
}

// IsFetchFailed checks if the error is a terminal fetch failure
func IsFetchFailed(err error) bool {
	return errors.Is(err, ErrRelayFailed)
}

// IsSuperseded checks if the error reports a discarded load
func IsSuperseded(err error) bool {
	return errors.Is(err, ErrSuperseded)
}
