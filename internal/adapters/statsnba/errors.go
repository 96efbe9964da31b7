package statsnba

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel kinds for stats API errors.
var (
	ErrTransport = errors.New("stats api transport error")
	ErrDecode    = errors.New("stats api decode error")
)

// StatusError is a non-200 answer from the API.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("stats api status %d %s", e.Code, http.StatusText(e.Code))
}
