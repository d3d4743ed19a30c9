package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Op names the direction of a failed call.
type Op string

const (
	OpLoad Op = "load"
	OpSave Op = "save"
)

// Error is returned for every failed API call. Status is 0 when the request
// never produced a response.
type Error struct {
	Op       Op
	Resource string
	Status   int
	Message  string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("could not %s %s", e.Op, e.Resource)
	switch {
	case e.Message != "":
		return msg + ": " + e.Message
	case e.Err != nil:
		return msg + ": " + e.Err.Error()
	default:
		return msg
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrNotLoggedIn is returned by calls that need a session token when none
// is stored.
var ErrNotLoggedIn = errors.New("not logged in")

// IsNotFound reports whether err is an API error carrying a 404.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsUnauthorized reports whether err means the session is missing or rejected.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrNotLoggedIn) {
		return true
	}
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}
