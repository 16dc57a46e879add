package chattypes

import (
	"errors"
	"fmt"
)

// Error categories. Concrete errors wrap one of these so callers can use errors.Is.
var (
	// ErrConfigResolution means the home directory could not be determined.
	ErrConfigResolution = errors.New("cannot resolve home directory")
	// ErrStorage means the storage directory or a document could not be created.
	ErrStorage = errors.New("storage error")
	// ErrNotFound means a persisted document is missing.
	ErrNotFound = errors.New("document not found")
	// ErrDecode means persisted JSON or an API response did not match the expected shape.
	ErrDecode = errors.New("decode error")
	// ErrIO means a document could not be written.
	ErrIO = errors.New("io error")
	// ErrNetwork means the request could not be sent or the response was not received.
	ErrNetwork = errors.New("network error")
	// ErrRemote means the endpoint answered with a failure indication.
	ErrRemote = errors.New("remote error")
	// ErrInvalidConfig means the configuration cannot be turned into a request.
	ErrInvalidConfig = errors.New("invalid config")
)

// RemoteError carries the details of a failed chat-completion call.
type RemoteError struct {
	StatusCode int
	Message    string
	Type       string
	Code       string
}

func (e *RemoteError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	if e.Type != "" {
		return fmt.Sprintf("remote error (status %d, %s): %s", e.StatusCode, e.Type, msg)
	}
	return fmt.Sprintf("remote error (status %d): %s", e.StatusCode, msg)
}

// Is makes errors.Is(err, ErrRemote) true for any *RemoteError.
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}
