package commerce

import (
	"errors"
	"strings"
)

// ErrUnavailable marks requests that never got a usable response: transport
// failures, timeouts, cancelled contexts.
var ErrUnavailable = errors.New("commerce api unavailable")

// APIError is a request the server answered but rejected. Message is the
// server's own message, suitable for showing to the shopper.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// UserMessage picks the text to show for err: the server message for
// rejections, fallback for everything else.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return fallback
}
