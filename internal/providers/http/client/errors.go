package client

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyURL is returned when a request spec has no URL.
	ErrEmptyURL = errors.New("empty request url")
	// ErrUnsupportedScheme is returned for URLs that are not http(s).
	ErrUnsupportedScheme = errors.New("unsupported url scheme")
)

// StatusError reports a response outside the accepted 2xx-3xx range.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
}

// IsClientError reports whether err is a 4xx status error.
func IsClientError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status >= 400 && se.Status < 500
}
