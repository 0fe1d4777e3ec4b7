package website

import "errors"

var (
	// ErrUnreachable is returned when a website could not be fetched.
	ErrUnreachable = errors.New("website unreachable")

	// ErrInvalidURL is returned, wrapped in ErrUnreachable, for links that
	// are not absolute http(s) URLs.
	ErrInvalidURL = errors.New("invalid website url")
)
