package instagram

import "errors"

var (
	// ErrNotFound is returned when a profile page never rendered its
	// header. Private, deleted and nonexistent accounts look the same.
	ErrNotFound = errors.New("profile not found")

	// ErrSessionUnavailable is returned when the session is not logged in
	// or has been torn down after a failed login or a browser failure.
	ErrSessionUnavailable = errors.New("browser session unavailable")

	// ErrLoginFormIncomplete is returned when the login page lacks one of
	// the expected form fields.
	ErrLoginFormIncomplete = errors.New("login form incomplete")
)
