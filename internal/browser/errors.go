package browser

import "errors"

var (
	// ErrTimeout is returned when an element did not appear in time.
	ErrTimeout = errors.New("timed out waiting for element")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("browser session is closed")

	// ErrLaunch is returned when Chrome cannot be started or connected to.
	ErrLaunch = errors.New("failed to launch browser")
)
