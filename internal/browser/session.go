package browser

import (
	"context"
	"time"
)

// Session is an authenticated, stateful browsing session.
type Session interface {
	// Navigate loads url in the current tab and waits for the load event.
	Navigate(ctx context.Context, url string) error

	// WaitFor blocks until selector matches an element or timeout passes.
	// A timeout is reported as ErrTimeout.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error

	// Has reports whether selector currently matches an element.
	Has(ctx context.Context, selector string) (bool, error)

	// Type focuses the element matched by selector and enters text.
	Type(ctx context.Context, selector, text string) error

	// Click clicks the element matched by selector.
	Click(ctx context.Context, selector string) error

	// HTML returns the rendered document.
	HTML(ctx context.Context) (string, error)

	// Close releases the tab, the browser and the launcher.
	Close() error
}
