// Package lms drives an e-learning platform through a browser session:
// it enumerates enrolled courses, lists the activities that are not yet
// complete, and plays each lecture video until the platform itself reports
// completion.
package lms

import (
	"context"
	"time"
)

// Page is the narrow slice of browser behavior the workflow depends on.
// pkg/browser provides the Playwright-backed implementation; tests script a
// fake. A zero timeout on any wait means wait forever.
type Page interface {
	// Goto navigates to the URL and waits for the load event.
	Goto(url string) error

	// URL returns the current page URL.
	URL() string

	// WaitForURL blocks until the page URL matches the glob pattern. A
	// lapsed bound is reported as an error wrapping ErrWaitTimeout;
	// anything else is a driver fault.
	WaitForURL(pattern string, timeout time.Duration) error

	// ClickText clicks the first element whose visible text matches exactly.
	// Links and buttons are both resolved this way.
	ClickText(text string) error

	// ClickSelector clicks the first element matching the CSS selector.
	ClickSelector(selector string) error

	// FillPlaceholder fills the input identified by its placeholder text.
	FillPlaceholder(placeholder, value string) error

	// Check checks the checkbox matching the selector.
	Check(selector string) error

	// InnerText returns the visible text of the first element matching the
	// selector, or an error if no such element exists.
	InnerText(selector string) (string, error)

	// Query returns the first element matching the selector, or (nil, nil)
	// when the page has no such element.
	Query(selector string) (Element, error)

	// QueryAll returns every element matching the selector, in document
	// order. An empty result is not an error.
	QueryAll(selector string) ([]Element, error)

	// TextState reports whether any element with the exact visible text
	// exists, and whether it is currently visible. The timeout bounds how
	// long the probe waits for the element to appear.
	TextState(text string, timeout time.Duration) (exists, visible bool, err error)

	// Poll repeatedly evaluates fn at the page's poll cadence until it
	// returns true, fn fails, the timeout lapses, or ctx is canceled.
	Poll(ctx context.Context, fn func() (bool, error), timeout time.Duration) error
}

// Element is a handle to a single DOM element.
type Element interface {
	// InnerText returns the element's visible text.
	InnerText() (string, error)

	// Query returns the first descendant matching the selector, or
	// (nil, nil) when there is none.
	Query(selector string) (Element, error)

	// QueryAll returns every descendant matching the selector.
	QueryAll(selector string) ([]Element, error)
}
