package browser

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/coursepilot/pkg/lms"
)

// Session adapts one Playwright page to the lms.Page capability set. All
// waits translate a zero timeout into Playwright's "no timeout" value, so
// unbounded waits stay unbounded inside the driver.
type Session struct {
	page         playwright.Page
	pollInterval time.Duration
}

var _ lms.Page = (*Session)(nil)

// Goto navigates and waits for the load event, matching the platform's
// Angular bootstrapping needs.
func (s *Session) Goto(url string) error {
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// URL returns the current page URL.
func (s *Session) URL() string {
	return s.page.URL()
}

// WaitForURL blocks until the page URL matches the glob pattern. The
// pattern is handed to the driver as an anchored regexp because
// Playwright's own URL globs stop "*" at path separators.
func (s *Session) WaitForURL(pattern string, timeout time.Duration) error {
	err := s.page.WaitForURL(urlMatcher(pattern), playwright.PageWaitForURLOptions{
		Timeout:   millis(timeout),
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	return wrapWaitErr(err, pattern)
}

// wrapWaitErr rebrands a driver timeout as lms.ErrWaitTimeout so callers
// can tell an expired bound from a driver fault. Other errors keep their
// identity.
func wrapWaitErr(err error, pattern string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, playwright.ErrTimeout):
		return fmt.Errorf("waiting for URL %q: %w", pattern, lms.ErrWaitTimeout)
	default:
		return fmt.Errorf("wait for URL %q failed: %w", pattern, err)
	}
}

// ClickText clicks the first element whose visible text matches exactly.
func (s *Session) ClickText(text string) error {
	loc := s.page.GetByText(text, playwright.PageGetByTextOptions{
		Exact: playwright.Bool(true),
	})
	if err := loc.First().Click(); err != nil {
		return fmt.Errorf("click on %q failed: %w", text, err)
	}
	return nil
}

// ClickSelector clicks the first element matching the CSS selector.
func (s *Session) ClickSelector(selector string) error {
	if err := s.page.Click(selector); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

// FillPlaceholder fills the input identified by its placeholder text.
func (s *Session) FillPlaceholder(placeholder, value string) error {
	if err := s.page.GetByPlaceholder(placeholder).Fill(value); err != nil {
		return fmt.Errorf("fill %q failed: %w", placeholder, err)
	}
	return nil
}

// Check checks the checkbox matching the selector.
func (s *Session) Check(selector string) error {
	if err := s.page.Check(selector); err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	return nil
}

// InnerText returns the visible text of the first matching element.
func (s *Session) InnerText(selector string) (string, error) {
	text, err := s.page.InnerText(selector)
	if err != nil {
		return "", fmt.Errorf("inner text of %q failed: %w", selector, err)
	}
	return text, nil
}

// Query returns the first matching element, or (nil, nil) when absent.
func (s *Session) Query(selector string) (lms.Element, error) {
	handle, err := s.page.QuerySelector(selector)
	if err != nil {
		return nil, fmt.Errorf("selector query failed: %w", err)
	}
	if handle == nil {
		return nil, nil
	}
	return &element{handle: handle}, nil
}

// QueryAll returns every matching element in document order.
func (s *Session) QueryAll(selector string) ([]lms.Element, error) {
	handles, err := s.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, fmt.Errorf("selector query failed: %w", err)
	}
	elements := make([]lms.Element, len(handles))
	for i, handle := range handles {
		elements[i] = &element{handle: handle}
	}
	return elements, nil
}

// TextState probes for an element with the exact visible text.
func (s *Session) TextState(text string, timeout time.Duration) (bool, bool, error) {
	loc := s.page.GetByText(text, playwright.PageGetByTextOptions{
		Exact: playwright.Bool(true),
	}).First()

	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: millis(timeout),
	})
	if err != nil {
		// The probe timing out just means the element never appeared.
		return false, false, nil
	}

	visible, err := loc.IsVisible()
	if err != nil {
		return true, false, fmt.Errorf("visibility check for %q failed: %w", text, err)
	}
	return true, visible, nil
}

// Poll evaluates fn on a fixed cadence until it reports true. A zero
// timeout polls forever; cancellation comes from ctx or from closing the
// session out from under the page.
func (s *Session) Poll(ctx context.Context, fn func() (bool, error), timeout time.Duration) error {
	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	interval := s.pollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := fn()
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return fmt.Errorf("poll timed out after %s", timeout)
		case <-ticker.C:
		}
	}
}

const defaultPollInterval = 500 * time.Millisecond

// urlMatcher anchors a "prefix*" or exact URL pattern as a regexp.
func urlMatcher(pattern string) *regexp.Regexp {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + ".*")
	}
	return regexp.MustCompile("^" + regexp.QuoteMeta(pattern) + "$")
}

// millis converts a duration to Playwright's millisecond timeout, where
// zero disables the bound entirely.
func millis(d time.Duration) *float64 {
	if d <= 0 {
		return playwright.Float(0)
	}
	return playwright.Float(float64(d.Milliseconds()))
}

// element adapts a Playwright element handle to lms.Element.
type element struct {
	handle playwright.ElementHandle
}

func (e *element) InnerText() (string, error) {
	text, err := e.handle.InnerText()
	if err != nil {
		return "", fmt.Errorf("inner text failed: %w", err)
	}
	return text, nil
}

func (e *element) Query(selector string) (lms.Element, error) {
	handle, err := e.handle.QuerySelector(selector)
	if err != nil {
		return nil, fmt.Errorf("selector query failed: %w", err)
	}
	if handle == nil {
		return nil, nil
	}
	return &element{handle: handle}, nil
}

func (e *element) QueryAll(selector string) ([]lms.Element, error) {
	handles, err := e.handle.QuerySelectorAll(selector)
	if err != nil {
		return nil, fmt.Errorf("selector query failed: %w", err)
	}
	elements := make([]lms.Element, len(handles))
	for i, handle := range handles {
		elements[i] = &element{handle: handle}
	}
	return elements, nil
}
