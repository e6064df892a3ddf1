package lms

import (
	"errors"
	"fmt"
	"time"
)

// ErrAuthenticationFailed is returned when login was submitted but the
// redirect back to the home page never arrived within the login bound.
var ErrAuthenticationFailed = errors.New("authentication failed: login submitted but home redirect never arrived")

// ErrWaitTimeout marks a bounded wait that lapsed without its condition
// holding. Page implementations wrap it so callers can tell an expired
// bound from a driver fault.
var ErrWaitTimeout = errors.New("wait timed out")

// MissingFieldError reports an expected DOM element that was absent during
// extraction. It replaces what would otherwise be a nil dereference.
type MissingFieldError struct {
	// Entity names what was being extracted, e.g. "course" or "player".
	Entity string

	// Field is the logical field the selector was resolving.
	Field string

	// Selector is the structural selector that matched nothing.
	Selector string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing %s field %q (selector %q)", e.Entity, e.Field, e.Selector)
}

// NavigationTimeoutError reports a URL-pattern wait that exceeded its
// configured bound.
type NavigationTimeoutError struct {
	// Pattern is the URL glob that never matched.
	Pattern string

	// Timeout is the bound that lapsed.
	Timeout time.Duration
}

func (e *NavigationTimeoutError) Error() string {
	return fmt.Sprintf("navigation timed out after %s waiting for %q", e.Timeout, e.Pattern)
}

// TransitionError reports an illegal navigation state transition.
type TransitionError struct {
	From  NavState
	Event NavEvent
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal navigation transition: %s on %s", e.From, e.Event)
}
