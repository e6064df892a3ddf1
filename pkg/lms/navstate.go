package lms

import (
	"fmt"

	"github.com/gobwas/glob"

	"github.com/entrhq/coursepilot/pkg/config"
)

// NavState is where the single browser page currently is, derived from its
// URL. The workflow only ever occupies one of these states.
type NavState int

const (
	StateUnknown NavState = iota
	StateHome
	StateLogin
	StateCatalog
	StateCourseDetail
)

func (s NavState) String() string {
	switch s {
	case StateHome:
		return "home"
	case StateLogin:
		return "login"
	case StateCatalog:
		return "catalog"
	case StateCourseDetail:
		return "course-detail"
	default:
		return "unknown"
	}
}

// NavEvent is a navigation action the workflow performs or observes.
type NavEvent int

const (
	EventOpenHome NavEvent = iota
	EventRedirectLogin
	EventLoginSucceeded
	EventOpenCatalog
	EventOpenCourse
	EventOpenActivity
	EventReturnCatalog
)

func (e NavEvent) String() string {
	switch e {
	case EventOpenHome:
		return "open-home"
	case EventRedirectLogin:
		return "redirect-login"
	case EventLoginSucceeded:
		return "login-succeeded"
	case EventOpenCatalog:
		return "open-catalog"
	case EventOpenCourse:
		return "open-course"
	case EventOpenActivity:
		return "open-activity"
	case EventReturnCatalog:
		return "return-catalog"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Transition maps (state, event) to the next state. Every legal move of the
// workflow is listed here; anything else is a TransitionError.
func Transition(s NavState, e NavEvent) (NavState, error) {
	switch {
	case e == EventOpenHome && (s == StateUnknown || s == StateHome):
		return StateHome, nil
	case e == EventRedirectLogin && s == StateHome:
		return StateLogin, nil
	case e == EventLoginSucceeded && s == StateLogin:
		return StateHome, nil
	case e == EventOpenCatalog && (s == StateHome || s == StateCatalog):
		return StateCatalog, nil
	case e == EventOpenCourse && s == StateCatalog:
		return StateCourseDetail, nil
	case e == EventOpenActivity && s == StateCourseDetail:
		return StateCourseDetail, nil
	case e == EventReturnCatalog && (s == StateCourseDetail || s == StateCatalog):
		return StateCatalog, nil
	}
	return StateUnknown, &TransitionError{From: s, Event: e}
}

// URLClassifier maps a raw page URL onto a NavState using glob patterns
// compiled from the configured platform URLs.
type URLClassifier struct {
	home    glob.Glob
	login   glob.Glob
	catalog glob.Glob
	course  glob.Glob
}

// NewURLClassifier compiles the classifier for a platform. Prefix URLs
// (login page, course detail) match with a trailing wildcard; the home and
// catalog pages match exactly.
func NewURLClassifier(p config.Platform) (*URLClassifier, error) {
	c := &URLClassifier{}
	for _, g := range []struct {
		dst     *glob.Glob
		pattern string
	}{
		{&c.home, p.HomeURL},
		{&c.catalog, p.CatalogURL},
		{&c.login, p.LoginURL + "*"},
		{&c.course, p.CoursePrefixURL + "*"},
	} {
		compiled, err := glob.Compile(g.pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile URL pattern %q: %w", g.pattern, err)
		}
		*g.dst = compiled
	}
	return c, nil
}

// Classify returns the NavState for a URL. Catalog is checked before home
// because some platforms serve both under the same host path prefix.
func (c *URLClassifier) Classify(url string) NavState {
	switch {
	case c.catalog.Match(url):
		return StateCatalog
	case c.home.Match(url):
		return StateHome
	case c.login.Match(url):
		return StateLogin
	case c.course.Match(url):
		return StateCourseDetail
	default:
		return StateUnknown
	}
}
