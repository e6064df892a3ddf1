package lms

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/entrhq/coursepilot/pkg/config"
)

// ExpandResult reports what happened with the course page's expand-all
// control. Its absence is normal UI variance, never an error.
type ExpandResult int

const (
	// Expanded means the control was visible and was clicked.
	Expanded ExpandResult = iota

	// AlreadyExpanded means the control exists but is hidden, which the
	// platform does once every group is open.
	AlreadyExpanded

	// NotApplicable means the control was never rendered, e.g. a course
	// with no collapsed groups.
	NotApplicable
)

func (r ExpandResult) String() string {
	switch r {
	case Expanded:
		return "expanded"
	case AlreadyExpanded:
		return "already expanded"
	default:
		return "not applicable"
	}
}

// Lister extracts the unfinished-activity titles of a single course.
type Lister struct {
	page     Page
	platform config.Platform
	timeouts config.Timeouts
	log      *zap.Logger
}

// NewLister builds a Lister.
func NewLister(page Page, cfg *config.Config, log *zap.Logger) *Lister {
	return &Lister{page: page, platform: cfg.Platform, timeouts: cfg.Timeouts, log: log}
}

// UnfinishedActivities clicks into the course by title and returns the
// titles of its not-yet-complete activities, in page order. Duplicate
// titles are kept. The page is on the course detail view when this returns.
func (l *Lister) UnfinishedActivities(course Course) ([]string, error) {
	l.log.Info("listing unfinished activities", zap.String("course", course.Title))

	if err := l.page.ClickText(course.Title); err != nil {
		return nil, err
	}
	if err := l.waitForCourseDetail(); err != nil {
		return nil, err
	}

	// Restrict the activity tree to unfinished items before scanning it.
	if err := l.page.Check(selIncompleteFilter); err != nil {
		return nil, err
	}

	result, err := l.expandAll()
	if err != nil {
		return nil, err
	}
	l.log.Debug("expand-all control", zap.Stringer("result", result))

	return l.collectTitles(course)
}

func (l *Lister) waitForCourseDetail() error {
	pattern := l.platform.CoursePrefixURL + "*"
	if err := l.page.WaitForURL(pattern, l.timeouts.Navigation); err != nil {
		if errors.Is(err, ErrWaitTimeout) {
			return &NavigationTimeoutError{Pattern: pattern, Timeout: l.timeouts.Navigation}
		}
		return err
	}
	return nil
}

// expandAll tries the expand-all affordance so every activity group is
// open. The control not being there is fine.
func (l *Lister) expandAll() (ExpandResult, error) {
	timeout := l.timeouts.Expand
	if timeout <= 0 {
		// A zero wait normally means unbounded, but an unbounded probe for
		// a control that may legitimately never render would hang here.
		timeout = expandProbeFloor
	}
	exists, visible, err := l.page.TextState(labelExpandAll, timeout)
	if err != nil {
		return NotApplicable, err
	}
	switch {
	case !exists:
		return NotApplicable, nil
	case !visible:
		return AlreadyExpanded, nil
	}
	if err := l.page.ClickText(labelExpandAll); err != nil {
		return NotApplicable, err
	}
	return Expanded, nil
}

func (l *Lister) collectTitles(course Course) ([]string, error) {
	// Distinguish "no unfinished activities" from a missing activity tree:
	// the root container must exist even when the filter hides everything.
	root, err := l.page.Query(selActivitiesRoot)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, &MissingFieldError{Entity: "course", Field: "activity tree", Selector: selActivitiesRoot}
	}

	groups, err := l.page.QueryAll(selActivityGroup)
	if err != nil {
		return nil, err
	}

	var titles []string
	for _, group := range groups {
		rows, err := group.QueryAll(selActivityRow)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			link, err := row.Query(selActivityTitle)
			if err != nil {
				return nil, err
			}
			if link == nil {
				// Rows without a title link are separators or locked items.
				continue
			}
			title, err := link.InnerText()
			if err != nil {
				return nil, err
			}
			titles = append(titles, title)
		}
	}

	l.log.Info("unfinished activities",
		zap.String("course", course.Title),
		zap.Int("count", len(titles)))
	return titles, nil
}

const expandProbeFloor = 250 * time.Millisecond
