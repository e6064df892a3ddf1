package lms

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/entrhq/coursepilot/pkg/config"
)

// Runner is the completion orchestrator: for every enrolled course, for
// every unfinished activity, navigate in, complete it, and come back out.
//
// Failure policy: the expand-all variance inside the lister is the only
// condition that is swallowed. Everything else aborts the whole run; the
// platform tracks completion server-side, so a rerun picks up exactly where
// the crash left the real state.
type Runner struct {
	page       Page
	cfg        *config.Config
	classifier *URLClassifier
	bootstrap  *Bootstrap
	enumerator *Enumerator
	lister     *Lister
	detector   *Detector
	log        *zap.Logger

	state NavState
}

// NewRunner wires the full workflow over a single page.
func NewRunner(page Page, cfg *config.Config, log *zap.Logger) (*Runner, error) {
	classifier, err := NewURLClassifier(cfg.Platform)
	if err != nil {
		return nil, err
	}
	return &Runner{
		page:       page,
		cfg:        cfg,
		classifier: classifier,
		bootstrap:  NewBootstrap(page, cfg, log),
		enumerator: NewEnumerator(page, log),
		lister:     NewLister(page, cfg, log),
		detector:   NewDetector(page, cfg.Timeouts.Playback, log),
		log:        log,
		state:      StateUnknown,
	}, nil
}

// Run drives the whole workflow to completion.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.bootstrap.Establish(r.cfg.Credentials, r.advance); err != nil {
		return err
	}

	if err := r.openCatalog(); err != nil {
		return err
	}

	courses, err := r.enumerator.Courses(ctx)
	if err != nil {
		return err
	}

	for i, course := range courses {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.completeCourse(ctx, course); err != nil {
			return fmt.Errorf("course %q: %w", course.Title, err)
		}
		// The lister left the page on the course detail view when the
		// course had nothing to complete; later courses need the catalog
		// back under them before their title link can resolve.
		if i < len(courses)-1 {
			if err := r.ensureCatalog(); err != nil {
				return err
			}
		}
	}

	r.log.Info("all courses processed", zap.Int("courses", len(courses)))
	return nil
}

// openCatalog follows the my-courses link from the home page.
func (r *Runner) openCatalog() error {
	if err := r.page.ClickText(labelMyCourses); err != nil {
		return err
	}
	if err := r.waitFor(r.cfg.Platform.CatalogURL); err != nil {
		return err
	}
	return r.advance(EventOpenCatalog)
}

func (r *Runner) completeCourse(ctx context.Context, course Course) error {
	titles, err := r.lister.UnfinishedActivities(course)
	if err != nil {
		return err
	}
	if err := r.advance(EventOpenCourse); err != nil {
		return err
	}
	if len(titles) == 0 {
		r.log.Info("course already complete", zap.String("course", course.Title))
		return nil
	}

	for i, title := range titles {
		if err := ctx.Err(); err != nil {
			return err
		}
		// Each completion lands back on the catalog, so every activity
		// after the first needs the course detail view re-opened first.
		if i > 0 {
			if err := r.reopenCourse(course); err != nil {
				return err
			}
		}
		if err := r.completeActivity(ctx, title); err != nil {
			return fmt.Errorf("activity %q: %w", title, err)
		}
	}
	return nil
}

func (r *Runner) reopenCourse(course Course) error {
	if err := r.page.ClickText(course.Title); err != nil {
		return err
	}
	if err := r.waitFor(r.cfg.Platform.CoursePrefixURL + "*"); err != nil {
		return err
	}
	return r.advance(EventOpenCourse)
}

func (r *Runner) completeActivity(ctx context.Context, title string) error {
	r.log.Info("opening activity", zap.String("activity", title))
	if err := r.page.ClickText(title); err != nil {
		return err
	}
	if err := r.waitFor(r.cfg.Platform.CoursePrefixURL + "*"); err != nil {
		return err
	}
	if err := r.advance(EventOpenActivity); err != nil {
		return err
	}

	typ, err := ClassifyActivity(r.page)
	if err != nil {
		return err
	}
	if typ != ActivityVideo {
		r.log.Warn("unsupported activity type, skipping",
			zap.String("activity", title),
			zap.Stringer("type", typ))
		return r.returnToCatalog(true)
	}

	if err := r.detector.CompletePlayback(ctx); err != nil {
		return err
	}
	r.log.Info("activity completed", zap.String("activity", title))

	// The platform bounces back to the catalog once it registers the
	// completion; hold here until that happens.
	return r.returnToCatalog(false)
}

// returnToCatalog brings the page back onto the catalog view, either by
// navigating directly or by waiting for the platform's own redirect.
func (r *Runner) returnToCatalog(navigate bool) error {
	if navigate {
		if err := r.page.Goto(r.cfg.Platform.CatalogURL); err != nil {
			return err
		}
	}
	if err := r.waitFor(r.cfg.Platform.CatalogURL); err != nil {
		return err
	}
	return r.advance(EventReturnCatalog)
}

// ensureCatalog restores the catalog under the page between courses when
// the previous course left it on a detail view.
func (r *Runner) ensureCatalog() error {
	if r.classifier.Classify(r.page.URL()) == StateCatalog {
		return r.advance(EventReturnCatalog)
	}
	return r.returnToCatalog(true)
}

// waitFor blocks until the page URL matches the pattern, bounded by the
// configured navigation timeout. Only an expired bound becomes a
// NavigationTimeoutError; driver faults pass through untouched.
func (r *Runner) waitFor(pattern string) error {
	if err := r.page.WaitForURL(pattern, r.cfg.Timeouts.Navigation); err != nil {
		if errors.Is(err, ErrWaitTimeout) {
			return &NavigationTimeoutError{Pattern: pattern, Timeout: r.cfg.Timeouts.Navigation}
		}
		return err
	}
	return nil
}

// advance applies a navigation event to the tracked state, cross-checking
// the state machine against what the workflow believes just happened.
func (r *Runner) advance(event NavEvent) error {
	next, err := Transition(r.state, event)
	if err != nil {
		return err
	}
	r.log.Debug("navigation",
		zap.Stringer("from", r.state),
		zap.Stringer("event", event),
		zap.Stringer("to", next))
	r.state = next
	return nil
}
