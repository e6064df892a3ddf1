package lms

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Course is one enrolled course as rendered on the catalog page. All fields
// are display strings read straight off the page; the title doubles as the
// navigation key into the course, so titles are assumed unique within a
// catalog.
type Course struct {
	Title     string
	Semester  string
	Code      string
	StartDate string
	Percent   string
}

// Enumerator reads the enrolled-course list off an already-loaded catalog
// page.
type Enumerator struct {
	page Page
	log  *zap.Logger
}

// NewEnumerator builds an Enumerator over the given page.
func NewEnumerator(page Page, log *zap.Logger) *Enumerator {
	return &Enumerator{page: page, log: log}
}

// Courses extracts every course entry, in rendered order. Entries are
// extracted concurrently; order is preserved by index. A missing
// sub-element in any entry fails the whole enumeration with a
// MissingFieldError.
func (e *Enumerator) Courses(ctx context.Context) ([]Course, error) {
	root, err := e.page.Query(selCourseList)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, &MissingFieldError{Entity: "catalog", Field: "course list", Selector: selCourseList}
	}

	entries, err := root.QueryAll("li")
	if err != nil {
		return nil, err
	}

	courses := make([]Course, len(entries))
	g, _ := errgroup.WithContext(ctx)
	for i, entry := range entries {
		g.Go(func() error {
			c, err := extractCourse(entry)
			if err != nil {
				return err
			}
			courses[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.log.Info("enumerated courses", zap.Int("count", len(courses)))
	return courses, nil
}

// extractCourse reads the five metadata fields of one catalog entry. The
// field reads are independent and run as a nested fan-out.
func extractCourse(entry Element) (Course, error) {
	var c Course
	var g errgroup.Group
	for _, f := range []struct {
		name     string
		selector string
		dst      *string
	}{
		{"title", selCourseTitle, &c.Title},
		{"semester", selCourseSemester, &c.Semester},
		{"code", selCourseCode, &c.Code},
		{"start date", selCourseStart, &c.StartDate},
		{"completion percent", selCoursePercent, &c.Percent},
	} {
		g.Go(func() error {
			el, err := entry.Query(f.selector)
			if err != nil {
				return err
			}
			if el == nil {
				return &MissingFieldError{Entity: "course", Field: f.name, Selector: f.selector}
			}
			text, err := el.InnerText()
			if err != nil {
				return err
			}
			*f.dst = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Course{}, err
	}
	return c, nil
}
