package lms

import (
	"fmt"
	"strings"
)

// Progress is one reading of the player's time display, e.g.
// "23:11 / 36:11". Both components stay formatted strings: completion is
// decided by string equality against a baseline snapshot, never by parsing
// the clock values.
type Progress struct {
	Elapsed string
	Total   string
}

// ParseProgress splits a raw time-display string on the first "/".
func ParseProgress(raw string) (Progress, error) {
	elapsed, total, ok := strings.Cut(raw, "/")
	if !ok {
		return Progress{}, fmt.Errorf("malformed progress display %q: no separator", raw)
	}
	p := Progress{
		Elapsed: strings.TrimSpace(elapsed),
		Total:   strings.TrimSpace(total),
	}
	if p.Elapsed == "" || p.Total == "" {
		return Progress{}, fmt.Errorf("malformed progress display %q: empty component", raw)
	}
	return p, nil
}
