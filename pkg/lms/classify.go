package lms

// ActivityType is the kind of learning unit the open activity page holds.
// Only videos have an automated completion strategy; the other types are
// reported and skipped.
type ActivityType int

const (
	ActivityUnknown ActivityType = iota
	ActivityVideo
	ActivityEBook
	ActivityForum
)

func (t ActivityType) String() string {
	switch t {
	case ActivityVideo:
		return "video"
	case ActivityEBook:
		return "e-book"
	case ActivityForum:
		return "forum"
	default:
		return "unknown"
	}
}

// ClassifyActivity inspects the open activity page's content container and
// reports which kind of activity it is.
func ClassifyActivity(page Page) (ActivityType, error) {
	for _, c := range []struct {
		selector string
		typ      ActivityType
	}{
		{selVideoBox, ActivityVideo},
		{selEBookBox, ActivityEBook},
		{selForumBox, ActivityForum},
	} {
		el, err := page.Query(c.selector)
		if err != nil {
			return ActivityUnknown, err
		}
		if el != nil {
			return c.typ, nil
		}
	}
	return ActivityUnknown, nil
}
