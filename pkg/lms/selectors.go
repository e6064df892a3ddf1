package lms

// Structural selectors and fixed labels of the target platform. The course
// catalog and course detail pages are Angular-rendered, hence the ng-bind
// and ng-hide markers.
const (
	// Catalog page.
	selCourseList     = "ol.courses"
	selCourseTitle    = "div.course-title"
	selCourseSemester = "div.course-academic-year-semester"
	selCourseCode     = `span[tipsy="course.course_code"]`
	selCourseStart    = `span[ng-bind="course.start_date"]`
	selCoursePercent  = `section.percent span[ng-bind="course.completeness + '%'"]`

	// Course detail page.
	selIncompleteFilter = `input[type="checkbox"]`
	selActivitiesRoot   = "div.learning-activities"
	selActivityGroup    = "div.learning-activities:not(.ng-hide)"
	selActivityRow      = "div.learning-activity:not(.ng-hide)"
	selActivityTitle    = "div.activity-title a.title"

	// Activity page content containers, one per activity type.
	selVideoBox = "div.activity-content-bd.online-video-box"
	selEBookBox = "div.activity-content-bd.page-box"
	selForumBox = "div.activity-content-bd.forum-box"

	// Video player controls.
	selPlayButton  = "i.mvp-fonts.mvp-fonts-play"
	selTimeDisplay = "div.mvp-time-display"

	// Fixed UI labels.
	labelMyCourses = "我的课程"
	labelExpandAll = "全部展开"
	labelLoginName = "请输入登录名"
	labelPassword  = "请输入登录密码"
	labelSubmit    = "登录"
)
