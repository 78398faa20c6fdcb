package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/prodigy/core/assignment"
	"github.com/trezcool/prodigy/core/calendar"
	"github.com/trezcool/prodigy/core/chat"
	"github.com/trezcool/prodigy/core/class"
	"github.com/trezcool/prodigy/core/drive"
	"github.com/trezcool/prodigy/core/notification"
	"github.com/trezcool/prodigy/core/route"
)

func registerPages(g *echo.Group, s *server) {
	page := func(name string, fn viewFunc) {
		rt, _ := s.table.Lookup(name)
		g.GET(rt.Path, handle(fn), s.authorize(name))
	}

	page(route.TeacherDashboard, teacherDashboard)
	page(route.TeacherClasses, classList)
	page(route.TeacherClassDetail, teacherClassDetail)
	page(route.TeacherAssignments, assignmentList)
	page(route.TeacherGrading, grading)
	page(route.TeacherAIAssistant, aiHistory)

	page(route.StudentDashboard, studentDashboard)
	page(route.StudentClasses, classList)
	page(route.StudentClassDetail, studentClassDetail)
	page(route.StudentAssignments, studentAssignments)
	page(route.StudentAITutor, aiHistory)
	page(route.StudentProgress, progress)

	page(route.Files, files)
	page(route.Chat, chatView)
	page(route.Calendar, calendarView)
	page(route.Leaderboard, leaderboardView)
	page(route.Settings, settings)
	page(route.Notifications, notifications)
	page(route.Search, searchView)
}

// renderDashboard renders what the builder loaded, unless the session ended.
func renderDashboard(ctx echo.Context, err error, partial interface{}) error {
	if err != nil {
		return err
	}
	return render(ctx, http.StatusOK, partial)
}

func teacherDashboard(ctx echo.Context, v *views) error {
	d, err := v.dashboards.Teacher(ctx.Request().Context(), v.user())
	return renderDashboard(ctx, err, d)
}

func studentDashboard(ctx echo.Context, v *views) error {
	d, err := v.dashboards.Student(ctx.Request().Context(), v.user())
	return renderDashboard(ctx, err, d)
}

func classList(ctx echo.Context, v *views) error {
	classes, err := v.classes.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing classes")
	}
	return render(ctx, http.StatusOK, classes)
}

type classDetail struct {
	Class         class.Class             `json:"class"`
	Assignments   []assignment.Assignment `json:"assignments"`
	Announcements []class.Announcement    `json:"announcements"`
	Students      []class.Student         `json:"students,omitempty"`
	Analytics     *class.Analytics        `json:"analytics,omitempty"`
}

func loadClassDetail(ctx echo.Context, v *views) (classDetail, error) {
	var d classDetail
	var err error
	rctx, id := ctx.Request().Context(), ctx.Param("classId")
	if d.Class, err = v.classes.Get(rctx, id); err != nil {
		return d, errors.Wrap(err, "getting class")
	}
	if d.Assignments, err = v.assignments.List(rctx, id); err != nil {
		return d, errors.Wrap(err, "listing assignments")
	}
	if d.Announcements, err = v.classes.Announcements(rctx, id); err != nil {
		return d, errors.Wrap(err, "listing announcements")
	}
	return d, nil
}

func teacherClassDetail(ctx echo.Context, v *views) error {
	d, err := loadClassDetail(ctx, v)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()
	if d.Students, err = v.classes.Students(rctx, d.Class.ID); err != nil {
		return errors.Wrap(err, "listing students")
	}
	analytics, err := v.classes.Analytics(rctx, d.Class.ID)
	if err != nil {
		return errors.Wrap(err, "getting class analytics")
	}
	d.Analytics = &analytics
	return render(ctx, http.StatusOK, d)
}

func studentClassDetail(ctx echo.Context, v *views) error {
	d, err := loadClassDetail(ctx, v)
	if err != nil {
		return err
	}
	return render(ctx, http.StatusOK, d)
}

func assignmentList(ctx echo.Context, v *views) error {
	assignments, err := v.assignments.List(ctx.Request().Context(), ctx.QueryParam("class_id"))
	if err != nil {
		return errors.Wrap(err, "listing assignments")
	}
	return render(ctx, http.StatusOK, assignments)
}

func studentAssignments(ctx echo.Context, v *views) error {
	rctx := ctx.Request().Context()
	assignments, err := v.assignments.List(rctx, ctx.QueryParam("class_id"))
	if err != nil {
		return errors.Wrap(err, "listing assignments")
	}
	subs, err := v.assignments.Submissions(rctx, "")
	if err != nil {
		return errors.Wrap(err, "listing submissions")
	}
	return render(ctx, http.StatusOK, echo.Map{
		"assignments": assignments,
		"pending":     assignment.Pending(assignments, subs),
		"submissions": subs,
	})
}

func grading(ctx echo.Context, v *views) error {
	subs, err := v.assignments.Submissions(ctx.Request().Context(), ctx.QueryParam("assignment_id"))
	if err != nil {
		return errors.Wrap(err, "listing submissions")
	}
	if ctx.QueryParam("all") == "" {
		subs = assignment.Ungraded(subs)
	}
	return render(ctx, http.StatusOK, subs)
}

func aiHistory(ctx echo.Context, v *views) error {
	history, err := v.ai.History(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting AI history")
	}
	return render(ctx, http.StatusOK, history)
}

func progress(ctx echo.Context, v *views) error {
	stats, err := v.assignments.StudentAnalytics(ctx.Request().Context(), v.user().ID)
	if err != nil {
		return errors.Wrap(err, "getting student analytics")
	}
	return render(ctx, http.StatusOK, stats)
}

func files(ctx echo.Context, v *views) error {
	rctx := ctx.Request().Context()
	filter := drive.Filter{FolderID: ctx.QueryParam("folder_id"), ClassID: ctx.QueryParam("class_id")}
	folders, err := v.drive.Folders(rctx, filter)
	if err != nil {
		return errors.Wrap(err, "listing folders")
	}
	fls, err := v.drive.Files(rctx, filter)
	if err != nil {
		return errors.Wrap(err, "listing files")
	}
	return render(ctx, http.StatusOK, echo.Map{"folders": folders, "files": fls})
}

// chatView lists the conversations, or the thread of one of them: its messages and the unsent ones.
func chatView(ctx echo.Context, v *views) error {
	rctx := ctx.Request().Context()
	filter := chat.Filter{ReceiverID: ctx.QueryParam("with"), ClassID: ctx.QueryParam("class_id")}
	if filter.ReceiverID == "" && filter.ClassID == "" {
		convs, err := v.chat.Conversations(rctx)
		if err != nil {
			return errors.Wrap(err, "listing conversations")
		}
		return render(ctx, http.StatusOK, convs)
	}
	thread, err := v.threads().Conversation(rctx, filter)
	if err != nil {
		return errors.Wrap(err, "listing messages")
	}
	return render(ctx, http.StatusOK, thread.Entries())
}

func calendarView(ctx echo.Context, v *views) error {
	events, err := v.calendar.Events(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing events")
	}
	return render(ctx, http.StatusOK, calendar.ByDay(events))
}

func leaderboardView(ctx echo.Context, v *views) error {
	board, err := v.leaderboard.Get(ctx.Request().Context(), ctx.QueryParam("class_id"))
	if err != nil {
		return errors.Wrap(err, "getting leaderboard")
	}
	usr := v.user()
	data := echo.Map{"entries": board}
	if usr.IsStudent() {
		data["rank"] = board.Rank(usr.ID)
	}
	return render(ctx, http.StatusOK, data)
}

func settings(ctx echo.Context, v *views) error {
	return render(ctx, http.StatusOK, v.user())
}

func notifications(ctx echo.Context, v *views) error {
	notifs, err := v.notifications.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing notifications")
	}
	return render(ctx, http.StatusOK, echo.Map{
		"notifications": notifs,
		"unread":        len(notification.Unread(notifs)),
	})
}

func searchView(ctx echo.Context, v *views) error {
	res, err := v.search.Search(ctx.Request().Context(), ctx.QueryParam("q"))
	if err != nil {
		return errors.Wrap(err, "searching")
	}
	return render(ctx, http.StatusOK, res)
}
