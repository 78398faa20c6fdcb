package route

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/prodigy/core/session"
)

// Route names
const (
	Login              = "login"
	Signup             = "signup"
	Help               = "help"
	TeacherDashboard   = "teacher.dashboard"
	TeacherClasses     = "teacher.classes"
	TeacherClassDetail = "teacher.class"
	TeacherAssignments = "teacher.assignments"
	TeacherGrading     = "teacher.grading"
	TeacherAIAssistant = "teacher.ai"
	StudentDashboard   = "student.dashboard"
	StudentClasses     = "student.classes"
	StudentClassDetail = "student.class"
	StudentAssignments = "student.assignments"
	StudentAITutor     = "student.ai"
	StudentProgress    = "student.progress"
	Files              = "files"
	Chat               = "chat"
	Calendar           = "calendar"
	Leaderboard        = "leaderboard"
	Settings           = "settings"
	Notifications      = "notifications"
	Search             = "search"
)

// Route is one navigable view.
// An empty Role means any authenticated user; Public routes need no session at all.
type Route struct {
	Name   string
	Path   string // segments starting with ':' are parameters
	Role   session.Role
	Public bool
}

type Table struct {
	routes []Route
	byName map[string]Route
}

func NewTable(routes ...Route) (*Table, error) {
	t := &Table{byName: make(map[string]Route, len(routes))}
	for _, rt := range routes {
		if rt.Role != "" && !rt.Role.Valid() {
			return nil, errors.Wrapf(session.ErrInvalidRole, "route %s", rt.Name)
		}
		if _, dup := t.byName[rt.Name]; dup {
			return nil, errors.Errorf("duplicate route %s", rt.Name)
		}
		rt.Path = normalize(rt.Path)
		t.routes = append(t.routes, rt)
		t.byName[rt.Name] = rt
	}
	return t, nil
}

// DefaultTable returns the views of the PRODIGY client.
func DefaultTable() *Table {
	t, err := NewTable(
		Route{Name: Login, Path: LoginPath, Public: true},
		Route{Name: Signup, Path: SignupPath, Public: true},
		Route{Name: Help, Path: "/help", Public: true},

		Route{Name: TeacherDashboard, Path: TeacherDashboardPath, Role: session.RoleTeacher},
		Route{Name: TeacherClasses, Path: "/teacher/classes", Role: session.RoleTeacher},
		Route{Name: TeacherClassDetail, Path: "/teacher/classes/:classId", Role: session.RoleTeacher},
		Route{Name: TeacherAssignments, Path: "/teacher/assignments", Role: session.RoleTeacher},
		Route{Name: TeacherGrading, Path: "/teacher/grading", Role: session.RoleTeacher},
		Route{Name: TeacherAIAssistant, Path: "/teacher/ai-assistant", Role: session.RoleTeacher},

		Route{Name: StudentDashboard, Path: StudentDashboardPath, Role: session.RoleStudent},
		Route{Name: StudentClasses, Path: "/student/classes", Role: session.RoleStudent},
		Route{Name: StudentClassDetail, Path: "/student/classes/:classId", Role: session.RoleStudent},
		Route{Name: StudentAssignments, Path: "/student/assignments", Role: session.RoleStudent},
		Route{Name: StudentAITutor, Path: "/student/ai-tutor", Role: session.RoleStudent},
		Route{Name: StudentProgress, Path: "/student/progress", Role: session.RoleStudent},

		Route{Name: Files, Path: "/files"},
		Route{Name: Chat, Path: "/chat"},
		Route{Name: Calendar, Path: "/calendar"},
		Route{Name: Leaderboard, Path: "/leaderboard"},
		Route{Name: Settings, Path: "/settings"},
		Route{Name: Notifications, Path: "/notifications"},
		Route{Name: Search, Path: "/search"},
	)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) Routes() []Route {
	routes := make([]Route, len(t.routes))
	copy(routes, t.routes)
	return routes
}

func (t *Table) Lookup(name string) (Route, bool) {
	rt, ok := t.byName[name]
	return rt, ok
}

// Path builds the path of the named route, substituting params in order.
func (t *Table) Path(name string, params ...string) (string, error) {
	rt, ok := t.byName[name]
	if !ok {
		return "", errors.Wrap(ErrNotFound, name)
	}
	segs := strings.Split(rt.Path, "/")
	for i, seg := range segs {
		if strings.HasPrefix(seg, ":") {
			if len(params) == 0 {
				return "", errors.Errorf("route %s: missing %s", name, seg)
			}
			segs[i], params = params[0], params[1:]
		}
	}
	return strings.Join(segs, "/"), nil
}

// Match finds the route serving path. Static segments win over parameters.
func (t *Table) Match(path string) (Route, map[string]string, bool) {
	segs := strings.Split(normalize(path), "/")

	var best Route
	var bestParams map[string]string
	bestScore := -1
	for _, rt := range t.routes {
		params, score, ok := matchSegments(strings.Split(rt.Path, "/"), segs)
		if ok && score > bestScore {
			best, bestParams, bestScore = rt, params, score
		}
	}
	return best, bestParams, bestScore >= 0
}

func matchSegments(pattern, segs []string) (map[string]string, int, bool) {
	if len(pattern) != len(segs) {
		return nil, 0, false
	}
	var params map[string]string
	score := 0
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			if segs[i] == "" {
				return nil, 0, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[p[1:]] = segs[i]
			continue
		}
		if p != segs[i] {
			return nil, 0, false
		}
		score++
	}
	return params, score, true
}
