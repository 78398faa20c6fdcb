package route

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/prodigy/core/session"
)

const (
	RootPath             = "/"
	LoginPath            = "/login"
	SignupPath           = "/signup"
	TeacherDashboardPath = "/teacher/dashboard"
	StudentDashboardPath = "/student/dashboard"
)

var ErrNotFound = errors.New("route not found")

// Decision is what the Guard decided for a navigation.
type Decision int

const (
	Placeholder Decision = iota + 1 // auth not resolved yet: render a neutral placeholder
	Redirect                        // navigate to Outcome.Target instead
	Render                          // render the requested view
)

func (d Decision) String() string {
	switch d {
	case Placeholder:
		return "placeholder"
	case Redirect:
		return "redirect"
	case Render:
		return "render"
	}
	return "unknown"
}

type Outcome struct {
	Decision Decision
	Target   string // redirect target
	Route    Route
	Params   map[string]string
}

// Authenticator exposes the resolved authentication state (session.Manager).
type Authenticator interface {
	State() session.State
}

type Guard struct {
	table *Table
	auth  Authenticator
}

func NewGuard(table *Table, auth Authenticator) *Guard {
	return &Guard{table: table, auth: auth}
}

// HomeFor returns the default view of role.
func HomeFor(role session.Role) string {
	switch role {
	case session.RoleTeacher:
		return TeacherDashboardPath
	case session.RoleStudent:
		return StudentDashboardPath
	}
	return LoginPath
}

// Resolve decides whether the view at path may render for the current session.
// A redirect and a render are never both decided.
func (g *Guard) Resolve(path string) (Outcome, error) {
	path = normalize(path)

	var rt Route
	var params map[string]string
	if path != RootPath {
		var ok bool
		if rt, params, ok = g.table.Match(path); !ok {
			return Outcome{}, errors.Wrap(ErrNotFound, path)
		}
		if rt.Public {
			return Outcome{Decision: Render, Route: rt, Params: params}, nil
		}
	}

	state := g.auth.State()
	if state.Loading {
		return Outcome{Decision: Placeholder, Route: rt, Params: params}, nil
	}
	if state.User == nil {
		return Outcome{Decision: Redirect, Target: LoginPath, Route: rt, Params: params}, nil
	}
	if path == RootPath {
		return Outcome{Decision: Redirect, Target: HomeFor(state.User.Role)}, nil
	}
	if rt.Role != "" && rt.Role != state.User.Role {
		return Outcome{Decision: Redirect, Target: HomeFor(state.User.Role), Route: rt, Params: params}, nil
	}
	return Outcome{Decision: Render, Route: rt, Params: params}, nil
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return RootPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
