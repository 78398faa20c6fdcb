package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/prodigy/core/session"
)

type authState session.State

func (s authState) State() session.State { return session.State(s) }

var (
	loading   = authState{Loading: true}
	signedOut = authState{}
	student   = authState{User: &session.Profile{ID: "1", Role: session.RoleStudent}}
	teacher   = authState{User: &session.Profile{ID: "2", Role: session.RoleTeacher}}
)

func TestGuard_Resolve(t *testing.T) {
	tests := []struct {
		name       string
		auth       authState
		path       string
		want       Decision
		wantTarget string
		wantRoute  string
	}{
		{name: "loading", auth: loading, path: "/student/dashboard", want: Placeholder, wantRoute: StudentDashboard},
		{name: "loading root", auth: loading, path: "/", want: Placeholder},
		{name: "loading public", auth: loading, path: "/login", want: Render, wantRoute: Login},
		{name: "signed out", auth: signedOut, path: "/student/dashboard", want: Redirect, wantTarget: LoginPath, wantRoute: StudentDashboard},
		{name: "signed out shared view", auth: signedOut, path: "/chat", want: Redirect, wantTarget: LoginPath, wantRoute: Chat},
		{name: "signed out root", auth: signedOut, path: "", want: Redirect, wantTarget: LoginPath},
		{name: "signed out help", auth: signedOut, path: "/help", want: Render, wantRoute: Help},
		{name: "signed in login page", auth: student, path: "/login", want: Render, wantRoute: Login},
		{name: "student root", auth: student, path: "/", want: Redirect, wantTarget: StudentDashboardPath},
		{name: "teacher root", auth: teacher, path: "/", want: Redirect, wantTarget: TeacherDashboardPath},
		{name: "student own view", auth: student, path: "/student/progress", want: Render, wantRoute: StudentProgress},
		{name: "student teacher view", auth: student, path: "/teacher/dashboard", want: Redirect, wantTarget: StudentDashboardPath, wantRoute: TeacherDashboard},
		{name: "teacher student view", auth: teacher, path: "/student/ai-tutor", want: Redirect, wantTarget: TeacherDashboardPath, wantRoute: StudentAITutor},
		{name: "teacher shared view", auth: teacher, path: "/calendar/", want: Render, wantRoute: Calendar},
		{name: "student shared view with query", auth: student, path: "/search?q=algebra", want: Render, wantRoute: Search},
		{name: "teacher class detail", auth: teacher, path: "/teacher/classes/c1", want: Render, wantRoute: TeacherClassDetail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGuard(DefaultTable(), tt.auth)
			got, err := g.Resolve(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Decision)
			assert.Equal(t, tt.wantTarget, got.Target)
			assert.Equal(t, tt.wantRoute, got.Route.Name)
		})
	}
}

// A view renders iff a user is set and the role matches (when one is required).
func TestGuard_Resolve_renderIffAuthorized(t *testing.T) {
	table := DefaultTable()
	for _, auth := range []authState{signedOut, student, teacher} {
		g := NewGuard(table, auth)
		for _, rt := range table.Routes() {
			if rt.Public {
				continue
			}
			path, err := table.Path(rt.Name, "x")
			require.NoError(t, err)

			got, err := g.Resolve(path)
			require.NoError(t, err)

			authorized := auth.User != nil && (rt.Role == "" || rt.Role == auth.User.Role)
			if authorized {
				assert.Equal(t, Render, got.Decision, "%s as %v", path, auth.User)
				assert.Empty(t, got.Target)
			} else {
				assert.Equal(t, Redirect, got.Decision, "%s as %v", path, auth.User)
				assert.NotEmpty(t, got.Target)
			}
		}
	}
}

func TestGuard_Resolve_notFound(t *testing.T) {
	g := NewGuard(DefaultTable(), student)
	_, err := g.Resolve("/admin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHomeFor(t *testing.T) {
	assert.Equal(t, TeacherDashboardPath, HomeFor(session.RoleTeacher))
	assert.Equal(t, StudentDashboardPath, HomeFor(session.RoleStudent))
	assert.Equal(t, LoginPath, HomeFor("admin"))
}
