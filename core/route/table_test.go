package route

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/prodigy/core/session"
)

func TestNewTable(t *testing.T) {
	_, err := NewTable(Route{Name: "a", Path: "/a"}, Route{Name: "a", Path: "/b"})
	assert.Error(t, err)

	_, err = NewTable(Route{Name: "admin", Path: "/admin", Role: "admin"})
	assert.ErrorIs(t, err, session.ErrInvalidRole)
}

func TestTable_Match(t *testing.T) {
	table, err := NewTable(
		Route{Name: "classes", Path: "/classes"},
		Route{Name: "class", Path: "/classes/:classId"},
		Route{Name: "new", Path: "/classes/new"},
		Route{Name: "assignment", Path: "/classes/:classId/assignments/:id"},
	)
	assert.NoError(t, err)

	tests := []struct {
		path       string
		wantName   string
		wantParams map[string]string
		wantOK     bool
	}{
		{path: "/classes", wantName: "classes", wantOK: true},
		{path: "classes/", wantName: "classes", wantOK: true},
		{path: "/classes/c1", wantName: "class", wantParams: map[string]string{"classId": "c1"}, wantOK: true},
		{path: "/classes/new", wantName: "new", wantOK: true},
		{path: "/classes/c1/assignments/a9", wantName: "assignment", wantParams: map[string]string{"classId": "c1", "id": "a9"}, wantOK: true},
		{path: "/classes/c1/assignments"},
		{path: "/grades"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rt, params, ok := table.Match(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantName, rt.Name)
			assert.Equal(t, tt.wantParams, params)
		})
	}
}

func TestTable_Path(t *testing.T) {
	table := DefaultTable()

	path, err := table.Path(TeacherClassDetail, "c1")
	assert.NoError(t, err)
	assert.Equal(t, "/teacher/classes/c1", path)

	_, err = table.Path(TeacherClassDetail)
	assert.Error(t, err)

	_, err = table.Path("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
