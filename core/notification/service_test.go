package notification

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/prodigy/core"
	"github.com/trezcool/prodigy/tests"
)

func TestService(t *testing.T) {
	var marked []string
	mux := http.NewServeMux()
	mux.HandleFunc("/notifications", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(t, w, http.StatusOK, []Notification{
			{ID: "n1", Title: "Assignment graded", Kind: KindGrade},
			{ID: "n2", Title: "New announcement in Algebra", Kind: KindAnnouncement, Read: true},
		})
	})
	mux.HandleFunc("/notifications/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		marked = append(marked, r.URL.Path)
		testutil.WriteJSON(t, w, http.StatusOK, core.Message{Message: "Marked as read"})
	})
	svc := NewService(testutil.NewBackend(t, mux))
	ctx := context.Background()

	notifs, err := svc.List(ctx)
	require.NoError(t, err)
	unread := Unread(notifs)
	require.Len(t, unread, 1)
	assert.Equal(t, "n1", unread[0].ID)

	require.NoError(t, svc.MarkRead(ctx, "n1"))
	require.NoError(t, svc.MarkAllRead(ctx))
	assert.Equal(t, ErrMissingID, svc.MarkRead(ctx, " "))
	assert.Equal(t, []string{"/notifications/n1/read", "/notifications/read-all"}, marked)
}
