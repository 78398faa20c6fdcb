package calendar

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/prodigy/tests"
)

var events = []Event{
	{ID: "a1", Title: "Essay", Date: "2026-11-02", Kind: "assignment"},
	{ID: "a2", Title: "Quiz", Date: "2026-10-20T09:00", Kind: "assignment"},
	{ID: "a3", Title: "Lab", Date: "2026-11-02T23:59:00Z", Kind: "assignment"},
	{ID: "a4", Title: "Someday", Date: "tbd", Kind: "assignment"},
}

func TestByDay(t *testing.T) {
	days := ByDay(events)
	require.Len(t, days, 2)
	assert.Equal(t, "2026-10-20", days[0].Day)
	assert.Equal(t, "2026-11-02", days[1].Day)
	assert.Len(t, days[1].Events, 2)
}

func TestMonth(t *testing.T) {
	nov := Month(events, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC))
	assert.Len(t, nov, 2)
}

func TestService_Events(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/calendar", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(t, w, http.StatusOK, events)
	})
	got, err := NewService(testutil.NewBackend(t, mux)).Events(context.Background())
	require.NoError(t, err)
	assert.Equal(t, events, got)
}
