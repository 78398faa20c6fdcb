package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/prodigy/core"
	"github.com/trezcool/prodigy/tests"
)

type senderMock struct {
	fail   bool
	during func()
	n      int
}

func (s *senderMock) Send(_ context.Context, nm NewMessage) (Message, error) {
	if s.during != nil {
		s.during()
	}
	if s.fail {
		return Message{}, errors.New("network down")
	}
	s.n++
	return Message{ID: "m" + string(rune('0'+s.n)), SenderID: "1", ReceiverID: nm.ReceiverID, Content: nm.Content, CreatedAt: "2026-10-16T10:00:00Z"}, nil
}

func TestThread_Send(t *testing.T) {
	ctx := context.Background()
	svc := &senderMock{}
	th := newThread(svc, "1", []Message{{ID: "m0", Content: "hi"}})

	var during []Entry
	svc.during = func() { during = th.Entries() }

	e, err := th.Send(ctx, NewMessage{ReceiverID: "2", Content: " hello "})
	require.NoError(t, err)

	require.Len(t, during, 2)
	assert.Equal(t, Pending, during[1].Status, "not shown as delivered before confirmation")
	assert.Equal(t, "hello", during[1].Message.Content)
	assert.Empty(t, during[1].Message.ID)

	assert.Equal(t, Committed, e.Status)
	assert.Equal(t, "m1", e.Message.ID)
	assert.Equal(t, during[1].LocalID, e.LocalID)

	entries := th.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, Committed, entries[0].Status)
	assert.Equal(t, e, entries[1])
}

func TestThread_Send_failedThenResend(t *testing.T) {
	ctx := context.Background()
	svc := &senderMock{fail: true}
	th := newThread(svc, "1", nil)

	e, err := th.Send(ctx, NewMessage{ReceiverID: "2", Content: "hello"})
	assert.EqualError(t, err, "network down")
	assert.Equal(t, Failed, e.Status)
	assert.Error(t, e.Err)
	assert.Equal(t, "hello", th.Entries()[0].Message.Content, "failed entry is kept")

	_, err = th.Resend(ctx, "nope")
	assert.ErrorIs(t, err, ErrUnknownEntry)

	svc.fail = false
	e, err = th.Resend(ctx, e.LocalID)
	require.NoError(t, err)
	assert.Equal(t, Committed, e.Status)
	assert.Nil(t, e.Err)
	assert.Len(t, th.Entries(), 1)

	_, err = th.Resend(ctx, e.LocalID)
	assert.ErrorIs(t, err, ErrUnknownEntry, "committed entries cannot be resent")
}

func TestThread_Discard(t *testing.T) {
	ctx := context.Background()
	th := newThread(&senderMock{fail: true}, "1", nil)
	e, _ := th.Send(ctx, NewMessage{ReceiverID: "2", Content: "hello"})

	require.NoError(t, th.Discard(e.LocalID))
	assert.Empty(t, th.Entries())
	assert.ErrorIs(t, th.Discard(e.LocalID), ErrUnknownEntry)
}

func TestThread_Send_invalid(t *testing.T) {
	th := newThread(&senderMock{}, "1", nil)
	_, err := th.Send(context.Background(), NewMessage{ReceiverID: "2", Content: "   "})
	assert.True(t, core.IsValidationError(err))
	assert.Empty(t, th.Entries(), "invalid messages are never shown")
}

func TestThread_Reconcile(t *testing.T) {
	ctx := context.Background()
	svc := &senderMock{}
	th := newThread(svc, "1", []Message{{ID: "m0", Content: "hi"}})
	sent, err := th.Send(ctx, NewMessage{ReceiverID: "2", Content: "hello"})
	require.NoError(t, err)
	svc.fail = true
	failed, _ := th.Send(ctx, NewMessage{ReceiverID: "2", Content: "are you there?"})

	th.Reconcile([]Message{{ID: "m0", Content: "hi"}, sent.Message, {ID: "m9", SenderID: "2", Content: "yes"}})

	entries := th.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, []string{"m0", "m1", "m9"}, []string{entries[0].Message.ID, entries[1].Message.ID, entries[2].Message.ID})
	assert.Equal(t, Failed, entries[3].Status, "local failures survive a refresh")
	assert.Equal(t, failed.LocalID, entries[3].LocalID)
}

func TestThread_UnsentRestore(t *testing.T) {
	ctx := context.Background()
	svc := &senderMock{fail: true}
	th := newThread(svc, "1", nil)
	classID := "c1"
	e, _ := th.Send(ctx, NewMessage{ReceiverID: "2", Content: "hello", ClassID: &classID})

	unsent := th.Unsent()
	require.Len(t, unsent, 1)
	assert.Equal(t, e.LocalID, unsent[0].LocalID)
	assert.Equal(t, "network down", unsent[0].Error)

	data, err := json.Marshal(unsent)
	require.NoError(t, err)
	var back []Unsent
	require.NoError(t, json.Unmarshal(data, &back))

	restored := newThread(svc, "1", nil)
	restored.Restore(back...)
	restored.Restore(back...)
	entries := restored.Entries()
	require.Len(t, entries, 1, "restoring twice keeps one entry")
	assert.Equal(t, Failed, entries[0].Status)
	assert.Equal(t, "c1", entries[0].Message.ClassID)

	svc.fail = false
	sent, err := restored.Resend(ctx, e.LocalID)
	require.NoError(t, err)
	assert.Equal(t, Committed, sent.Status)
	assert.Empty(t, restored.Unsent())
}

func TestEntry_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Entry{LocalID: "l1", Status: Failed, Message: Message{Content: "hello"}, Err: errors.New("network down")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"local_id":"l1","status":"failed","message":{"id":"","sender_id":"","receiver_id":"","content":"hello"},"error":"network down"}`, string(data))
}

func TestThreads(t *testing.T) {
	var mu sync.Mutex
	down := true
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/messages", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case r.Method == http.MethodGet && r.URL.Query().Get("class_id") == "c1":
			testutil.WriteJSON(t, w, http.StatusOK, []Message{{ID: "m1", Content: "welcome", ClassID: "c1"}})
		case r.Method == http.MethodGet:
			testutil.WriteJSON(t, w, http.StatusOK, []Message{})
		case down:
			testutil.WriteJSON(t, w, http.StatusServiceUnavailable, map[string]string{"detail": "try later"})
		default:
			var nm NewMessage
			testutil.DecodeJSON(t, r, &nm)
			testutil.WriteJSON(t, w, http.StatusOK, Message{ID: "m2", ReceiverID: nm.ReceiverID, Content: nm.Content, ClassID: deref(nm.ClassID)})
		}
	})
	ts := NewThreads(NewService(testutil.NewBackend(t, mux)), "1")
	ctx := context.Background()

	classID := "c1"
	nm := NewMessage{ReceiverID: "2", Content: "hello class", ClassID: &classID}
	e, err := ts.Of(FilterOf(nm)).Send(ctx, nm)
	assert.Error(t, err)
	assert.Equal(t, Failed, e.Status)

	th, err := ts.Conversation(ctx, Filter{ClassID: "c1"})
	require.NoError(t, err)
	entries := th.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "welcome", entries[0].Message.Content)
	assert.Equal(t, Failed, entries[1].Status)

	direct, err := ts.Conversation(ctx, Filter{ReceiverID: "2"})
	require.NoError(t, err)
	assert.Empty(t, direct.Entries(), "conversations are kept apart")

	found, err := ts.Find(e.LocalID)
	require.NoError(t, err)
	assert.Same(t, th, found)
	_, err = ts.Find("nope")
	assert.ErrorIs(t, err, ErrUnknownEntry)

	mu.Lock()
	down = false
	mu.Unlock()
	e, err = found.Resend(ctx, e.LocalID)
	require.NoError(t, err)
	assert.Equal(t, "m2", e.Message.ID)
}

func TestThreads_Restore(t *testing.T) {
	ts := NewThreads(NewService(testutil.NewBackend(t, http.NewServeMux())), "1")
	classID := "c1"
	unsent := []Unsent{
		{LocalID: "a", Draft: NewMessage{ReceiverID: "2", Content: "hi"}, Error: "backend: 503 try later"},
		{LocalID: "b", Draft: NewMessage{ReceiverID: "2", Content: "hello class", ClassID: &classID}},
	}
	ts.Restore(unsent...)
	ts.Restore(unsent[0])

	assert.Len(t, ts.Of(Filter{ReceiverID: "2"}).Entries(), 1)
	assert.Len(t, ts.Of(Filter{ClassID: "c1"}).Entries(), 1)
	assert.Equal(t, []Unsent{unsent[1], unsent[0]}, ts.Unsent(), "class conversations sort first")

	th, err := ts.Find("b")
	require.NoError(t, err)
	require.NoError(t, th.Discard("b"))
	assert.Equal(t, unsent[:1], ts.Unsent())
}
