package echoweb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/prodigy/services/backend"
	logsvc "github.com/trezcool/prodigy/services/logger"
	inmemstore "github.com/trezcool/prodigy/storage/session/inmem"
)

func Test_hub(t *testing.T) {
	now := time.Now()
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }()

	h := newHub(inmemstore.NewDB(), backend.Options{BaseURL: "http://127.0.0.1:1"}, logsvc.NewNopLogger(), time.Second)

	a, err := h.get("a")
	require.NoError(t, err)
	again, err := h.get("a")
	require.NoError(t, err)
	assert.Same(t, a, again, "a browser session is revalidated once")

	// nothing stored: resolved signed out without calling the backend
	a.await(context.Background(), time.Second)
	st := a.mgr.State()
	assert.False(t, st.Loading)
	assert.Nil(t, st.User)

	_, err = h.get("b")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = h.get("b")
	require.NoError(t, err)

	assert.Equal(t, 1, h.prune(time.Hour))
	assert.NotContains(t, h.sessions, "a")
	assert.Contains(t, h.sessions, "b")

	h.closeAll()
	assert.Empty(t, h.sessions)
}

func Test_hub_anonymous(t *testing.T) {
	h := newHub(inmemstore.NewDB(), backend.Options{BaseURL: "http://127.0.0.1:1"}, logsvc.NewNopLogger(), time.Second)

	anon, err := h.anonymous()
	require.NoError(t, err)
	again, err := h.anonymous()
	require.NoError(t, err)
	assert.Same(t, anon, again)
	assert.True(t, h.isAnonymous(anon))
	assert.Empty(t, h.sessions, "signed out browsers share one session")

	st := anon.mgr.State()
	assert.False(t, st.Loading)
	assert.Nil(t, st.User)

	h.closeAll()
	assert.Nil(t, h.anon)
}

func Test_browserSession_chatThreads(t *testing.T) {
	h := newHub(inmemstore.NewDB(), backend.Options{BaseURL: "http://127.0.0.1:1"}, logsvc.NewNopLogger(), time.Second)
	defer h.closeAll()

	bs, err := h.get("a")
	require.NoError(t, err)
	bs.await(context.Background(), time.Second)

	threads := bs.chatThreads("1")
	assert.Same(t, threads, bs.chatThreads("1"), "kept between requests")

	bs.mgr.Logout(context.Background())
	assert.NotSame(t, threads, bs.chatThreads("1"), "dropped when the session ends")
}
