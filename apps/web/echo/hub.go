package echoweb

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/prodigy/core"
	"github.com/trezcool/prodigy/core/chat"
	"github.com/trezcool/prodigy/core/session"
	"github.com/trezcool/prodigy/services/backend"
	inmemstore "github.com/trezcool/prodigy/storage/session/inmem"
)

var nowFunc = time.Now // mockable

// browserSession is the client side state of one browser: its Manager and the backend client it authorizes.
type browserSession struct {
	mgr      *session.Manager
	api      *backend.Client
	ready    chan struct{} // closed once Init returned
	lastSeen time.Time

	mu      sync.Mutex
	threads *chat.Threads // of the signed in user; dropped when the session ends
}

func newBrowserSession(store session.Store, client *backend.Client, logger core.Logger) *browserSession {
	mgr := session.NewManager(store, client, logger)
	client.Authorize(mgr)
	bs := &browserSession{mgr: mgr, api: client, ready: make(chan struct{}), lastSeen: nowFunc()}
	mgr.Subscribe(func(evt session.Event) {
		if evt.Kind == session.EventSignedIn || evt.Kind == session.EventSignedOut || evt.Kind == session.EventExpired {
			bs.mu.Lock()
			bs.threads = nil
			bs.mu.Unlock()
		}
	})
	return bs
}

// chatThreads returns the conversations of user me, kept between requests so unsent messages can be resent.
func (bs *browserSession) chatThreads(me string) *chat.Threads {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if bs.threads == nil {
		bs.threads = chat.NewThreads(chat.NewService(bs.api), me)
	}
	return bs.threads
}

// await blocks until the session is resolved, wait elapsed or ctx is done.
func (bs *browserSession) await(ctx context.Context, wait time.Duration) {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-bs.ready:
	case <-timer.C:
	case <-ctx.Done():
	}
}

// hub keeps the browser sessions alive between requests, so each one is revalidated once.
type hub struct {
	provider session.Provider
	opts     backend.Options
	logger   core.Logger
	wait     time.Duration

	mu       sync.Mutex
	sessions map[string]*browserSession
	anon     *browserSession
}

func newHub(provider session.Provider, opts backend.Options, logger core.Logger, wait time.Duration) *hub {
	return &hub{
		provider: provider,
		opts:     opts,
		logger:   logger,
		wait:     wait,
		sessions: make(map[string]*browserSession),
	}
}

// get returns the session sid, starting its revalidation on first sight.
func (h *hub) get(sid string) (*browserSession, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if bs, ok := h.sessions[sid]; ok {
		bs.lastSeen = nowFunc()
		return bs, nil
	}

	client, err := h.client()
	if err != nil {
		return nil, err
	}
	bs := newBrowserSession(h.provider.For(sid), client, h.logger)
	h.sessions[sid] = bs
	go func() {
		defer close(bs.ready)
		bs.mgr.Init(context.Background())
	}()
	return bs, nil
}

// anonymous returns the signed out session shared by the browsers without a session cookie.
// It is never signed in: login and signup open a session of their own first.
func (h *hub) anonymous() (*browserSession, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.anon != nil {
		return h.anon, nil
	}
	client, err := h.client()
	if err != nil {
		return nil, err
	}
	bs := newBrowserSession(inmemstore.NewStore(), client, h.logger)
	bs.mgr.Init(context.Background()) // nothing stored: resolves without calling the backend
	close(bs.ready)
	h.anon = bs
	return bs, nil
}

func (h *hub) isAnonymous(bs *browserSession) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return bs == h.anon
}

func (h *hub) client() (*backend.Client, error) {
	client, err := backend.New(h.opts, h.logger)
	if err != nil {
		// no request can be served without a backend
		return nil, core.NewShutdownError(errors.Wrap(err, "creating backend client").Error())
	}
	return client, nil
}

// prune drops the sessions idle for longer than idle. Their stored state is kept.
func (h *hub) prune(idle time.Duration) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	cutoff := nowFunc().Add(-idle)
	var n int
	for sid, bs := range h.sessions {
		if bs.lastSeen.Before(cutoff) {
			bs.mgr.Close()
			delete(h.sessions, sid)
			n++
		}
	}
	return n
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sid, bs := range h.sessions {
		bs.mgr.Close()
		delete(h.sessions, sid)
	}
	if h.anon != nil {
		h.anon.mgr.Close()
		h.anon = nil
	}
}
