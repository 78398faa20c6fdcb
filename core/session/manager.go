package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/prodigy/core"
)

var ErrNotAuthenticated = errors.New("user not authenticated")

// Manager owns the authentication state machine of one client:
// the current user, the loading flag and the bearer credential.
// Revalidation failures, logouts and backend authorization failures
// all end the session through the same teardown, and only when the session
// they were issued for is still the current one.
type Manager struct {
	store  Store
	api    core.Backend
	logger core.Logger

	// mu also serializes store writes, so the store never lags behind memory.
	mu         sync.RWMutex
	credential string
	user       *Profile
	loading    bool
	closed     bool
	epoch      uint64 // bumped whenever a session starts or ends

	subsMu sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

func NewManager(store Store, api core.Backend, logger core.Logger) *Manager {
	return &Manager{
		store:   store,
		api:     api,
		logger:  logger,
		loading: true,
		subs:    make(map[int]func(Event)),
	}
}

// Init resolves the session at startup.
// With a stored credential, the cached profile is published right away (still loading)
// and the credential is revalidated against `GET /auth/me`.
// Any revalidation failure ends the session. Init always leaves Loading false.
// A login or logout completing while Init runs wins: Init then leaves the session alone.
func (m *Manager) Init(ctx context.Context) State {
	m.mu.Lock()
	epoch := m.epoch
	m.mu.Unlock()

	credential, cached, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn("loading stored session", errors.Wrap(err, "session.Init"))
		credential, cached = "", nil
	}

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return m.State()
	}
	if credential == "" {
		m.credential, m.user, m.loading = "", nil, false
		m.mu.Unlock()
		return m.State()
	}
	m.credential, m.user, m.loading = credential, cloneProfile(cached), true
	m.epoch++
	epoch = m.epoch
	m.mu.Unlock()

	if credentialExpired(credential) {
		m.logger.Info("stored credential expired")
		m.teardown(ctx, EventExpired, m.startedBy(epoch))
		return m.State()
	}

	var fresh Profile
	if err := m.api.Do(ctx, core.Get("/auth/me"), &fresh); err != nil {
		m.logger.Info("session revalidation failed", err)
		m.teardown(ctx, EventExpired, m.startedBy(epoch))
		return m.State()
	}
	if !fresh.Role.Valid() {
		m.logger.Warn("session revalidation failed", errors.Wrapf(ErrInvalidRole, "backend returned role %q", fresh.Role))
		m.teardown(ctx, EventExpired, m.startedBy(epoch))
		return m.State()
	}

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		m.logger.Debug("session changed during revalidation, dropping result")
		return m.State()
	}
	if err := m.store.Save(ctx, credential, fresh); err != nil {
		m.logger.Warn("persisting revalidated profile", errors.Wrap(err, "session.Init"), fresh)
	}
	m.user, m.loading = &fresh, false
	m.mu.Unlock()

	m.publish(Event{Kind: EventResolved, User: cloneProfile(&fresh)})
	return m.State()
}

// State returns a consistent snapshot of the authentication state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return State{User: cloneProfile(m.user), Loading: m.loading}
}

// User returns the current user, if any.
func (m *Manager) User() (Profile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return Profile{}, false
	}
	return *m.user, true
}

// Login exchanges credentials for a session.
// On failure the backend error is returned untouched and the current state is kept.
func (m *Manager) Login(ctx context.Context, creds Credentials) (Profile, error) {
	if err := creds.Validate(); err != nil {
		return Profile{}, err
	}
	req := core.Post("/auth/login", creds)
	req.Anonymous = true
	return m.authenticate(ctx, req)
}

// Signup creates an account and starts its session. Same contract as Login.
func (m *Manager) Signup(ctx context.Context, acc NewAccount) (Profile, error) {
	if err := acc.Validate(); err != nil {
		return Profile{}, err
	}
	req := core.Post("/auth/signup", signupPayload{
		Username: acc.Username,
		Email:    acc.Email,
		Password: acc.Password,
		Name:     acc.Name,
		Role:     acc.Role,
	})
	req.Anonymous = true
	return m.authenticate(ctx, req)
}

type signupPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"full_name"`
	Role     Role   `json:"role"`
}

func (m *Manager) authenticate(ctx context.Context, req core.APIRequest) (Profile, error) {
	var resp authResponse
	if err := m.api.Do(ctx, req, &resp); err != nil {
		return Profile{}, err
	}
	if resp.Token == "" {
		return Profile{}, errors.New("backend returned no credential")
	}
	if !resp.User.Role.Valid() {
		return Profile{}, errors.Wrapf(ErrInvalidRole, "backend returned role %q", resp.User.Role)
	}
	m.mu.Lock()
	if err := m.store.Save(ctx, resp.Token, resp.User); err != nil {
		m.mu.Unlock()
		return Profile{}, errors.Wrap(err, "saving session")
	}
	usr := resp.User
	m.credential, m.user, m.loading = resp.Token, &usr, false
	m.epoch++
	m.mu.Unlock()

	m.publish(Event{Kind: EventSignedIn, User: cloneProfile(&usr)})
	return usr, nil
}

// Logout ends the session locally. No backend call is made.
func (m *Manager) Logout(ctx context.Context) {
	m.teardown(ctx, EventSignedOut, nil)
}

// UpdateUser merges upd into the in-memory and persisted profile.
// The caller is responsible for having saved the changes server-side (see ProfileService.Update).
func (m *Manager) UpdateUser(ctx context.Context, upd ProfileUpdate) (Profile, error) {
	m.mu.Lock()
	if m.user == nil {
		m.mu.Unlock()
		return Profile{}, ErrNotAuthenticated
	}
	merged := m.user.Merge(upd)
	m.user = &merged
	err := m.store.Save(ctx, m.credential, merged)
	m.mu.Unlock()

	if err != nil {
		return merged, errors.Wrap(err, "saving session")
	}
	m.publish(Event{Kind: EventUpdated, User: cloneProfile(&merged)})
	return merged, nil
}

// Credential returns the bearer credential of the current session ("" when signed out).
func (m *Manager) Credential(context.Context) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.credential
}

// Unauthorized is called by the HTTP client when the backend rejects credential mid-session.
// A credential that is no longer the current one (the user logged out or in again since) is ignored.
func (m *Manager) Unauthorized(ctx context.Context, credential string) {
	m.teardown(ctx, EventExpired, func() bool {
		return credential != "" && m.credential == credential
	})
}

// Subscribe registers fn for state changes. Call cancel to unsubscribe.
func (m *Manager) Subscribe(fn func(Event)) (cancel func()) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	return func() {
		m.subsMu.Lock()
		delete(m.subs, id)
		m.subsMu.Unlock()
	}
}

// Close ends the Manager's lifecycle: subscribers are dropped and no more events are published.
// The stored session is kept.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.subsMu.Lock()
	m.subs = make(map[int]func(Event))
	m.subsMu.Unlock()
}

// startedBy reports whether the current session is still the one of epoch. Call with mu held.
func (m *Manager) startedBy(epoch uint64) func() bool {
	return func() bool { return m.epoch == epoch }
}

// teardown is the only way a session ends.
// current, called with mu held, tells whether the session the caller acts on is still there;
// nil ends whatever session there is.
func (m *Manager) teardown(ctx context.Context, kind EventKind, current func() bool) {
	m.mu.Lock()
	if current != nil && !current() {
		m.mu.Unlock()
		return
	}
	hadSession := m.credential != "" || m.user != nil
	m.credential, m.user, m.loading = "", nil, false
	m.epoch++
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("clearing stored session", errors.Wrap(err, "session.teardown"))
	}
	m.mu.Unlock()

	if hadSession || kind == EventSignedOut {
		m.publish(Event{Kind: kind})
	}
}

func (m *Manager) publish(evt Event) {
	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return
	}

	m.subsMu.Lock()
	fns := make([]func(Event), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subsMu.Unlock()

	for _, fn := range fns {
		fn(evt)
	}
}

func cloneProfile(p *Profile) *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
