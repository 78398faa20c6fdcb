package session

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/trezcool/prodigy/core"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// memStore is a Store keeping one session in memory.
type memStore struct {
	mu         sync.Mutex
	credential string
	profile    *Profile
	saves      int
	clears     int
	loadErr    error
}

func (s *memStore) Save(_ context.Context, credential string, profile Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential, s.profile = credential, &profile
	s.saves++
	return nil
}

func (s *memStore) Load(context.Context) (string, *Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return "", nil, s.loadErr
	}
	return s.credential, cloneProfile(s.profile), nil
}

func (s *memStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential, s.profile = "", nil
	s.clears++
	return nil
}

// backendMock answers requests with the handler registered for "METHOD /path".
type backendMock struct {
	mu       sync.Mutex
	handlers map[string]func(req core.APIRequest, out interface{}) error
	calls    []core.APIRequest
}

func newBackendMock() *backendMock {
	return &backendMock{handlers: make(map[string]func(core.APIRequest, interface{}) error)}
}

func (b *backendMock) on(method, path string, fn func(req core.APIRequest, out interface{}) error) {
	b.handlers[method+" "+path] = fn
}

func (b *backendMock) Do(_ context.Context, req core.APIRequest, out interface{}) error {
	b.mu.Lock()
	b.calls = append(b.calls, req)
	fn, ok := b.handlers[req.Method+" "+req.Path]
	b.mu.Unlock()
	if !ok {
		return errors.Errorf("unexpected call %s %s", req.Method, req.Path)
	}
	return fn(req, out)
}

func (b *backendMock) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

func respondWith(v interface{}) func(core.APIRequest, interface{}) error {
	return func(_ core.APIRequest, out interface{}) error {
		switch o := out.(type) {
		case *Profile:
			*o = v.(Profile)
		case *authResponse:
			*o = v.(authResponse)
		default:
			return errors.Errorf("unexpected out %T", out)
		}
		return nil
	}
}

type statusError int

func (e statusError) Error() string { return http.StatusText(int(e)) }

func fail(code int) func(core.APIRequest, interface{}) error {
	return func(core.APIRequest, interface{}) error { return statusError(code) }
}

func setup(t *testing.T) (*Manager, *memStore, *backendMock) {
	store := &memStore{}
	api := newBackendMock()
	mgr := NewManager(store, api, nopLogger{})
	t.Cleanup(mgr.Close)
	return mgr, store, api
}

func newToken(t *testing.T, exp time.Time) string {
	claims := Claims{
		StandardClaims: jwt.StandardClaims{ExpiresAt: exp.Unix(), Subject: "1"},
		UserID:         "1",
		Role:           RoleStudent,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("newToken() failed: %v", err)
	}
	return token
}

func recordEvents(mgr *Manager) *[]EventKind {
	var mu sync.Mutex
	kinds := new([]EventKind)
	mgr.Subscribe(func(evt Event) {
		mu.Lock()
		*kinds = append(*kinds, evt.Kind)
		mu.Unlock()
	})
	return kinds
}
