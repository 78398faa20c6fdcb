package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/trezcool/prodigy/core/session"
	"github.com/trezcool/prodigy/services/backend"
	"github.com/trezcool/prodigy/services/logger"
)

var (
	Student = session.Profile{ID: "1", Username: "ann", Name: "Ann", Email: "ann@prodigy.io", Role: session.RoleStudent}
	Teacher = session.Profile{ID: "2", Username: "bob", Name: "Bob", Email: "bob@prodigy.io", Role: session.RoleTeacher}
)

// RedisAddr returns TEST_REDIS_ADDR or skips the test.
func RedisAddr(t *testing.T) string {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	return addr
}

// DatabaseURL returns TEST_DATABASE_URL or skips the test.
func DatabaseURL(t *testing.T) string {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	return url
}

// TestStore checks the session.Store contract on an empty store.
func TestStore(t *testing.T, store session.Store) {
	ctx := context.Background()

	cred, usr, err := store.Load(ctx)
	if err != nil || cred != "" || usr != nil {
		t.Fatalf("Load() on empty store = (%q, %v, %v), want nothing", cred, usr, err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() on empty store failed: %v", err)
	}

	for _, tt := range []struct {
		credential string
		profile    session.Profile
	}{
		{"abc", Student},
		{"eyJhbGciOiJIUzI1NiJ9.e30.x", Teacher},
		{"abc", session.Profile{ID: "3", Role: session.RoleStudent}},
	} {
		if err := store.Save(ctx, tt.credential, tt.profile); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
		cred, usr, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load() failed: %v", err)
		}
		if cred != tt.credential || usr == nil || *usr != tt.profile {
			t.Errorf("Load() = (%q, %+v), want (%q, %+v)", cred, usr, tt.credential, tt.profile)
		}
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	cred, usr, err = store.Load(ctx)
	if err != nil || cred != "" || usr != nil {
		t.Errorf("Load() after Clear() = (%q, %v, %v), want nothing", cred, usr, err)
	}
}

// NewBackend starts a fake PRODIGY backend and returns a client talking to it.
func NewBackend(t *testing.T, handler http.Handler) *backend.Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := backend.New(backend.Options{BaseURL: srv.URL}, logsvc.NewNopLogger())
	if err != nil {
		t.Fatalf("NewBackend() failed: %v", err)
	}
	return client
}

// WriteJSON writes v as the JSON response body.
func WriteJSON(t *testing.T, w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("WriteJSON() failed: %v", err)
	}
}

// DecodeJSON decodes the request body into v.
func DecodeJSON(t *testing.T, r *http.Request, v interface{}) {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		t.Errorf("DecodeJSON() failed: %v", err)
	}
}
