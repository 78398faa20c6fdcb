package inmemstore

import (
	"context"
	"sync"

	"github.com/trezcool/prodigy/core/session"
)

type entry struct {
	credential string
	profile    session.Profile
}

// DB holds the sessions of every browser, keyed by session id.
type DB struct {
	mutex sync.RWMutex
	table map[string]entry
}

func NewDB() *DB {
	return &DB{table: make(map[string]entry)}
}

// For returns the Store of the browser session sid.
func (db *DB) For(sid string) session.Store {
	return &store{db: db, sid: sid}
}

var _ session.Provider = (*DB)(nil)

// NewStore returns a standalone single-session Store.
func NewStore() session.Store {
	return NewDB().For("")
}

type store struct {
	db  *DB
	sid string
}

var _ session.Store = (*store)(nil)

func (s *store) Save(_ context.Context, credential string, profile session.Profile) error {
	s.db.mutex.Lock()
	defer s.db.mutex.Unlock()
	s.db.table[s.sid] = entry{credential: credential, profile: profile}
	return nil
}

func (s *store) Load(context.Context) (string, *session.Profile, error) {
	s.db.mutex.RLock()
	defer s.db.mutex.RUnlock()
	e, ok := s.db.table[s.sid]
	if !ok {
		return "", nil, nil
	}
	profile := e.profile
	return e.credential, &profile, nil
}

func (s *store) Clear(context.Context) error {
	s.db.mutex.Lock()
	defer s.db.mutex.Unlock()
	delete(s.db.table, s.sid)
	return nil
}
