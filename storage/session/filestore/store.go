package filestore

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/prodigy/core/session"
)

const fileName = "session.json"

type document struct {
	Token string           `json:"token"`
	User  *session.Profile `json:"user"`
}

// Store keeps the session in a JSON file readable by the current user only.
type Store struct {
	path string
	mu   sync.Mutex
}

var _ session.Store = (*Store)(nil)

// New returns a Store writing to <dir>/session.json.
func New(dir string) *Store {
	return &Store{path: filepath.Join(dir, fileName)}
}

func (s *Store) Path() string { return s.path }

func (s *Store) Save(_ context.Context, credential string, profile session.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(document{Token: credential, User: &profile}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "creating session dir")
	}

	// write then rename so a crash never leaves a truncated file behind
	tmp, err := ioutil.TempFile(filepath.Dir(s.path), ".session-*")
	if err != nil {
		return errors.Wrap(err, "creating temp session file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing session")
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "chmod session")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing session")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "replacing session")
}

func (s *Store) Load(context.Context) (string, *session.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := ioutil.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, nil
		}
		return "", nil, errors.Wrap(err, "reading session")
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", nil, errors.Wrap(err, "decoding session")
	}
	if doc.Token == "" {
		return "", nil, nil
	}
	return doc.Token, doc.User, nil
}

func (s *Store) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing session")
	}
	return nil
}
