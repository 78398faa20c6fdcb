package main

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/prodigy/core/chat"
)

const outboxFileName = "outbox.json"

// outbox keeps the chat messages that could not be sent between runs, until resent or discarded.
// It holds the messages of one user: signing in as somebody else starts an empty one.
type outbox struct {
	path string
}

type outboxDocument struct {
	UserID string        `json:"user_id"`
	Unsent []chat.Unsent `json:"unsent"`
}

func newOutbox(dir string) *outbox {
	return &outbox{path: filepath.Join(dir, outboxFileName)}
}

func (o *outbox) load(userID string) ([]chat.Unsent, error) {
	data, err := ioutil.ReadFile(o.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading outbox")
	}
	var doc outboxDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decoding outbox")
	}
	if doc.UserID != userID {
		return nil, nil
	}
	return doc.Unsent, nil
}

// save replaces the outbox with unsent. Nothing left removes the file.
func (o *outbox) save(userID string, unsent []chat.Unsent) error {
	if len(unsent) == 0 {
		if err := os.Remove(o.path); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, "removing outbox")
		}
		return nil
	}

	data, err := json.MarshalIndent(outboxDocument{UserID: userID, Unsent: unsent}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding outbox")
	}
	dir := filepath.Dir(o.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "creating outbox dir")
	}
	tmp, err := ioutil.TempFile(dir, ".outbox-*")
	if err != nil {
		return errors.Wrap(err, "creating temp outbox file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing outbox")
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "chmod outbox")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing outbox")
	}
	return errors.Wrap(os.Rename(tmp.Name(), o.path), "replacing outbox")
}
