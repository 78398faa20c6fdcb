package chat

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Status of a thread entry.
type Status int

const (
	Pending   Status = iota + 1 // sent, not confirmed yet
	Committed                   // confirmed: Message is the backend record
	Failed                      // rejected: Err says why, Resend retries
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Committed:
		return "committed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Entry is one message of a Thread.
// LocalID is assigned on send and survives reconciliation.
type Entry struct {
	LocalID string
	Status  Status
	Message Message
	Err     error

	draft NewMessage
}

func (e Entry) MarshalJSON() ([]byte, error) {
	var reason string
	if e.Err != nil {
		reason = e.Err.Error()
	}
	return json.Marshal(struct {
		LocalID string  `json:"local_id"`
		Status  string  `json:"status"`
		Message Message `json:"message"`
		Error   string  `json:"error,omitempty"`
	}{e.LocalID, e.Status.String(), e.Message, reason})
}

// Unsent is a Failed entry kept outside of its Thread (eg. on disk), to be Restored and resent later.
type Unsent struct {
	LocalID string     `json:"local_id"`
	Draft   NewMessage `json:"draft"`
	Error   string     `json:"error,omitempty"`
}

var ErrUnknownEntry = errors.New("unknown thread entry")

type sender interface {
	Send(ctx context.Context, nm NewMessage) (Message, error)
}

// Thread is the visible state of a conversation.
// Sent messages are appended as Pending and reconciled with the backend's answer,
// never shown as delivered before the backend confirmed them.
type Thread struct {
	svc sender
	me  string

	mu      sync.RWMutex
	entries []Entry
}

func NewThread(svc *Service, me string, history []Message) *Thread {
	return newThread(svc, me, history)
}

func newThread(svc sender, me string, history []Message) *Thread {
	t := &Thread{svc: svc, me: me, entries: make([]Entry, 0, len(history))}
	for _, msg := range history {
		t.entries = append(t.entries, Entry{LocalID: msg.ID, Status: Committed, Message: msg})
	}
	return t
}

// Reconcile replaces the confirmed part of the thread with history, the backend's view of the conversation.
// Pending and Failed entries are kept after it.
func (t *Thread) Reconcile(history []Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entries := make([]Entry, 0, len(history)+len(t.entries))
	for _, msg := range history {
		entries = append(entries, Entry{LocalID: msg.ID, Status: Committed, Message: msg})
	}
	for _, e := range t.entries {
		if e.Status != Committed {
			entries = append(entries, e)
		}
	}
	t.entries = entries
}

// Has reports whether localID is an entry of the thread.
func (t *Thread) Has(localID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.index(localID) >= 0
}

// Unsent returns the Failed entries.
func (t *Thread) Unsent() []Unsent {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var unsent []Unsent
	for _, e := range t.entries {
		if e.Status == Failed {
			u := Unsent{LocalID: e.LocalID, Draft: e.draft}
			if e.Err != nil {
				u.Error = e.Err.Error()
			}
			unsent = append(unsent, u)
		}
	}
	return unsent
}

// Restore appends unsent messages back as Failed entries, ready for Resend.
func (t *Thread) Restore(unsent ...Unsent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, u := range unsent {
		if t.index(u.LocalID) >= 0 {
			continue
		}
		t.entries = append(t.entries, Entry{
			LocalID: u.LocalID,
			Status:  Failed,
			Message: t.draftMessage(u.Draft),
			Err:     errors.New(u.Error),
			draft:   u.Draft,
		})
	}
}

// Entries returns a snapshot of the thread.
func (t *Thread) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	entries := make([]Entry, len(t.entries))
	copy(entries, t.entries)
	return entries
}

// Send appends nm as Pending, then commits it with the backend record or marks it Failed.
// The returned entry is the reconciled one.
func (t *Thread) Send(ctx context.Context, nm NewMessage) (Entry, error) {
	if err := nm.Validate(); err != nil {
		return Entry{}, err
	}
	localID := uuid.NewString()
	t.mu.Lock()
	t.entries = append(t.entries, Entry{
		LocalID: localID,
		Status:  Pending,
		Message: t.draftMessage(nm),
		draft:   nm,
	})
	t.mu.Unlock()
	return t.deliver(ctx, localID, nm)
}

// Resend retries a Failed entry.
func (t *Thread) Resend(ctx context.Context, localID string) (Entry, error) {
	t.mu.Lock()
	i := t.index(localID)
	if i < 0 || t.entries[i].Status != Failed {
		t.mu.Unlock()
		return Entry{}, errors.Wrap(ErrUnknownEntry, localID)
	}
	t.entries[i].Status, t.entries[i].Err = Pending, nil
	nm := t.entries[i].draft
	t.mu.Unlock()
	return t.deliver(ctx, localID, nm)
}

// Discard drops a Failed entry.
func (t *Thread) Discard(localID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.index(localID)
	if i < 0 || t.entries[i].Status != Failed {
		return errors.Wrap(ErrUnknownEntry, localID)
	}
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	return nil
}

func (t *Thread) deliver(ctx context.Context, localID string, nm NewMessage) (Entry, error) {
	msg, err := t.svc.Send(ctx, nm)

	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.index(localID)
	if i < 0 {
		return Entry{}, errors.Wrap(ErrUnknownEntry, localID)
	}
	if err != nil {
		t.entries[i].Status, t.entries[i].Err = Failed, err
	} else {
		t.entries[i] = Entry{LocalID: localID, Status: Committed, Message: msg}
	}
	return t.entries[i], err
}

func (t *Thread) draftMessage(nm NewMessage) Message {
	return Message{SenderID: t.me, ReceiverID: nm.ReceiverID, Content: nm.Content, ClassID: deref(nm.ClassID)}
}

func (t *Thread) index(localID string) int {
	for i, e := range t.entries {
		if e.LocalID == localID {
			return i
		}
	}
	return -1
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Threads keeps one Thread per conversation, so Failed entries survive between views.
type Threads struct {
	svc *Service
	me  string

	mu     sync.Mutex
	byConv map[string]*Thread
}

func NewThreads(svc *Service, me string) *Threads {
	return &Threads{svc: svc, me: me, byConv: make(map[string]*Thread)}
}

// Conversation returns the thread of f, reconciled with the backend's messages.
func (ts *Threads) Conversation(ctx context.Context, f Filter) (*Thread, error) {
	history, err := ts.svc.Messages(ctx, f)
	if err != nil {
		return nil, err
	}
	t := ts.Of(f)
	t.Reconcile(history)
	return t, nil
}

// Of returns the thread of f as it is, creating it empty.
func (ts *Threads) Of(f Filter) *Thread {
	key := conversationKey(f)
	ts.mu.Lock()
	defer ts.mu.Unlock()
	t, ok := ts.byConv[key]
	if !ok {
		t = newThread(ts.svc, ts.me, nil)
		ts.byConv[key] = t
	}
	return t
}

// Find returns the thread holding the entry localID.
func (ts *Threads) Find(localID string) (*Thread, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for _, t := range ts.byConv {
		if t.Has(localID) {
			return t, nil
		}
	}
	return nil, errors.Wrap(ErrUnknownEntry, localID)
}

// Restore puts unsent messages back in the thread of their conversation.
func (ts *Threads) Restore(unsent ...Unsent) {
	for _, u := range unsent {
		ts.Of(FilterOf(u.Draft)).Restore(u)
	}
}

// Unsent returns the Failed entries of all conversations, by conversation.
func (ts *Threads) Unsent() []Unsent {
	ts.mu.Lock()
	keys := make([]string, 0, len(ts.byConv))
	for k := range ts.byConv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	threads := make([]*Thread, 0, len(keys))
	for _, k := range keys {
		threads = append(threads, ts.byConv[k])
	}
	ts.mu.Unlock()

	var unsent []Unsent
	for _, t := range threads {
		unsent = append(unsent, t.Unsent()...)
	}
	return unsent
}

// FilterOf returns the conversation nm belongs to: class chats by class, direct ones by receiver.
func FilterOf(nm NewMessage) Filter {
	if id := deref(nm.ClassID); id != "" {
		return Filter{ClassID: id}
	}
	return Filter{ReceiverID: nm.ReceiverID}
}

func conversationKey(f Filter) string {
	if f.ClassID != "" {
		return "class:" + f.ClassID
	}
	return "user:" + f.ReceiverID
}
