package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/labstack/gommon/color"

	"github.com/trezcool/prodigy/core"
)

// Console prints notifications on a terminal.
type Console struct {
	mu  sync.Mutex
	out io.Writer
	c   *color.Color
}

var _ core.Notifier = (*Console)(nil)

func NewConsole(out io.Writer, colored bool) *Console {
	c := color.New()
	if !colored {
		c.Disable()
	}
	return &Console{out: out, c: c}
}

func (n *Console) Success(msg string) {
	n.print(n.c.Green("✓ "+msg))
}

func (n *Console) Error(msg string) {
	n.print(n.c.Red("✗ "+msg, color.B))
}

func (n *Console) print(s string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintln(n.out, s)
}

// Flash collects notifications to return them with a web response.
type Flash struct {
	mu       sync.Mutex
	Messages []FlashMessage `json:"messages"`
}

type FlashMessage struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

var _ core.Notifier = (*Flash)(nil)

func (f *Flash) Success(msg string) { f.add("success", msg) }
func (f *Flash) Error(msg string)   { f.add("error", msg) }

func (f *Flash) add(level, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Messages = append(f.Messages, FlashMessage{Level: level, Text: msg})
}

// Drain returns the collected messages and forgets them.
func (f *Flash) Drain() []FlashMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.Messages
	f.Messages = nil
	return msgs
}
