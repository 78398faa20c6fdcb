package notify

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	n := NewConsole(&buf, false)
	n.Success("Grade submitted!")
	n.Error("Failed to load classes")
	assert.Equal(t, "✓ Grade submitted!\n✗ Failed to load classes\n", buf.String())
}

func TestFlash(t *testing.T) {
	var f Flash
	f.Success("Class created")
	f.Error("Class not found")
	assert.Equal(t, []FlashMessage{{"success", "Class created"}, {"error", "Class not found"}}, f.Drain())
	assert.Empty(t, f.Drain())
}
