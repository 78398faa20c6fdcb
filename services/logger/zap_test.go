package logsvc

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trezcool/prodigy/core/session"
)

func TestZapLogger_fields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &ZapLogger{z: zap.New(core)}

	usr := session.Profile{ID: "u1", Role: session.RoleStudent}
	l.Warn("loading stored session", errors.New("boom"), map[string]interface{}{"path": "/classes"}, usr)

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "loading stored session", entries[0].Message)
		assert.Equal(t, "boom", ctx["error"])
		assert.Equal(t, "/classes", ctx["path"])
		assert.Equal(t, "u1", ctx["user_id"])
		assert.Equal(t, "student", ctx["role"])
	}
}

func TestNewNopLogger(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Debug("debug")
		l.Info("info", nil)
		l.Error("error", errors.New("x"))
	})
}
