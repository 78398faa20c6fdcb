package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_credentialExpired(t *testing.T) {
	now := time.Now()
	defer func() { nowFunc = time.Now }()
	nowFunc = func() time.Time { return now }

	tests := []struct {
		name       string
		credential string
		want       bool
	}{
		{name: "opaque", credential: "abc"},
		{name: "valid jwt", credential: newToken(t, now.Add(time.Minute))},
		{name: "expired jwt", credential: newToken(t, now.Add(-time.Minute)), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, credentialExpired(tt.credential))
		})
	}
}

func TestExpiresAt(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	got, ok := ExpiresAt(newToken(t, exp))
	assert.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = ExpiresAt("abc")
	assert.False(t, ok)
}

