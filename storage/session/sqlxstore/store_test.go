package sqlxstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/prodigy/core"
	"github.com/trezcool/prodigy/tests"
)

func setup(t *testing.T, ttl time.Duration) *Provider {
	db, err := Open(context.Background(), core.DatabaseConfig{URL: testutil.DatabaseURL(t)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewProvider(db, ttl)
}

func TestStore(t *testing.T) {
	p := setup(t, time.Hour)
	testutil.TestStore(t, p.For(uuid.NewString()))
}

func TestStore_expired(t *testing.T) {
	ctx := context.Background()
	p := setup(t, time.Minute)
	sid := uuid.NewString()
	store := p.For(sid)
	require.NoError(t, store.Save(ctx, "abc", testutil.Student))

	defer func() { nowFunc = time.Now }()
	nowFunc = func() time.Time { return time.Now().Add(2 * time.Minute) }

	cred, usr, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, cred)
	assert.Nil(t, usr)

	n, err := p.Purge(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))
}

func TestProfileColumn(t *testing.T) {
	v, err := profileColumn{testutil.Teacher}.Value()
	require.NoError(t, err)

	var c profileColumn
	require.NoError(t, c.Scan(v))
	assert.Equal(t, testutil.Teacher, c.Profile)
	assert.Error(t, c.Scan(42))
}
