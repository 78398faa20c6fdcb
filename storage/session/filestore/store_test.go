package filestore

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/prodigy/tests"
)

func TestStore(t *testing.T) {
	testutil.TestStore(t, New(filepath.Join(t.TempDir(), "prodigy")))
}

func TestStore_file(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "prodigy")
	store := New(dir)

	require.NoError(t, store.Save(ctx, "abc", testutil.Student))
	if runtime.GOOS != "windows" {
		info, err := os.Stat(store.Path())
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	// a new process reads what the previous one saved
	cred, usr, err := New(dir).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", cred)
	assert.Equal(t, &testutil.Student, usr)

	require.NoError(t, store.Clear(ctx))
	_, err = os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestStore_Load_corrupted(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	require.NoError(t, ioutil.WriteFile(store.Path(), []byte("{nope"), 0600))

	_, _, err := store.Load(context.Background())
	assert.Error(t, err)
}
