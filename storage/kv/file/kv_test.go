package filekv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/sahayak/core"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "sessions")

	s, err := New(dir)
	require.NoError(t, err)

	_, err = s.Get(ctx, "sahayak_user")
	assert.Equal(t, core.ErrKeyNotFound, err)

	require.NoError(t, s.Set(ctx, "sahayak_user", []byte(`{"id":"1"}`)))
	require.NoError(t, s.Set(ctx, "sahayak_user", []byte(`{"id":"2"}`)))

	// another instance over the same directory sees the value
	other, err := New(dir)
	require.NoError(t, err)
	got, err := other.Get(ctx, "sahayak_user")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"2"}`, string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	require.NoError(t, s.Delete(ctx, "sahayak_user"))
	require.NoError(t, s.Delete(ctx, "sahayak_user"))
	_, err = other.Get(ctx, "sahayak_user")
	assert.Equal(t, core.ErrKeyNotFound, err)
}

func TestStore_invalidKey(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../escape", "a/b", "with space"} {
		err := s.Set(ctx, key, []byte("x"))
		assert.IsType(t, &core.ArgumentError{}, err, key)
	}
}

func TestNew_noPath(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
