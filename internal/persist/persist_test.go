package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yolodolo42/wconn/internal/testutil"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestStore(t *testing.T) {
	t.Run("save and load round trip", func(t *testing.T) {
		store, err := NewStore(testutil.TempDir(t), "state.json")
		require.NoError(t, err)

		require.NoError(t, store.Save(record{Name: "session", Count: 3}))

		var got record
		require.NoError(t, store.Load(&got))
		assert.Equal(t, record{Name: "session", Count: 3}, got)
	})

	t.Run("load before any save reports not-exist", func(t *testing.T) {
		store, err := NewStore(testutil.TempDir(t), "state.json")
		require.NoError(t, err)

		var got record
		err = store.Load(&got)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("save overwrites the previous record", func(t *testing.T) {
		store, err := NewStore(testutil.TempDir(t), "state.json")
		require.NoError(t, err)

		require.NoError(t, store.Save(record{Name: "first"}))
		require.NoError(t, store.Save(record{Name: "second"}))

		var got record
		require.NoError(t, store.Load(&got))
		assert.Equal(t, "second", got.Name)
	})

	t.Run("creates the data directory", func(t *testing.T) {
		dir := filepath.Join(testutil.TempDir(t), "nested", "data")
		store, err := NewStore(dir, "state.json")
		require.NoError(t, err)
		require.NoError(t, store.Save(record{}))

		_, err = os.Stat(filepath.Join(dir, "state.json"))
		assert.NoError(t, err)
	})

	t.Run("file has owner-only permissions", func(t *testing.T) {
		dir := testutil.TempDir(t)
		store, err := NewStore(dir, "state.json")
		require.NoError(t, err)
		require.NoError(t, store.Save(record{}))

		info, err := os.Stat(filepath.Join(dir, "state.json"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("no temp file is left behind", func(t *testing.T) {
		dir := testutil.TempDir(t)
		store, err := NewStore(dir, "state.json")
		require.NoError(t, err)
		require.NoError(t, store.Save(record{}))

		_, err = os.Stat(filepath.Join(dir, "state.json.tmp"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("corrupted file surfaces a parse error", func(t *testing.T) {
		dir := testutil.TempDir(t)
		store, err := NewStore(dir, "state.json")
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "state.json"), []byte("{not json"), 0600))

		var got record
		assert.Error(t, store.Load(&got))
	})
}
