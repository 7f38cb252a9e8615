package autosave

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	return store
}

func TestStoreSaveLoad(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(DocumentSnapshot{
		DocumentID: "notes",
		Version:    3,
		Content:    []byte(`{"type":"doc"}`),
	}))

	snapshot, err := store.Load("notes")
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, uint64(3), snapshot.Version)
	assert.Equal(t, `{"type":"doc"}`, string(snapshot.Content))

	t.Run("missing document is nil without error", func(t *testing.T) {
		snapshot, err := store.Load("missing")
		require.NoError(t, err)
		assert.Nil(t, snapshot)
	})

	t.Run("save replaces previous snapshot", func(t *testing.T) {
		require.NoError(t, store.Save(DocumentSnapshot{
			DocumentID: "notes",
			Version:    4,
			Content:    []byte(`{"type":"doc","content":[]}`),
		}))
		snapshot, err := store.Load("notes")
		require.NoError(t, err)
		require.NotNil(t, snapshot)
		assert.Equal(t, uint64(4), snapshot.Version)
	})
}

func TestStoreListDelete(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(DocumentSnapshot{DocumentID: "a", Version: 1}))
	require.NoError(t, store.Save(DocumentSnapshot{DocumentID: "b", Version: 2}))

	snapshots, err := store.List()
	require.NoError(t, err)
	require.Len(t, snapshots, 2)

	require.NoError(t, store.Delete("a"))

	snapshots, err = store.List()
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "b", snapshots[0].DocumentID)

	// удаление отсутствующего снимка не ошибка
	assert.NoError(t, store.Delete("a"))
}
