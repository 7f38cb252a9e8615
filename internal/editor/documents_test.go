package editor

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisa-it/aiplan-editor/internal/editor/autosave"
	"github.com/aisa-it/aiplan-editor/internal/editor/config"
	"github.com/aisa-it/aiplan-editor/internal/editor/document"
)

func newTestManager(t *testing.T) (*DocumentManager, *autosave.Store) {
	t.Helper()
	store, err := autosave.NewStore(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	cfg := &config.Config{HistoryLimit: 100, DebounceMs: 300}
	return NewDocumentManager(cfg, store), store
}

func sessionText(t *testing.T, md *ManagedDocument) string {
	t.Helper()
	var parts []string
	for _, txt := range document.CollectTextNodes(md.Session.Doc()) {
		parts = append(parts, txt.Text)
	}
	return strings.Join(parts, "|")
}

func TestDocumentManagerCreate(t *testing.T) {
	dm, _ := newTestManager(t)

	md, err := dm.Create("notes", nil)
	require.NoError(t, err)
	assert.Equal(t, "notes", md.ID)
	assert.Same(t, md, dm.Get("notes"))

	_, err = dm.Create("notes", nil)
	assert.ErrorIs(t, err, errDocumentExists)

	generated, err := dm.Create("", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, generated.ID)

	list := dm.List()
	require.Len(t, list, 2)
	assert.Equal(t, "notes", list[0].ID)
}

func TestDocumentManagerDirtySnapshots(t *testing.T) {
	dm, _ := newTestManager(t)

	md, err := dm.Create("notes", nil)
	require.NoError(t, err)

	// Открытый, но не измененный документ не попадает в сброс
	assert.Empty(t, dm.DirtySnapshots())

	md.Session.SelectAll()
	md.Session.InsertText("hello")

	snapshots := dm.DirtySnapshots()
	require.Len(t, snapshots, 1)
	assert.Equal(t, "notes", snapshots[0].DocumentID)
	assert.Contains(t, string(snapshots[0].Content), "hello")

	// Повторный вызов без новых правок пуст
	assert.Empty(t, dm.DirtySnapshots())

	md.Session.InsertText("!")
	assert.Len(t, dm.DirtySnapshots(), 1)
}

func TestDocumentManagerCloseRestoresFromSnapshot(t *testing.T) {
	dm, store := newTestManager(t)

	md, err := dm.Create("notes", nil)
	require.NoError(t, err)
	md.Session.SelectAll()
	md.Session.InsertText("persisted")

	require.NoError(t, dm.Close("notes"))
	assert.Nil(t, dm.Get("notes"))

	snapshot, err := store.Load("notes")
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	restored, err := dm.Create("notes", nil)
	require.NoError(t, err)
	assert.Equal(t, "persisted", sessionText(t, restored))

	assert.ErrorIs(t, dm.Close("missing"), errDocumentNotFound)
}

func TestDocumentManagerVersionHandler(t *testing.T) {
	dm, _ := newTestManager(t)

	var versions []uint64
	dm.SetVersionHandler(func(documentID string, version uint64) {
		if documentID == "notes" {
			versions = append(versions, version)
		}
	})

	md, err := dm.Create("notes", nil)
	require.NoError(t, err)
	md.Session.SelectAll()
	md.Session.InsertText("a")

	require.NotEmpty(t, versions)
	assert.Equal(t, md.Session.Version(), versions[len(versions)-1])
}
