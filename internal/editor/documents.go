// Пакет editor собирает движок редактирования в сетевой сервис: управление
// открытыми документами, HTTP API команд редактирования, рассылка версий
// по вебсокетам и автосохранение снимков.
//
// Основные возможности:
//   - Реестр открытых документов с сессией редактирования на каждый документ.
//   - HTTP API для команд редактирования, выделения и истории.
//   - Вебсокетная рассылка номеров версий подписчикам документа.
//   - Периодическое автосохранение измененных документов в sqlite.
package editor

import (
	"bytes"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/uuid"

	"github.com/aisa-it/aiplan-editor/internal/editor/apierrors"
	errStack "github.com/aisa-it/aiplan-editor/internal/editor/stack-error"
	"github.com/aisa-it/aiplan-editor/internal/editor/autosave"
	"github.com/aisa-it/aiplan-editor/internal/editor/config"
	"github.com/aisa-it/aiplan-editor/internal/editor/docjson"
	"github.com/aisa-it/aiplan-editor/internal/editor/document"
	"github.com/aisa-it/aiplan-editor/internal/editor/history"
	"github.com/aisa-it/aiplan-editor/internal/editor/session"
)

var (
	errDocumentExists   error = apierrors.ErrDocumentExists
	errDocumentNotFound error = apierrors.ErrDocumentNotFound
)

// ManagedDocument - открытый документ: сессия редактирования плюс учет
// изменений для автосохранения.
type ManagedDocument struct {
	ID        string
	Session   *session.EditSession
	CreatedAt time.Time

	mu    sync.Mutex
	dirty bool
}

func (md *ManagedDocument) markDirty() {
	md.mu.Lock()
	md.dirty = true
	md.mu.Unlock()
}

func (md *ManagedDocument) takeDirty() bool {
	md.mu.Lock()
	defer md.mu.Unlock()
	was := md.dirty
	md.dirty = false
	return was
}

// DocumentManager - реестр открытых документов. Реализует источник снимков
// для автосохранения.
type DocumentManager struct {
	cfg   *config.Config
	store *autosave.Store

	mu        sync.RWMutex
	documents map[string]*ManagedDocument

	// onVersion вызывается после каждой мутации документа (рассылка версий).
	onVersion func(documentID string, version uint64)
}

func NewDocumentManager(cfg *config.Config, store *autosave.Store) *DocumentManager {
	return &DocumentManager{
		cfg:       cfg,
		store:     store,
		documents: make(map[string]*ManagedDocument),
	}
}

// SetVersionHandler задает обработчик смены версии документа.
func (dm *DocumentManager) SetVersionHandler(f func(documentID string, version uint64)) {
	dm.onVersion = f
}

// Create открывает новый документ. Пустой id заменяется сгенерированным.
// Если в хранилище есть снимок документа, сессия стартует с него.
func (dm *DocumentManager) Create(id string, doc *document.Node) (*ManagedDocument, error) {
	if id == "" {
		id = uuid.Must(uuid.NewV4()).String()
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()
	if _, exists := dm.documents[id]; exists {
		return nil, errDocumentExists
	}

	if doc == nil && dm.store != nil {
		snapshot, err := dm.store.Load(id)
		if err != nil {
			return nil, errStack.TrackErrorStack(err).AddContext("documentId", id)
		}
		if snapshot != nil {
			restored, err := docjson.ParseJSON(bytes.NewReader(snapshot.Content))
			if err != nil {
				slog.Error("Corrupted snapshot ignored", "documentId", id, "err", err)
			} else {
				doc = restored
			}
		}
	}

	hist := history.New(dm.cfg.HistoryLimit, dm.cfg.DebounceWindow(), nil)
	md := &ManagedDocument{
		ID:        id,
		Session:   session.New(doc, hist, nil),
		CreatedAt: time.Now(),
	}
	md.Session.Subscribe(func(version uint64) {
		md.markDirty()
		if dm.onVersion != nil {
			dm.onVersion(md.ID, version)
		}
	})
	dm.documents[id] = md
	return md, nil
}

// Get возвращает открытый документ или nil.
func (dm *DocumentManager) Get(id string) *ManagedDocument {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.documents[id]
}

// List возвращает открытые документы, отсортированные по времени открытия.
func (dm *DocumentManager) List() []*ManagedDocument {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	list := make([]*ManagedDocument, 0, len(dm.documents))
	for _, md := range dm.documents {
		list = append(list, md)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

// Close закрывает документ, предварительно сохранив финальный снимок.
func (dm *DocumentManager) Close(id string) error {
	dm.mu.Lock()
	md, ok := dm.documents[id]
	delete(dm.documents, id)
	dm.mu.Unlock()
	if !ok {
		return errDocumentNotFound
	}

	if dm.store == nil {
		return nil
	}
	snapshot, err := snapshotOf(md)
	if err != nil {
		return errStack.TrackErrorStack(err).AddContext("documentId", id)
	}
	if err := dm.store.Save(snapshot); err != nil {
		return errStack.TrackErrorStack(err).AddContext("documentId", id)
	}
	return nil
}

// DirtySnapshots возвращает снимки документов, изменившихся с прошлого
// вызова. Часть контракта автосохранения.
func (dm *DocumentManager) DirtySnapshots() []autosave.DocumentSnapshot {
	dm.mu.RLock()
	docs := make([]*ManagedDocument, 0, len(dm.documents))
	for _, md := range dm.documents {
		docs = append(docs, md)
	}
	dm.mu.RUnlock()

	var snapshots []autosave.DocumentSnapshot
	for _, md := range docs {
		if !md.takeDirty() {
			continue
		}
		snapshot, err := snapshotOf(md)
		if err != nil {
			slog.Error("Snapshot serialization failed", "documentId", md.ID, "err", err)
			continue
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots
}

func snapshotOf(md *ManagedDocument) (autosave.DocumentSnapshot, error) {
	content, err := docjson.Serialize(md.Session.Doc())
	if err != nil {
		return autosave.DocumentSnapshot{}, err
	}
	return autosave.DocumentSnapshot{
		DocumentID: md.ID,
		Version:    md.Session.Version(),
		Content:    content,
	}, nil
}
