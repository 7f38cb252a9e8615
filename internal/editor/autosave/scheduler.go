package autosave

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// SnapshotSource отдает снимки документов, изменившихся с прошлого сброса.
type SnapshotSource interface {
	DirtySnapshots() []DocumentSnapshot
}

// Scheduler периодически сбрасывает измененные документы в хранилище.
type Scheduler struct {
	dispatcher *cron.Cron
	store      *Store
	source     SnapshotSource
	periodSec  int
}

// NewScheduler создает планировщик автосохранения с указанным периодом
// в секундах.
func NewScheduler(store *Store, source SnapshotSource, periodSec int) *Scheduler {
	dispatcher := cron.New(
		cron.WithChain(cron.Recover(cron.DefaultLogger)),
	)
	return &Scheduler{
		dispatcher: dispatcher,
		store:      store,
		source:     source,
		periodSec:  periodSec,
	}
}

// Start запускает периодический сброс.
func (s *Scheduler) Start() error {
	if _, err := s.dispatcher.AddFunc(fmt.Sprintf("@every %ds", s.periodSec), s.Flush); err != nil {
		return err
	}
	s.dispatcher.Start()
	return nil
}

// Flush сбрасывает все измененные документы в хранилище. Вызывается по
// расписанию и при остановке сервиса.
func (s *Scheduler) Flush() {
	for _, snapshot := range s.source.DirtySnapshots() {
		if err := s.store.Save(snapshot); err != nil {
			slog.Error("Autosave failed", "documentId", snapshot.DocumentID, "err", err)
			continue
		}
		slog.Debug("Document autosaved",
			"documentId", snapshot.DocumentID, "version", snapshot.Version)
	}
}

// Stop останавливает планировщик, дожидается завершения текущего сброса
// и выполняет финальный сброс.
func (s *Scheduler) Stop() {
	ctx := s.dispatcher.Stop()
	<-ctx.Done()
	s.Flush()
}
