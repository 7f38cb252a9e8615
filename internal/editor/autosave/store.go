// Пакет autosave сохраняет снимки открытых документов в локальную базу
// по расписанию, чтобы перезапуск сервиса не терял несохраненные правки.
//
// Основные возможности:
//   - Хранение снимков документов (JSON + версия) в sqlite базе.
//   - Периодический сброс измененных документов по cron-расписанию.
//   - Загрузка последнего снимка при повторном открытии документа.
package autosave

import (
	"errors"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// DocumentSnapshot - строка снимка документа в локальной базе.
type DocumentSnapshot struct {
	DocumentID string `gorm:"primaryKey"`
	Version    uint64
	Content    []byte
	UpdatedAt  time.Time
}

// Store - хранилище снимков поверх sqlite.
type Store struct {
	db *gorm.DB
}

// NewStore открывает базу снимков по указанному пути и выполняет миграцию.
func NewStore(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&DocumentSnapshot{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Save сохраняет снимок, заменяя предыдущий снимок того же документа.
func (s *Store) Save(snapshot DocumentSnapshot) error {
	snapshot.UpdatedAt = time.Now()
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "document_id"}},
		UpdateAll: true,
	}).Create(&snapshot).Error
}

// Load возвращает последний снимок документа. Возвращает (nil, nil), если
// снимка нет.
func (s *Store) Load(documentID string) (*DocumentSnapshot, error) {
	var snapshot DocumentSnapshot
	if err := s.db.Where("document_id = ?", documentID).First(&snapshot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &snapshot, nil
}

// List возвращает все снимки, отсортированные по времени обновления.
func (s *Store) List() ([]DocumentSnapshot, error) {
	var snapshots []DocumentSnapshot
	err := s.db.Order("updated_at desc").Find(&snapshots).Error
	return snapshots, err
}

// Delete удаляет снимок документа.
func (s *Store) Delete(documentID string) error {
	return s.db.Where("document_id = ?", documentID).Delete(&DocumentSnapshot{}).Error
}
