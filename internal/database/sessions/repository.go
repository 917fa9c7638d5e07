// Package sessions records the history of import attempts.
package sessions

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/companion/internal/database"
	"github.com/mrlokans/companion/internal/entities"
)

const defaultListLimit = 50

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Start records a pending attempt for archiveName.
func (r *Repository) Start(archiveName string) (*entities.ImportSession, error) {
	session := &entities.ImportSession{
		ArchiveName: archiveName,
		Status:      entities.ImportStatusPending,
		StartedAt:   time.Now(),
	}
	if err := r.db.Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

// Finish stores the final state of an attempt.
func (r *Repository) Finish(session *entities.ImportSession) error {
	if session.FinishedAt == nil {
		now := time.Now()
		session.FinishedAt = &now
	}
	return r.db.Save(session).Error
}

// List returns the most recent attempts first.
func (r *Repository) List(limit int) ([]entities.ImportSession, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	var sessions []entities.ImportSession
	err := r.db.Order("started_at DESC, id DESC").Limit(limit).Find(&sessions).Error
	return sessions, err
}

// Get returns a single attempt by id, or database.ErrNotFound.
func (r *Repository) Get(id uint) (*entities.ImportSession, error) {
	var session entities.ImportSession
	if err := r.db.First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}
